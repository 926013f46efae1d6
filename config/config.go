package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Groq     Groq
	JWT      JWT
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Groq struct {
	ApiKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

type JWT struct {
	Secret          string
	ExpirationHours int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("GROQ_MODEL", "llama3-70b-8192")
	viper.SetDefault("AI_TIMEOUT_SECONDS", 30)
	viper.SetDefault("JWT_EXPIRATION_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Groq.ApiKey = viper.GetString("GROQ_API_KEY")
	config.Groq.BaseURL = viper.GetString("GROQ_BASE_URL")
	config.Groq.Model = viper.GetString("GROQ_MODEL")
	config.Groq.TimeoutSeconds = viper.GetInt("AI_TIMEOUT_SECONDS")

	config.JWT.Secret = viper.GetString("JWT_SECRET")
	config.JWT.ExpirationHours = viper.GetInt("JWT_EXPIRATION_HOURS")

	log.Info().Str("port", config.Server.Port).Str("groq_model", config.Groq.Model).Msg("Config loaded")
	return &config, nil
}
