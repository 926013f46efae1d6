package main

import (
	"context"
	"net/http"
	"time"

	"github.com/adeshpatel700-rgb/Mockmate/config"
	"github.com/adeshpatel700-rgb/Mockmate/database"
	_ "github.com/adeshpatel700-rgb/Mockmate/docs" // Swagger docs - auto-generated
	"github.com/adeshpatel700-rgb/Mockmate/internal/controller"
	"github.com/adeshpatel700-rgb/Mockmate/internal/logger"
	"github.com/adeshpatel700-rgb/Mockmate/internal/middleware"
	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"github.com/adeshpatel700-rgb/Mockmate/internal/repository"
	"github.com/adeshpatel700-rgb/Mockmate/internal/service"
	"github.com/adeshpatel700-rgb/Mockmate/pkg/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log" // Global zerolog instance
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Mockmate Interview Practice API
// @version 1.0
// @description API for AI-powered mock interviews with per-answer feedback and performance analytics.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewSessionRepository,
			repository.NewQuestionRepository,
			repository.NewFeedbackRepository,
		),

		// Services Layer
		fx.Provide(
			func(cfg *config.Config) (*auth.JWTService, error) {
				return auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
			},
			func(cfg *config.Config) service.GroqLLMService {
				return service.NewGroqLLMService(cfg, nil)
			},
			service.NewAuthService,
			service.NewInterviewService,
			service.NewAnalyticsService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewAuthController,
			controller.NewInterviewController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Request logging through the global zerolog instance.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	jwtSvc *auth.JWTService,
	authCtrl *controller.AuthController,
	interviewCtrl *controller.InterviewController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
		authGroup.GET("/me", middleware.RequireAuth(jwtSvc), authCtrl.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(jwtSvc))
	{
		protected.POST("/interviews/start", interviewCtrl.StartSession)
		protected.GET("/interviews/analytics", interviewCtrl.GetAnalytics)
		protected.GET("/interviews/history", interviewCtrl.GetHistory)
		protected.GET("/interviews/:session_id", interviewCtrl.GetSession)
		protected.DELETE("/interviews/:session_id", interviewCtrl.DeleteSession)
		protected.POST("/interviews/:session_id/questions/:question_id/answer", interviewCtrl.SubmitAnswer)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Mockmate API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Question{},
		&model.Feedback{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
