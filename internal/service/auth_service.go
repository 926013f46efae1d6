package service

import (
	"errors"

	"github.com/adeshpatel700-rgb/Mockmate/internal/apperror"
	"github.com/adeshpatel700-rgb/Mockmate/internal/dto"
	"github.com/adeshpatel700-rgb/Mockmate/internal/model"
	"github.com/adeshpatel700-rgb/Mockmate/internal/repository"
	"github.com/adeshpatel700-rgb/Mockmate/pkg/auth"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(req dto.LoginRequest) (*dto.TokenResponse, error)
	GetUserByID(userID string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwt      *auth.JWTService
}

func NewAuthService(userRepo repository.UserRepository, jwt *auth.JWTService) AuthService {
	return &authService{userRepo: userRepo, jwt: jwt}
}

func (s *authService) Register(req dto.RegisterRequest) (*dto.TokenResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewInvalidError("An account with this email already exists.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: string(hashed),
		IsActive:       true,
	}
	if err := s.userRepo.Create(&user); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		return nil, err
	}

	return s.tokenResponse(&user)
}

func (s *authService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	// Same error for unknown email and wrong password, so the endpoint cannot
	// be used to enumerate registered accounts.
	invalidCredentials := apperror.NewUnauthorizedError("Invalid email or password.")

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		return nil, invalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.NewForbiddenError("Your account has been disabled. Please contact support.")
	}

	return s.tokenResponse(user)
}

func (s *authService) GetUserByID(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User not found.")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) tokenResponse(user *model.User) (*dto.TokenResponse, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to sign access token")
		return nil, err
	}

	var userResp dto.UserResponse
	if err := copier.Copy(&userResp, user); err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        userResp,
	}, nil
}
