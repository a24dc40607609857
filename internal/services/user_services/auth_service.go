// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coreframe-ai/coreframe-server/internal/domain"
	"github.com/coreframe-ai/coreframe-server/internal/repository/user"
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		logger:       logger,
	}
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	if err := s.validateRegistrationInput(email, username, password); err != nil {
		s.logger.Warn("registration validation failed",
			"email", maskEmail(email), "error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Info("user registration attempt", "email", maskEmail(email))

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		s.logger.Warn("registration failed - email already registered",
			"email", maskEmail(email), "existing_user_id", existing.ID)
		return nil, errors.New("email already registered")
	}

	u := &domain.User{
		Email:    email,
		Username: username,
	}
	if err := u.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "email", maskEmail(email), "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed", "email", maskEmail(email), "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"email", maskEmail(email), "user_id", created.ID)
	return created, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_email", email != "", "has_password", password != "")
		return nil, "", errors.New("email and password are required")
	}

	s.logger.Info("user login attempt", "email", maskEmail(email))

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed - user not found", "email", maskEmail(email))
		return nil, "", errors.New("invalid credentials")
	}

	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password",
			"email", maskEmail(email), "user_id", u.ID)
		return nil, "", errors.New("invalid credentials")
	}

	token, err := s.generateJWTToken(u)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "email", maskEmail(email), "user_id", u.ID)
	return u, token, nil
}

// ValidateJWTToken validates a JWT token and returns the user ID.
func (s *AuthService) ValidateJWTToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Warn("JWT token with invalid signing method", "method", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecretKey), nil
	})
	if err != nil {
		s.logger.Warn("JWT token validation failed", "error", err)
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			s.logger.Warn("JWT token missing user_id claim")
			return "", errors.New("invalid token claims")
		}
		return userID, nil
	}

	return "", errors.New("invalid token")
}

func (s *AuthService) generateJWTToken(u *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecretKey))
}

func (s *AuthService) validateRegistrationInput(email, username, password string) error {
	emailRegex := regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email validation: invalid email address")
	}
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username validation: username must be 3-20 characters, alphanumeric or underscore")
	}
	if len(password) < 8 {
		return fmt.Errorf("password validation: password must be at least 8 characters")
	}
	return nil
}
