package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"commerce-api/common/auth"
	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	userRepo repository.UserRepo
	tokens   *auth.TokenManager
}

func NewAuthService(userRepo repository.UserRepo, tokens *auth.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register creates a user account and returns a signed token. Emails are
// stored lowercased and unique.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, *apperrors.Error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, apperrors.Validation("Name, email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return nil, apperrors.Validation("Invalid email format")
	}
	if len(req.Password) < 6 {
		return nil, apperrors.Validation("Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Upstream("Error creating account", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Phone:     req.Phone,
		Address:   req.Address,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, apperrors.Upstream("Error creating account", err)
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Upstream("Error creating account", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. Bad email and bad
// password produce the same response.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, *apperrors.Error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Upstream("Error logging in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Upstream("Error logging in", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}
