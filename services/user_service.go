package services

import (
	"context"
	"strings"
	"time"

	apperrors "commerce-api/common/errors"
	"commerce-api/models"
	"commerce-api/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserService struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the caller's account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Upstream("Error fetching profile", err)
	}
	return user, nil
}

// UpdateProfile patches the caller's name, phone and address. Email and
// role are not editable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, *apperrors.Error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID format")
	}

	updates := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	matched, err := s.userRepo.Update(ctx, uid, updates)
	if err != nil {
		return nil, apperrors.Upstream("Error updating profile", err)
	}
	if matched == 0 {
		return nil, apperrors.NotFound("User not found")
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, apperrors.Upstream("Error updating profile", err)
	}
	return user, nil
}

// ChangePassword rotates the caller's password after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) *apperrors.Error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("Invalid user ID format")
	}
	if len(req.NewPassword) < 6 {
		return apperrors.Validation("Password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Upstream("Error changing password", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Upstream("Error changing password", err)
	}

	if _, err := s.userRepo.Update(ctx, uid, bson.M{
		"password":   string(hash),
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return apperrors.Upstream("Error changing password", err)
	}
	return nil
}
