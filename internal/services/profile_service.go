package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AndreiCalugar/FertiHub/internal/auth"
	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

var (
	// ErrProfileNotFound is returned when a user ID or email resolves to nothing.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrEmailExists is returned when registering with an email already in use.
	ErrEmailExists = errors.New("email already in use by another account")
	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrWeakPassword is returned when a new password fails the policy regexp.
	ErrWeakPassword = errors.New("password does not meet the strength requirements")
)

// ProfileInput carries the editable organization profile fields.
type ProfileInput struct {
	OrganizationName string                   `json:"organization_name" binding:"required"`
	OrganizationType *models.OrganizationType `json:"organization_type"`
	Location         *string                  `json:"location"`
}

// IProfileService defines the interface for account operations.
type IProfileService interface {
	Register(ctx context.Context, email, password string, input *ProfileInput) (*models.UserProfile, error)
	Authenticate(ctx context.Context, email, password string) (*models.UserProfile, error)
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)
	Update(ctx context.Context, userID string, input *ProfileInput) (*models.UserProfile, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

const userProfilesCollection = "user_profiles"

type profileService struct {
	db         *mongo.Database
	cfg        *config.Config
	passwordRe *regexp.Regexp
}

// NewProfileService creates a new ProfileService. Panics on an invalid
// PASSWORD_REGEXP, which is a deployment error.
func NewProfileService(db *mongo.Database, cfg *config.Config) IProfileService {
	return &profileService{
		db:         db,
		cfg:        cfg,
		passwordRe: regexp.MustCompile(cfg.PasswordRegexp),
	}
}

func (s *profileService) Register(ctx context.Context, email, password string, input *ProfileInput) (*models.UserProfile, error) {
	if !s.passwordRe.MatchString(password) {
		return nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	doc, err := db.InsertOne(ctx, s.db.Collection(userProfilesCollection), &models.UserProfile{
		Email:            strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:     hash,
		OrganizationName: input.OrganizationName,
		OrganizationType: input.OrganizationType,
		Location:         input.Location,
		Role:             models.RoleLabManager,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		// The unique index on email turns a duplicate registration into a
		// duplicate-key error after the _id retry is ruled out.
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return doc.(*models.UserProfile), nil
}

func (s *profileService) Authenticate(ctx context.Context, email, password string) (*models.UserProfile, error) {
	var profile models.UserProfile
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	err := s.db.Collection(userProfilesCollection).FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}
	if !auth.CheckPasswordHash(password, profile.PasswordHash) {
		return nil, ErrWrongPassword
	}
	return &profile, nil
}

func (s *profileService) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Collection(userProfilesCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile %s: %w", userID, err)
	}
	return &profile, nil
}

func (s *profileService) Update(ctx context.Context, userID string, input *ProfileInput) (*models.UserProfile, error) {
	update := bson.M{"$set": bson.M{
		"organization_name": input.OrganizationName,
		"organization_type": input.OrganizationType,
		"location":          input.Location,
		"updated_at":        time.Now().UTC(),
	}}
	res, err := s.db.Collection(userProfilesCollection).UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrProfileNotFound
	}
	return s.GetByID(ctx, userID)
}

func (s *profileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	profile, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(currentPassword, profile.PasswordHash) {
		return ErrWrongPassword
	}
	if !s.passwordRe.MatchString(newPassword) {
		return ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = s.db.Collection(userProfilesCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to update password for %s: %w", userID, err)
	}
	return nil
}
