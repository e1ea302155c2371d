package repository

import (
	"context"
	"errors"
	"fmt"

	"animehub/internal/api/models"

	"gorm.io/gorm"
)

// ErrStaleAccount means the account row changed between load and save; the
// caller should reload and retry the whole mutation.
var ErrStaleAccount = errors.New("account was modified concurrently")

// UserRepository defines the interface for account document operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error, never a zero-value struct: GORM would otherwise
	// treat the empty row as a found record
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Save replaces the whole account row, guarded by the version column. A save
// against a version that is no longer current affects zero rows and returns
// ErrStaleAccount with the in-memory version left untouched.
func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	current := user.Version
	user.Version = current + 1

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND version = ?", user.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(user)
	if res.Error != nil {
		user.Version = current
		return fmt.Errorf("save account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		user.Version = current
		return ErrStaleAccount
	}
	return nil
}
