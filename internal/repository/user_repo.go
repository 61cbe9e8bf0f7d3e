package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
)

type UserRepository interface {
	// CreateWithInitialRole inserts the user, deciding the role inside the
	// same transaction: the first user ever becomes admin, everyone after
	// is a viewer. The unique indexes on email and username are the
	// duplicate guarantee; a duplicate surfaces as gorm.ErrDuplicatedKey.
	CreateWithInitialRole(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindActiveByID(ctx context.Context, id uint) (*model.User, error)
	FindActiveByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uint) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	// ActiveStaffEmails lists emails of active admins and managers, the
	// baseline recipient set for alert fan-out.
	ActiveStaffEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateWithInitialRole(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			user.Role = model.RoleAdmin
		} else if user.Role == "" {
			user.Role = model.RoleViewer
		}
		user.IsActive = true

		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindActiveByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByUsernameOrEmail matches the email side case-insensitively:
// addresses are stored lowercased at registration, but users type them back
// in whatever case they like.
func (r *userRepository) FindActiveByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email) = ?) AND is_active = ?", identifier, strings.ToLower(identifier), true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *userRepository) ActiveStaffEmails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role IN ? AND is_active = ?", []string{model.RoleAdmin, model.RoleManager}, true).
		Pluck("email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
