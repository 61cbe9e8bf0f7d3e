package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
)

type CollaboratorRepository interface {
	// FindAll filters by a case-insensitive substring over full_name OR
	// email, and by a status matching EITHER onboarding track. Results are
	// ordered by hire_date descending.
	FindAll(ctx context.Context, search, status string) ([]model.Collaborator, error)
	FindByID(ctx context.Context, id uint) (*model.Collaborator, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Collaborator, error)
	Create(ctx context.Context, c *model.Collaborator) error
	// UpdateFields applies a partial update and reports how many rows
	// matched; zero means the collaborator does not exist.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type collaboratorRepository struct {
	db *gorm.DB
}

func NewCollaboratorRepository(db *gorm.DB) CollaboratorRepository {
	return &collaboratorRepository{db: db}
}

func (r *collaboratorRepository) FindAll(ctx context.Context, search, status string) ([]model.Collaborator, error) {
	query := r.db.WithContext(ctx).Model(&model.Collaborator{})

	if search = strings.TrimSpace(search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		// LOWER(...) LIKE keeps the query portable across postgres and
		// the sqlite driver used in tests.
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	if status != "" && status != "all" {
		query = query.Where("welcome_onboarding_status = ? OR technical_onboarding_status = ?", status, status)
	}

	var collaborators []model.Collaborator
	if err := query.Order("hire_date DESC").Find(&collaborators).Error; err != nil {
		return nil, err
	}
	return collaborators, nil
}

func (r *collaboratorRepository) FindByID(ctx context.Context, id uint) (*model.Collaborator, error) {
	var c model.Collaborator
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collaboratorRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Collaborator, error) {
	var collaborators []model.Collaborator
	if len(ids) == 0 {
		return collaborators, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("hire_date DESC").
		Find(&collaborators).Error; err != nil {
		return nil, err
	}
	return collaborators, nil
}

func (r *collaboratorRepository) Create(ctx context.Context, c *model.Collaborator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *collaboratorRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Collaborator{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *collaboratorRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Collaborator{}, id)
	return result.RowsAffected, result.Error
}
