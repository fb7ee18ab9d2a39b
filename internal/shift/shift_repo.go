package shift

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, organizationID, id string) (*Shift, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &s, nil
}
