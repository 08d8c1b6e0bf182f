package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildsafe/safety-backend/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	// List returns projects ordered by name; an empty status returns all of them.
	List(ctx context.Context, status string) ([]domain.Project, error)
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type gormProjectRepository struct {
	db *gorm.DB
}

func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	return wrap("insert project", r.db.WithContext(ctx).Create(p).Error)
}

func (r *gormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return &p, nil
}

func (r *gormProjectRepository) List(ctx context.Context, status string) ([]domain.Project, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Project
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap("list projects", err)
	}
	return out, nil
}

func (r *gormProjectRepository) NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Project
	if err := r.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, wrap("lookup project names", err)
	}
	for _, p := range rows {
		out[p.ID] = p.Name
	}
	return out, nil
}
