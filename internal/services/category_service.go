package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryService struct {
	categories models.CategoryRepo
}

func NewCategoryService(categories models.CategoryRepo) *CategoryService {
	return &CategoryService{categories: categories}
}

func (cs *CategoryService) ListCategories(ctx context.Context, term string, q models.ListQuery) ([]*models.Category, int64, error) {
	return cs.categories.ListCategories(ctx, strings.TrimSpace(term), q)
}

func (cs *CategoryService) CountCategories(ctx context.Context) (int64, error) {
	return cs.categories.CountCategories(ctx)
}

// CreateCategory stamps the caller as both creator and editor.
// A repeated name or slug returns models.ErrDuplicate.
func (cs *CategoryService) CreateCategory(ctx context.Context, actor policy.Actor, req *models.CategoryRequest) (*models.Category, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	category := &models.Category{
		Name:      strings.TrimSpace(req.Name),
		URLName:   strings.ToLower(strings.TrimSpace(req.URLName)),
		Info:      req.Info,
		CreatorID: actor.ID,
		EditorID:  actor.ID,
	}
	return cs.categories.CreateCategory(ctx, category)
}

func (cs *CategoryService) UpdateCategory(ctx context.Context, actor policy.Actor, id primitive.ObjectID, req *models.CategoryRequest) (*models.Category, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URLName = strings.ToLower(strings.TrimSpace(req.URLName))
	return cs.categories.UpdateCategory(ctx, id, req, actor.ID)
}

func (cs *CategoryService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return cs.categories.DeleteCategory(ctx, id)
}
