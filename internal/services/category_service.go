package services

import (
	"context"
	"fmt"
	"log/slog"

	"finledger/internal/core"
	"finledger/internal/storage"
)

// CategoryService manages the category tree. Categories are immutable once
// created; transactions reference them by id only.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.storage.GetCategory(ctx, userID, id)
}

// ResolveByName maps a category name to its record, for boundaries that
// still speak in names.
func (s *CategoryService) ResolveByName(ctx context.Context, userID int64, name string) (core.Category, error) {
	return s.storage.GetCategoryByName(ctx, userID, name)
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %s", core.ErrInvalidTransaction, err)
	}

	created, err := s.storage.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", created.ID,
		"name", created.Name,
		"type", created.Type,
		"is_fixed", created.IsFixed)
	return created, nil
}
