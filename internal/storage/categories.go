package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finledger/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var created core.Category
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if c.ParentID != 0 {
			var exists bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM categories WHERE id = ? AND user_id = ?)`,
				c.ParentID, c.UserID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check parent category: %w", err)
			}
			if !exists {
				return core.ErrCategoryNotFound
			}
		}

		var parentID any
		if c.ParentID != 0 {
			parentID = c.ParentID
		}
		row := tx.QueryRowContext(ctx, `
			INSERT INTO categories (user_id, name, type, is_fixed, parent_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, user_id, name, type, is_fixed, parent_id`,
			c.UserID, c.Name, string(c.Type), c.IsFixed, parentID)
		var err error
		created, err = scanCategory(row)
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return created, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, is_fixed, parent_id
		FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetCategoryByName resolves a category name to its record. The boundary
// uses this once per request so string categories never reach the ledger.
func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, userID int64, name string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, is_fixed, parent_id
		FROM categories WHERE user_id = ? AND name = ?`, userID, name)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, is_fixed, parent_id
		FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c        core.Category
		catType  string
		parentID sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &catType, &c.IsFixed, &parentID)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(catType)
	if parentID.Valid {
		c.ParentID = parentID.Int64
	}
	return c, nil
}
