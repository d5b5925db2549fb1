package db

import (
	"context"
	"database/sql"
	"log/slog"

	"backoffice-service/app/domain"
)

type categoryRepository struct {
	conn *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2)
	RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.Status, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[categoryRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	query := `SELECT id, name, description, status, created_at, updated_at FROM categories WHERE id = $1`

	var category domain.Category
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name,
		&category.Description, &category.Status, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[categoryRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return category, domain.ErrNotFound
		}
		return category, err
	}

	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, description, status, created_at, updated_at FROM categories ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[categoryRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description,
			&category.Status, &category.CreatedAt, &category.UpdatedAt); err != nil {
			slog.ErrorContext(ctx, "[categoryRepository] List", "scan", err)
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[categoryRepository] List", "rowError", err)
		return nil, err
	}

	return categories, nil
}

type productRepository struct {
	conn *sql.DB
}

func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{db}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (category_id, name, description) VALUES ($1, $2, $3)
	RETURNING id, status, created_at, updated_at`

	err := r.conn.QueryRowContext(ctx, query, product.CategoryID, product.Name, product.Description).
		Scan(&product.ID, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] Create", "queryRowContext", err)
		return err
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	query := `SELECT id, category_id, name, description, status, created_at, updated_at
	FROM products WHERE id = $1`

	var product domain.Product
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&product.ID, &product.CategoryID,
		&product.Name, &product.Description, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] GetByID", "queryRowContext", err)
		if err == sql.ErrNoRows {
			return product, domain.ErrNotFound
		}
		return product, err
	}

	return product, nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, category_id, name, description, status, created_at, updated_at
	FROM products ORDER BY id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] List", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.CategoryID, &product.Name,
			&product.Description, &product.Status, &product.CreatedAt, &product.UpdatedAt); err != nil {
			slog.ErrorContext(ctx, "[productRepository] List", "scan", err)
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[productRepository] List", "rowError", err)
		return nil, err
	}

	return products, nil
}

func (r *productRepository) UpdateStatus(ctx context.Context, id int64, status domain.ProductStatus, tx *sql.Tx) error {
	query := `UPDATE products SET status = $1, updated_at = now() WHERE id = $2`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, id)
	} else {
		_, err = r.conn.ExecContext(ctx, query, status, id)
	}
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] UpdateStatus", "execContext", err)
		return err
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64, tx *sql.Tx) error {
	query := `DELETE FROM products WHERE id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, id)
	} else {
		_, err = r.conn.ExecContext(ctx, query, id)
	}
	if err != nil {
		slog.ErrorContext(ctx, "[productRepository] Delete", "execContext", err)
		return err
	}

	return nil
}
