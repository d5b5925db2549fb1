package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"backoffice-service/app/domain"
)

type catalogUsecase struct {
	categoryRepo domain.CategoryRepository
	productRepo  domain.ProductRepository
	skuRepo      domain.SKURepository
	auditRepo    domain.AuditRepository
}

func NewCatalogUsecase(categoryRepo domain.CategoryRepository, productRepo domain.ProductRepository,
	skuRepo domain.SKURepository, auditRepo domain.AuditRepository) domain.CatalogUsecase {
	return &catalogUsecase{categoryRepo, productRepo, skuRepo, auditRepo}
}

func (u *catalogUsecase) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (*domain.Category, error) {
	category := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
	}

	if err := u.categoryRepo.Create(ctx, category); err != nil {
		slog.ErrorContext(ctx, "[catalogUsecase] CreateCategory", "createCategory", err)
		return nil, err
	}

	return category, nil
}

func (u *catalogUsecase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return u.categoryRepo.List(ctx)
}

func (u *catalogUsecase) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (*domain.Product, error) {
	if _, err := u.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		slog.ErrorContext(ctx, "[catalogUsecase] CreateProduct", "getCategory", err)
		return nil, fmt.Errorf("category %d: %w", req.CategoryID, err)
	}

	product := &domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProductStatusActive,
	}

	if err := u.productRepo.Create(ctx, product); err != nil {
		slog.ErrorContext(ctx, "[catalogUsecase] CreateProduct", "createProduct", err)
		return nil, err
	}

	return product, nil
}

func (u *catalogUsecase) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return u.productRepo.GetByID(ctx, id)
}

func (u *catalogUsecase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return u.productRepo.List(ctx)
}

func (u *catalogUsecase) DeleteProduct(ctx context.Context, id int64, actor string) error {
	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "[catalogUsecase] DeleteProduct", "getProduct", err)
		return err
	}

	referenced, err := u.skuRepo.ReferencedByOrderLines(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "[catalogUsecase] DeleteProduct", "referencedByOrderLines", err)
		return err
	}

	return u.skuRepo.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if referenced {
			// Order lines keep their price history, so a referenced
			// product is retired rather than removed.
			if err := u.productRepo.UpdateStatus(ctx, id, domain.ProductStatusDiscontinued, tx); err != nil {
				slog.ErrorContext(ctx, "[catalogUsecase] DeleteProduct", "updateStatus", err)
				return err
			}
			return u.auditRepo.Insert(ctx, &domain.AuditRecord{
				EntityTable: "products",
				EntityID:    id,
				Operation:   domain.AuditOperationUpdate,
				Actor:       actor,
				Changes: map[string]domain.FieldChange{
					"status": {Old: product.Status, New: domain.ProductStatusDiscontinued},
				},
			}, tx)
		}

		if err := u.productRepo.Delete(ctx, id, tx); err != nil {
			slog.ErrorContext(ctx, "[catalogUsecase] DeleteProduct", "deleteProduct", err)
			return err
		}
		return u.auditRepo.Insert(ctx, &domain.AuditRecord{
			EntityTable: "products",
			EntityID:    id,
			Operation:   domain.AuditOperationDelete,
			Actor:       actor,
			Changes: map[string]domain.FieldChange{
				"name":   {Old: product.Name},
				"status": {Old: product.Status},
			},
		}, tx)
	})
}
