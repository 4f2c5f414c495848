package catalog

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
)

// ErrInvalidInput matches every validation failure produced by this service,
// so transport code can separate rejected payloads from store failures.
var ErrInvalidInput = errors.New("datos inválidos")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrInvalidInput }

var (
	errInvalidProductName  error = validationError("nombre de producto requerido")
	errInvalidCategoryName error = validationError("nombre de categoría requerido")
	errInvalidPrice        error = validationError("precio debe ser mayor o igual a cero")
	errInvalidStock        error = validationError("stock debe ser mayor o igual a cero")
	errMissingProductRef   error = validationError("id_producto requerido")
)

// Service orchestrates catalog management: products, categories, variants.
type Service struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	variants   repository.VariantRepository
	logger     *slog.Logger
}

// New returns a catalog service.
func New(products repository.ProductRepository, categories repository.CategoryRepository, variants repository.VariantRepository, logger *slog.Logger) Service {
	return Service{products: products, categories: categories, variants: variants, logger: logger}
}

// CreateProduct validates and stores a product.
func (s Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", "product_id", product.ID)
	return product, nil
}

// GetProduct returns one product.
func (s Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetProductByID(ctx, id)
}

// ListProducts returns the whole catalog.
func (s Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListProducts(ctx)
}

// UpdateProduct validates and replaces product fields.
func (s Service) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// CreateCategory validates and stores a category.
func (s Service) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Nombre) == "" {
		return nil, errInvalidCategoryName
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "category_id", category.ID)
	return category, nil
}

// GetCategory returns one category.
func (s Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetCategoryByID(ctx, id)
}

// ListCategories returns all categories.
func (s Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// UpdateCategory renames a category.
func (s Service) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Nombre) == "" {
		return nil, errInvalidCategoryName
	}
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.DeleteCategory(ctx, id)
}

// CreateVariant validates and stores a variant.
func (s Service) CreateVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error) {
	if err := s.validateVariant(ctx, variant); err != nil {
		return nil, err
	}
	if err := s.variants.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	s.logger.Info("variant created", "variant_id", variant.ID, "product_id", variant.ProductoID)
	return variant, nil
}

// GetVariant returns one variant.
func (s Service) GetVariant(ctx context.Context, id int64) (*domain.Variant, error) {
	return s.variants.GetVariantByID(ctx, id)
}

// ListVariants returns all variants.
func (s Service) ListVariants(ctx context.Context) ([]domain.Variant, error) {
	return s.variants.ListVariants(ctx)
}

// UpdateVariant validates and replaces variant fields.
func (s Service) UpdateVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error) {
	if err := s.validateVariant(ctx, variant); err != nil {
		return nil, err
	}
	if err := s.variants.UpdateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// DeleteVariant removes a variant.
func (s Service) DeleteVariant(ctx context.Context, id int64) error {
	return s.variants.DeleteVariant(ctx, id)
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Nombre) == "" {
		return errInvalidProductName
	}
	if product.Precio < 0 {
		return errInvalidPrice
	}
	if product.Stock < 0 {
		return errInvalidStock
	}
	return nil
}

func (s Service) validateVariant(ctx context.Context, variant *domain.Variant) error {
	if variant.ProductoID == 0 {
		return errMissingProductRef
	}
	if variant.Precio < 0 {
		return errInvalidPrice
	}
	if variant.Stock < 0 {
		return errInvalidStock
	}
	// Variants must reference an existing product.
	if _, err := s.products.GetProductByID(ctx, variant.ProductoID); err != nil {
		return err
	}
	return nil
}
