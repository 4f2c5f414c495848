package repository

import (
	"context"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, correo string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserProfile(ctx context.Context, user *domain.User) error
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// VariantRepository persists product variants.
type VariantRepository interface {
	CreateVariant(ctx context.Context, variant *domain.Variant) error
	GetVariantByID(ctx context.Context, id int64) (*domain.Variant, error)
	ListVariants(ctx context.Context) ([]domain.Variant, error)
	UpdateVariant(ctx context.Context, variant *domain.Variant) error
	DeleteVariant(ctx context.Context, id int64) error
}

// PurchaseRepository persists purchases and their line items.
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, purchase *domain.Purchase) error
	GetPurchaseByID(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	UpdatePurchase(ctx context.Context, purchase *domain.Purchase) error
	DeletePurchase(ctx context.Context, id int64) error

	CreatePurchaseDetail(ctx context.Context, detail *domain.PurchaseDetail) error
	GetPurchaseDetailByID(ctx context.Context, id int64) (*domain.PurchaseDetail, error)
	ListPurchaseDetails(ctx context.Context) ([]domain.PurchaseDetail, error)
	UpdatePurchaseDetail(ctx context.Context, detail *domain.PurchaseDetail) error
	DeletePurchaseDetail(ctx context.Context, id int64) error
}
