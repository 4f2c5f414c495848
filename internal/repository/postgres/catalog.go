package postgres

import (
	"context"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
)

// CreateProduct inserts a product and fills in the generated id.
func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	const query = `INSERT INTO productos (nombre, precio, stock) VALUES ($1, $2, $3) RETURNING id`
	row := r.pool.QueryRow(ctx, query, product.Nombre, product.Precio, product.Stock)
	if err := row.Scan(&product.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetProductByID fetches a product.
func (r *Repository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `SELECT id, nombre, precio, stock FROM productos WHERE id = $1`
	var p domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Nombre, &p.Precio, &p.Stock); err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// ListProducts returns the full catalog.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT id, nombre, precio, stock FROM productos ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Precio, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct replaces mutable product fields.
func (r *Repository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	const query = `UPDATE productos SET nombre = $2, precio = $3, stock = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, product.ID, product.Nombre, product.Precio, product.Stock)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO categorias (nombre) VALUES ($1) RETURNING id`
	if err := r.pool.QueryRow(ctx, query, category.Nombre).Scan(&category.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetCategoryByID fetches a category.
func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	const query = `SELECT id, nombre FROM categorias WHERE id = $1`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Nombre); err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// ListCategories returns all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, nombre FROM categorias ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Nombre); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categorias SET nombre = $2 WHERE id = $1`, category.ID, category.Nombre)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateVariant inserts a variant.
func (r *Repository) CreateVariant(ctx context.Context, variant *domain.Variant) error {
	const query = `INSERT INTO variantes (id_producto, precio, stock, cantidad, imagen)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	row := r.pool.QueryRow(ctx, query, variant.ProductoID, variant.Precio, variant.Stock, variant.Cantidad, variant.Imagen)
	if err := row.Scan(&variant.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetVariantByID fetches a variant.
func (r *Repository) GetVariantByID(ctx context.Context, id int64) (*domain.Variant, error) {
	const query = `SELECT id, id_producto, precio, stock, cantidad, imagen FROM variantes WHERE id = $1`
	var v domain.Variant
	if err := r.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.ProductoID, &v.Precio, &v.Stock, &v.Cantidad, &v.Imagen); err != nil {
		return nil, translateError(err)
	}
	return &v, nil
}

// ListVariants returns all variants.
func (r *Repository) ListVariants(ctx context.Context) ([]domain.Variant, error) {
	const query = `SELECT id, id_producto, precio, stock, cantidad, imagen FROM variantes ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := make([]domain.Variant, 0)
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductoID, &v.Precio, &v.Stock, &v.Cantidad, &v.Imagen); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// UpdateVariant replaces mutable variant fields.
func (r *Repository) UpdateVariant(ctx context.Context, variant *domain.Variant) error {
	const query = `UPDATE variantes SET id_producto = $2, precio = $3, stock = $4, cantidad = $5, imagen = $6 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, variant.ID, variant.ProductoID, variant.Precio, variant.Stock, variant.Cantidad, variant.Imagen)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteVariant removes a variant.
func (r *Repository) DeleteVariant(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM variantes WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
