package postgres

import (
	"context"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
)

// CreatePurchase inserts a purchase header.
func (r *Repository) CreatePurchase(ctx context.Context, purchase *domain.Purchase) error {
	const query = `INSERT INTO compras (id_usuario, fecha, total) VALUES ($1, $2, $3) RETURNING id`
	row := r.pool.QueryRow(ctx, query, purchase.UsuarioID, purchase.Fecha, purchase.Total)
	if err := row.Scan(&purchase.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetPurchaseByID fetches a purchase header.
func (r *Repository) GetPurchaseByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	const query = `SELECT id, id_usuario, fecha, total FROM compras WHERE id = $1`
	var p domain.Purchase
	if err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.UsuarioID, &p.Fecha, &p.Total); err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// ListPurchases returns all purchases, newest first.
func (r *Repository) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	const query = `SELECT id, id_usuario, fecha, total FROM compras ORDER BY fecha DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0)
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.UsuarioID, &p.Fecha, &p.Total); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// UpdatePurchase replaces purchase header fields.
func (r *Repository) UpdatePurchase(ctx context.Context, purchase *domain.Purchase) error {
	const query = `UPDATE compras SET id_usuario = $2, fecha = $3, total = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, purchase.ID, purchase.UsuarioID, purchase.Fecha, purchase.Total)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeletePurchase removes a purchase header and cascades to its details.
func (r *Repository) DeletePurchase(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM compras WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreatePurchaseDetail inserts a line item.
func (r *Repository) CreatePurchaseDetail(ctx context.Context, detail *domain.PurchaseDetail) error {
	const query = `INSERT INTO detalle_compras (id_compra, id_variante, cantidad, subtotal)
		VALUES ($1, $2, $3, $4) RETURNING id`
	row := r.pool.QueryRow(ctx, query, detail.CompraID, detail.VarianteID, detail.Cantidad, detail.Subtotal)
	if err := row.Scan(&detail.ID); err != nil {
		return translateError(err)
	}
	return nil
}

// GetPurchaseDetailByID fetches a line item.
func (r *Repository) GetPurchaseDetailByID(ctx context.Context, id int64) (*domain.PurchaseDetail, error) {
	const query = `SELECT id, id_compra, id_variante, cantidad, subtotal FROM detalle_compras WHERE id = $1`
	var d domain.PurchaseDetail
	if err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.CompraID, &d.VarianteID, &d.Cantidad, &d.Subtotal); err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

// ListPurchaseDetails returns all line items.
func (r *Repository) ListPurchaseDetails(ctx context.Context) ([]domain.PurchaseDetail, error) {
	const query = `SELECT id, id_compra, id_variante, cantidad, subtotal FROM detalle_compras ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.PurchaseDetail, 0)
	for rows.Next() {
		var d domain.PurchaseDetail
		if err := rows.Scan(&d.ID, &d.CompraID, &d.VarianteID, &d.Cantidad, &d.Subtotal); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// UpdatePurchaseDetail replaces line item fields.
func (r *Repository) UpdatePurchaseDetail(ctx context.Context, detail *domain.PurchaseDetail) error {
	const query = `UPDATE detalle_compras SET id_compra = $2, id_variante = $3, cantidad = $4, subtotal = $5 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, detail.ID, detail.CompraID, detail.VarianteID, detail.Cantidad, detail.Subtotal)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeletePurchaseDetail removes a line item.
func (r *Repository) DeletePurchaseDetail(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM detalle_compras WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
