package domain

import "time"

// Purchase records a completed sale.
type Purchase struct {
	ID        int64     `json:"id"`
	UsuarioID int64     `json:"id_usuario"`
	Fecha     time.Time `json:"fecha"`
	Total     float64   `json:"total"`
}

// PurchaseDetail is one line item of a purchase, referencing a variant.
type PurchaseDetail struct {
	ID         int64   `json:"id"`
	CompraID   int64   `json:"id_compra"`
	VarianteID int64   `json:"id_variante"`
	Cantidad   int     `json:"cantidad"`
	Subtotal   float64 `json:"subtotal"`
}
