package domain

// Category groups products.
type Category struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}
