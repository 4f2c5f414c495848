package domain

// Product is a sellable item in the catalog.
type Product struct {
	ID     int64   `json:"id"`
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Stock  int     `json:"stock"`
}

// Variant is a presentation of a product. Cantidad is the content in ml.
type Variant struct {
	ID         int64   `json:"id"`
	ProductoID int64   `json:"id_producto"`
	Precio     float64 `json:"precio"`
	Stock      int     `json:"stock"`
	Cantidad   int     `json:"cantidad"`
	Imagen     string  `json:"imagen"`
}
