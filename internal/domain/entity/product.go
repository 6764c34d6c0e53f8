package entity

import "github.com/shopspring/decimal"

// Product representa un artículo del catálogo de la tienda.
// Stock es la existencia actual; solo el checkout la descuenta (el editor de
// catálogo, colaborador externo, puede modificarla y debe publicar en el bus).
// Barcode es opcional; cuando existe, es único dentro del catálogo.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"` // precio unitario de venta (>= 0)
	Unit     string          `json:"unit"`  // etiqueta de unidad: bags, bottles, packs...
	Stock    int             `json:"stock"` // entero >= 0
	Category string          `json:"category"`
	Barcode  string          `json:"barcode,omitempty"`
}
