package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	BillStatusPaid    = "Paid"
	BillStatusPending = "Pending"
)

// Modos de pago aceptados en el punto de venta.
const (
	PaymentModeCash = "Cash"
	PaymentModeCard = "Card"
	PaymentModeUPI  = "UPI"
)

// Bill representa una factura emitida por un checkout.
// Es inmutable una vez creada; la colección de facturas es append-only.
// Items es una copia por valor de las líneas del carrito al momento del
// commit: cambios posteriores de precio en el catálogo no la afectan.
type Bill struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"` // consecutivo legible BN######, para el recibo
	Date         time.Time       `json:"date"`
	CustomerName string          `json:"customer"`
	Amount       decimal.Decimal `json:"amount"` // total con impuesto incluido
	Status       string          `json:"status"` // Paid | Pending
	PaymentMode  string          `json:"paymentMode"`
	Items        []BillItem      `json:"items"`
	TaxDetails   string          `json:"gstDetails"` // anotación de impuesto, ej. "18% GST Applied"
}

// BillItem es una línea de la factura (snapshot de una línea del carrito).
type BillItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// TotalUnits devuelve la suma de cantidades de todas las líneas.
func (b *Bill) TotalUnits() int {
	total := 0
	for _, it := range b.Items {
		total += it.Quantity
	}
	return total
}
