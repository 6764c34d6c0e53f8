package entity

import "github.com/shopspring/decimal"

// Customer representa un cliente de la tienda.
// TotalSpent es el acumulado histórico facturado (LTV); nunca decrece en
// operación normal: cada checkout exitoso le suma el total de la factura.
type Customer struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}
