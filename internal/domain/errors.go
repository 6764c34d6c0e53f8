package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrEmptyCart         = errors.New("el carrito está vacío")
	ErrNoCustomer        = errors.New("no hay cliente seleccionado")
	ErrCheckoutInFlight  = errors.New("hay un checkout en proceso")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
