package sale

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
)

// CartLine es una línea del carrito: snapshot del artículo al momento de
// agregarlo más la cantidad. El snapshot fija precio y techo de stock para la
// venta en curso; no se persiste nunca.
type CartLine struct {
	Product  entity.Product
	Quantity int
}

// Subtotal devuelve precio × cantidad de la línea.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart es el área de staging de una venta: lista ordenada de líneas, única
// por artículo (re-agregar incrementa cantidad en vez de duplicar línea).
// Invariante por línea: 1 <= Quantity <= stock del último refresh del catálogo.
// Vive solo durante una venta; Clear lo vacía en checkout exitoso o al
// iniciar una transacción nueva.
type Cart struct {
	mu    sync.Mutex
	lines []*CartLine
}

// NewCart construye un carrito vacío.
func NewCart() *Cart {
	return &Cart{}
}

// Add agrega qty unidades del artículo. Si la línea existe, incrementa la
// cantidad recortada para no superar el stock actual (pasado el techo es un
// no-op silencioso: es la guarda "no se puede sobrevender", no un error).
// Si no existe y hay stock, inserta la línea con min(qty, stock). El snapshot
// del artículo se refresca con el valor recibido.
func (c *Cart) Add(item entity.Product, qty int) {
	if qty <= 0 || item.Stock <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.lines {
		if line.Product.ID == item.ID {
			line.Product = item
			line.Quantity = clamp(line.Quantity+qty, 1, item.Stock)
			return
		}
	}
	c.lines = append(c.lines, &CartLine{Product: item, Quantity: clamp(qty, 1, item.Stock)})
}

// SetQuantity fija la cantidad de la línea, recortada a [1, stock].
// Si la línea no existe, no hace nada (quitar es una operación aparte).
func (c *Cart) SetQuantity(itemID string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if line.Product.ID == itemID {
			line.Quantity = clamp(qty, 1, line.Product.Stock)
			return
		}
	}
}

// Increment suma delta (puede ser negativo) a la cantidad de la línea,
// recortada a [1, stock]: decrementar por debajo de 1 queda en 1.
func (c *Cart) Increment(itemID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if line.Product.ID == itemID {
			line.Quantity = clamp(line.Quantity+delta, 1, line.Product.Stock)
			return
		}
	}
}

// Remove elimina la línea incondicionalmente.
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, line := range c.lines {
		if line.Product.ID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear vacía el carrito.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines devuelve una copia de las líneas en orden de inserción.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	return out
}

// QuantityFor devuelve la cantidad en carrito del artículo (0 si no está).
func (c *Cart) QuantityFor(itemID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range c.lines {
		if line.Product.ID == itemID {
			return line.Quantity
		}
	}
	return 0
}

// Len devuelve el número de líneas.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Subtotal devuelve la suma de precio × cantidad de todas las líneas.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Subtotal())
	}
	return subtotal
}

// Tax devuelve el impuesto: subtotal × taxRate.
func (c *Cart) Tax(taxRate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Mul(taxRate)
}

// Total devuelve subtotal × (1 + taxRate).
func (c *Cart) Total(taxRate decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Mul(decimal.NewFromInt(1).Add(taxRate))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
