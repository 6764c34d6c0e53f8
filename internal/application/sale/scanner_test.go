package sale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saurabh752007/ShopMaster/internal/bus"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// Test interno del paquete para poder inyectar el reloj del cooldown.

type staticCatalogRepo struct {
	products []*entity.Product
}

func (r *staticCatalogRepo) LoadAll() ([]*entity.Product, error) { return r.products, nil }
func (r *staticCatalogRepo) SaveAll([]*entity.Product) error     { return nil }

// scanFixture arma cache + carrito + pipeline con un reloj manual.
type scanFixture struct {
	pipeline *ScanPipeline
	cart     *Cart
	clock    time.Time
}

func newScanFixture(t *testing.T, products ...*entity.Product) *scanFixture {
	t.Helper()
	cache, err := NewCatalogCache(&staticCatalogRepo{products: products}, bus.New(), logger.Discard())
	require.NoError(t, err)

	cart := NewCart()
	f := &scanFixture{
		cart:  cart,
		clock: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	f.pipeline = NewScanPipeline(cache, cart, 1500*time.Millisecond, logger.Discard())
	f.pipeline.now = func() time.Time { return f.clock }
	return f
}

func (f *scanFixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func scannable(id, name, barcode string, stock int) *entity.Product {
	return &entity.Product{
		ID: id, Name: name, Barcode: barcode,
		Price: decimal.NewFromInt(100), Stock: stock,
	}
}

func TestScanPipeline_CodigoResueltoAgregaAlCarrito(t *testing.T) {
	f := newScanFixture(t, scannable("1", "Basmati Rice (5kg)", "890-001", 10))

	f.pipeline.OnDecoded("890-001")

	assert.Equal(t, 1, f.cart.QuantityFor("1"))
	assert.Equal(t, "Added: Basmati Rice (5kg)", f.pipeline.LastMessage())
	assert.True(t, f.pipeline.CooldownActive())
}

func TestScanPipeline_ResuelvePorIdentificadorComoFallback(t *testing.T) {
	f := newScanFixture(t, scannable("7", "Potato Chips (Large)", "", 5))

	f.pipeline.OnDecoded("7")

	assert.Equal(t, 1, f.cart.QuantityFor("7"))
}

func TestScanPipeline_CodigoDesconocido(t *testing.T) {
	f := newScanFixture(t, scannable("1", "A", "890-001", 10))

	f.pipeline.OnDecoded("ZZZ-999")

	assert.True(t, f.cart.IsEmpty(), "el carrito no debe mutar")
	assert.Equal(t, "Not Found: ZZZ-999", f.pipeline.LastMessage())
	assert.True(t, f.pipeline.CooldownActive(), "un código desconocido también abre cooldown")
}

func TestScanPipeline_StockAgotadoEnCarrito(t *testing.T) {
	f := newScanFixture(t, scannable("B", "Fresh Milk (500ml)", "890-003", 1))

	f.pipeline.OnDecoded("890-003")
	f.advance(2 * time.Second)
	f.pipeline.OnDecoded("890-003")

	assert.Equal(t, 1, f.cart.QuantityFor("B"), "sin mutación al llegar al techo")
	assert.Equal(t, "Max Stock: Fresh Milk (500ml)", f.pipeline.LastMessage())
}

// Un código llegando durante el cooldown se descarta por completo: no muta el
// carrito y no pisa el mensaje vigente hasta que venza la ventana.
func TestScanPipeline_CooldownDescartaEventos(t *testing.T) {
	f := newScanFixture(t,
		scannable("1", "A", "890-001", 10),
		scannable("2", "B", "890-002", 10),
	)

	f.pipeline.OnDecoded("890-001")
	require.Equal(t, "Added: A", f.pipeline.LastMessage())

	f.advance(500 * time.Millisecond)
	f.pipeline.OnDecoded("890-002") // dentro de la ventana: ignorado, no encolado

	assert.Equal(t, 0, f.cart.QuantityFor("2"))
	assert.Equal(t, "Added: A", f.pipeline.LastMessage(), "el mensaje vigente no se pisa")
}

// Muchos eventos de decodificación de un mismo código físico producen a lo
// sumo una mutación por ventana de cooldown.
func TestScanPipeline_UnEscaneoFisicoUnaMutacion(t *testing.T) {
	f := newScanFixture(t, scannable("1", "A", "890-001", 50))

	for i := 0; i < 20; i++ {
		f.pipeline.OnDecoded("890-001")
		f.advance(100 * time.Millisecond) // el decodificador emite ~10 veces/s
	}

	// 20 eventos en 2s con cooldown de 1.5s: solo 2 ventanas completas.
	assert.Equal(t, 2, f.cart.QuantityFor("1"))
}

func TestScanPipeline_MensajeSeLimpiaAlVencer(t *testing.T) {
	f := newScanFixture(t, scannable("1", "A", "890-001", 10))

	f.pipeline.OnDecoded("890-001")
	require.NotEmpty(t, f.pipeline.LastMessage())

	f.advance(1501 * time.Millisecond)

	assert.False(t, f.pipeline.CooldownActive())
	assert.Empty(t, f.pipeline.LastMessage())
}

func TestScanPipeline_EntradaVaciaSeIgnora(t *testing.T) {
	f := newScanFixture(t, scannable("1", "A", "890-001", 10))

	f.pipeline.OnDecoded("   ")

	assert.False(t, f.pipeline.CooldownActive())
	assert.Empty(t, f.pipeline.LastMessage())
}
