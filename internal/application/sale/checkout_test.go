package sale_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saurabh752007/ShopMaster/internal/application/sale"
	"github.com/Saurabh752007/ShopMaster/internal/bus"
	"github.com/Saurabh752007/ShopMaster/internal/domain"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
	"github.com/Saurabh752007/ShopMaster/internal/infrastructure/docstore"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: motor completo sobre un almacén documental en un directorio temporal
// ──────────────────────────────────────────────────────────────────────────────

var taxRate18 = decimal.RequireFromString("0.18")

type checkoutFixture struct {
	catalogRepo  *docstore.CatalogRepository
	customerRepo *docstore.CustomerRepository
	billRepo     *docstore.BillRepository
	changeBus    *bus.ChangeBus
	cache        *sale.CatalogCache
	cart         *sale.Cart
	resolver     *sale.CustomerResolver
	checkout     *sale.Checkout
}

func newCheckoutFixture(t *testing.T, latency time.Duration) *checkoutFixture {
	t.Helper()
	store, err := docstore.Open(t.TempDir(), logger.Discard())
	require.NoError(t, err)

	f := &checkoutFixture{
		catalogRepo:  docstore.NewCatalogRepository(store),
		customerRepo: docstore.NewCustomerRepository(store),
		billRepo:     docstore.NewBillRepository(store),
		changeBus:    bus.New(),
	}
	require.NoError(t, f.catalogRepo.SaveAll([]*entity.Product{
		{ID: "A", Name: "ItemA", Price: decimal.NewFromInt(100), Unit: "packs", Stock: 10, Category: "Groceries"},
		{ID: "B", Name: "ItemB", Price: decimal.NewFromInt(30), Unit: "pouches", Stock: 1, Category: "Dairy & Bakery"},
	}))
	require.NoError(t, f.customerRepo.SaveAll([]*entity.Customer{
		{ID: "CUST-101", Name: "Rahul Sharma", Phone: "9876543210", TotalSpent: decimal.NewFromInt(12500)},
	}))

	f.cache, err = sale.NewCatalogCache(f.catalogRepo, f.changeBus, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(f.cache.Close)

	f.cart = sale.NewCart()
	f.resolver = sale.NewCustomerResolver(f.customerRepo)
	f.checkout = sale.NewCheckout(
		docstore.NewTxRunner(store), f.changeBus, f.cart, f.resolver,
		sale.CheckoutConfig{TaxRate: taxRate18, CommitLatency: latency},
		logger.Discard(),
	)
	return f
}

func (f *checkoutFixture) selectCustomer(t *testing.T, id string) {
	t.Helper()
	customers, err := f.customerRepo.LoadAll()
	require.NoError(t, err)
	for _, c := range customers {
		if c.ID == id {
			f.resolver.Select(c)
			return
		}
	}
	t.Fatalf("cliente %s no sembrado", id)
}

func (f *checkoutFixture) addFromCache(t *testing.T, id string, qty int) {
	t.Helper()
	item, ok := f.cache.ByID(id)
	require.True(t, ok, "artículo %s no está en la caché", id)
	f.cart.Add(item, qty)
}

// ──────────────────────────────────────────────────────────────────────────────
// Precondiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_CarritoVacioRechazaSinEscribir(t *testing.T) {
	f := newCheckoutFixture(t, 0)

	_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, sale.StatusIdle, f.checkout.Status())

	bills, loadErr := f.billRepo.LoadAll()
	require.NoError(t, loadErr)
	assert.Empty(t, bills, "una validación fallida no toca el almacén")
}

func TestCheckout_SinClienteRechaza(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 1)

	_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})

	assert.ErrorIs(t, err, domain.ErrNoCustomer)
	assert.Equal(t, 1, f.cart.Len(), "el carrito queda intacto para corregir y reintentar")
}

func TestCheckout_EntradaInvalidaDelOperador(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 1)
	f.selectCustomer(t, "CUST-101")

	_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{PaymentMode: "Barter"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, sale.StatusIdle, f.checkout.Status())
}

// ──────────────────────────────────────────────────────────────────────────────
// Commit de las tres colecciones
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: ItemA precio 100, stock 10, qty 2, tasa 0.18 →
// total 236; después del checkout stock=8, una factura Paid y LTV += 236.
func TestCheckout_VentaExitosa(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 2)
	f.selectCustomer(t, "CUST-101")

	result, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
	require.NoError(t, err)

	bill := result.Bill
	assert.True(t, bill.Amount.Equal(decimal.NewFromInt(236)), "amount=%s", bill.Amount)
	assert.Equal(t, entity.BillStatusPaid, bill.Status)
	assert.Equal(t, entity.PaymentModeCash, bill.PaymentMode)
	assert.Equal(t, "Rahul Sharma", bill.CustomerName)
	assert.Equal(t, "18% GST Applied", bill.TaxDetails)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, 2, bill.Items[0].Quantity)
	assert.True(t, bill.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)))

	// a) Bills: exactamente una factura nueva, al frente.
	bills, err := f.billRepo.LoadAll()
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, bill.ID, bills[0].ID)

	// b) Catalog: stock decrementado por la cantidad de la línea.
	products, err := f.catalogRepo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 8, stockOf(t, products, "A"))

	// c) Customers: LTV incrementado exactamente por el total de la factura.
	customers, err := f.customerRepo.LoadAll()
	require.NoError(t, err)
	assert.True(t, customers[0].TotalSpent.Equal(decimal.NewFromInt(12736)),
		"spent=%s", customers[0].TotalSpent)

	// La venta quedó limpia y el estado expone el éxito.
	assert.True(t, f.cart.IsEmpty())
	assert.Nil(t, f.resolver.Selected())
	assert.Equal(t, sale.StatusSuccess, f.checkout.Status())
	last, ok := f.checkout.LastBill()
	require.True(t, ok)
	assert.Equal(t, bill.ID, last.ID)
}

func TestCheckout_PublicaEnElBusYLaCacheRecarga(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 3)
	f.selectCustomer(t, "CUST-101")

	_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
	require.NoError(t, err)

	// La caché de catálogo del propio motor está suscrita al bus: tras el
	// publish ya debe ver el stock descontado, sin Refresh manual.
	item, ok := f.cache.ByID("A")
	require.True(t, ok)
	assert.Equal(t, 7, item.Stock)
}

func TestCheckout_AltaRapidaSeInsertaConElGasto(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "B", 1)
	walkIn := f.resolver.QuickAdd("")

	result, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
	require.NoError(t, err)

	customers, err := f.customerRepo.LoadAll()
	require.NoError(t, err)
	require.Len(t, customers, 2, "el cliente de mostrador se insertó en el commit")

	var inserted *entity.Customer
	for _, c := range customers {
		if c.ID == walkIn.ID {
			inserted = c
		}
	}
	require.NotNil(t, inserted)
	assert.Equal(t, "Walk-in Customer", inserted.Name)
	assert.True(t, inserted.TotalSpent.Equal(result.Bill.Amount),
		"LTV inicial = total de su primera factura")
}

func TestCheckout_EstadoYModoDelOperador(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 1)
	f.selectCustomer(t, "CUST-101")

	result, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{
		Status:      entity.BillStatusPending,
		PaymentMode: entity.PaymentModeUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BillStatusPending, result.Bill.Status)
	assert.Equal(t, entity.PaymentModeUPI, result.Bill.PaymentMode)
}

// Propiedad: stock final = max(0, inicial − Σqty) sobre checkouts sucesivos.
func TestCheckout_VentasSucesivasAcumulanElDescuento(t *testing.T) {
	f := newCheckoutFixture(t, 0)

	for _, qty := range []int{3, 4} {
		require.NoError(t, f.checkout.Reset())
		f.addFromCache(t, "A", qty)
		f.selectCustomer(t, "CUST-101")
		_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
		require.NoError(t, err)
	}

	products, err := f.catalogRepo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 3, stockOf(t, products, "A"), "10 − 3 − 4 = 3")

	bills, err := f.billRepo.LoadAll()
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.NotEqual(t, bills[0].Number, bills[1].Number)
	for _, b := range bills {
		assert.Regexp(t, regexp.MustCompile(`^BN\d{6}$`), b.Number)
	}
}

// Si el catálogo mudó bajo la caché (editor externo), el descuento queda con
// piso en 0: nunca stock negativo.
func TestCheckout_DescuentoConPisoEnCero(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	f.addFromCache(t, "A", 5) // snapshot con stock 10

	// Un colaborador externo deja el stock en 2 sin refrescar la caché.
	products, err := f.catalogRepo.LoadAll()
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == "A" {
			p.Stock = 2
		}
	}
	require.NoError(t, f.catalogRepo.SaveAll(products))

	f.selectCustomer(t, "CUST-101")
	_, err = f.checkout.Submit(context.Background(), sale.CheckoutInput{})
	require.NoError(t, err)

	after, err := f.catalogRepo.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, after, "A"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Guarda de reentrada y fallas
// ──────────────────────────────────────────────────────────────────────────────

// Dos submits espalda-con-espalda sobre el mismo carrito: exactamente una
// factura; el segundo se rechaza por la guarda de Processing.
func TestCheckout_DobleSubmitProduceUnaSolaFactura(t *testing.T) {
	f := newCheckoutFixture(t, 300*time.Millisecond)
	f.addFromCache(t, "A", 1)
	f.selectCustomer(t, "CUST-101")

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
		firstDone <- err
	}()

	// Esperar a que el primero entre a Processing antes de disparar el segundo.
	require.Eventually(t, func() bool {
		return f.checkout.Status() == sale.StatusProcessing
	}, 2*time.Second, 5*time.Millisecond)

	_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
	assert.ErrorIs(t, err, domain.ErrCheckoutInFlight)

	require.NoError(t, <-firstDone)
	bills, err := f.billRepo.LoadAll()
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestCheckout_ResetRechazadoConCommitEnVuelo(t *testing.T) {
	f := newCheckoutFixture(t, 300*time.Millisecond)
	f.addFromCache(t, "A", 1)
	f.selectCustomer(t, "CUST-101")

	done := make(chan error, 1)
	go func() {
		_, err := f.checkout.Submit(context.Background(), sale.CheckoutInput{})
		done <- err
	}()
	require.Eventually(t, func() bool {
		return f.checkout.Status() == sale.StatusProcessing
	}, 2*time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, f.checkout.Reset(), domain.ErrCheckoutInFlight)
	require.NoError(t, <-done)
}

func TestCheckout_CancelacionDuranteLaLatencia(t *testing.T) {
	f := newCheckoutFixture(t, 500*time.Millisecond)
	f.addFromCache(t, "A", 1)
	f.selectCustomer(t, "CUST-101")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := f.checkout.Submit(ctx, sale.CheckoutInput{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sale.StatusIdle, f.checkout.Status())

	bills, loadErr := f.billRepo.LoadAll()
	require.NoError(t, loadErr)
	assert.Empty(t, bills, "la cancelación llegó antes de escribir nada")
}

// failingTxRunner simula una falla del almacén en pleno commit.
type failingTxRunner struct{ err error }

func (r *failingTxRunner) Run(context.Context, func(
	repository.CatalogRepository,
	repository.CustomerRepository,
	repository.BillRepository,
) error) error {
	return r.err
}

func TestCheckout_FallaDelAlmacenVuelveAIdle(t *testing.T) {
	f := newCheckoutFixture(t, 0)
	storeErr := errors.New("disco lleno")

	failing := sale.NewCheckout(
		&failingTxRunner{err: storeErr}, f.changeBus, f.cart, f.resolver,
		sale.CheckoutConfig{TaxRate: taxRate18},
		logger.Discard(),
	)
	f.addFromCache(t, "A", 2)
	f.selectCustomer(t, "CUST-101")

	_, err := failing.Submit(context.Background(), sale.CheckoutInput{})

	assert.ErrorIs(t, err, storeErr, "la causa del almacén se propaga envuelta")
	assert.Equal(t, sale.StatusIdle, failing.Status())
	assert.Equal(t, 1, f.cart.Len(), "el carrito sobrevive para reintentar")
	assert.NotNil(t, f.resolver.Selected())

	_, ok := failing.LastBill()
	assert.False(t, ok)
}

func stockOf(t *testing.T, products []*entity.Product, id string) int {
	t.Helper()
	for _, p := range products {
		if p.ID == id {
			return p.Stock
		}
	}
	t.Fatalf("producto %s no encontrado", id)
	return 0
}
