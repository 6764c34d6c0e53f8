package sale

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Saurabh752007/ShopMaster/internal/bus"
	"github.com/Saurabh752007/ShopMaster/internal/domain"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// Status es el estado del protocolo de checkout.
type Status int

const (
	StatusIdle Status = iota
	StatusProcessing
	StatusSuccess
)

// String implementa fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// CheckoutInput son las opciones del operador para la factura.
// Campos vacíos toman los valores por defecto del mostrador: Paid / Cash.
type CheckoutInput struct {
	Status      string
	PaymentMode string
}

// CheckoutResult expone la factura generada para el recibo.
type CheckoutResult struct {
	Bill entity.Bill
}

// Checkout implementa el protocolo de cierre de venta: valida precondiciones,
// calcula totales y ejecuta el commit de las tres colecciones (agregar Bill,
// descontar stock del Catalog, upsert del Customer) como una sola unidad
// lógica, publica en el bus de cambios y limpia la venta.
//
// Máquina de estados: Idle → Processing → Success, con rechazo en Idle si
// fallan las precondiciones. La guarda de reentrada rechaza un Submit
// mientras hay otro en Processing: el commit está en vuelo, no se reenvía.
type Checkout struct {
	txRunner  TxRunner
	changeBus *bus.ChangeBus
	cart      *Cart
	resolver  *CustomerResolver
	log       *logger.Logger

	taxRate decimal.Decimal
	latency time.Duration // latencia simulada del commit, no cancelable a mitad

	mu       sync.Mutex
	status   Status
	lastBill *entity.Bill

	now func() time.Time // inyectable en tests
}

// CheckoutConfig parámetros del protocolo.
type CheckoutConfig struct {
	TaxRate       decimal.Decimal // tasa plana única para todo el motor
	CommitLatency time.Duration
}

// NewCheckout construye el protocolo sobre el carrito y el resolver de la venta.
func NewCheckout(
	txRunner TxRunner,
	changeBus *bus.ChangeBus,
	cart *Cart,
	resolver *CustomerResolver,
	cfg CheckoutConfig,
	log *logger.Logger,
) *Checkout {
	return &Checkout{
		txRunner:  txRunner,
		changeBus: changeBus,
		cart:      cart,
		resolver:  resolver,
		taxRate:   cfg.TaxRate,
		latency:   cfg.CommitLatency,
		log:       log,
		now:       time.Now,
	}
}

// Status devuelve el estado actual del protocolo.
func (c *Checkout) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastBill devuelve la última factura generada (para recibo/impresión).
func (c *Checkout) LastBill() (entity.Bill, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastBill == nil {
		return entity.Bill{}, false
	}
	return *c.lastBill, true
}

// TaxRate devuelve la tasa configurada del motor.
func (c *Checkout) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Reset inicia una transacción nueva: vacía el carrito, desata el cliente y
// vuelve a Idle. No está permitido mientras un commit está en vuelo.
func (c *Checkout) Reset() error {
	c.mu.Lock()
	if c.status == StatusProcessing {
		c.mu.Unlock()
		return domain.ErrCheckoutInFlight
	}
	c.status = StatusIdle
	c.mu.Unlock()

	c.cart.Clear()
	c.resolver.Clear()
	return nil
}

// Submit ejecuta el checkout de la venta en curso.
//
// Precondiciones (síncronas, antes de entrar a Processing): carrito no vacío
// y cliente atado. Luego simula la latencia del commit, arma la factura con
// snapshot de las líneas y ejecuta las tres escrituras vía TxRunner. Si el
// almacén falla, el intento es fatal: se vuelve a Idle y se reporta el error;
// gracias al journal del almacén ninguna sub-escritura queda aplicada a medias.
func (c *Checkout) Submit(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	customer, err := c.begin()
	if err != nil {
		return nil, err
	}

	status, mode, err := normalizeInput(in)
	if err != nil {
		c.setStatus(StatusIdle)
		return nil, err
	}

	// Latencia simulada del almacén. El diseño no cancela un commit en vuelo;
	// la cancelación del ctx solo aborta mientras aún no se escribió nada.
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.setStatus(StatusIdle)
			return nil, ctx.Err()
		}
	}

	lines := c.cart.Lines()
	amount := c.cart.Total(c.taxRate)
	bill := c.buildBill(customer, lines, amount, status, mode)

	err = c.txRunner.Run(ctx, func(
		catalogRepo repository.CatalogRepository,
		customerRepo repository.CustomerRepository,
		billRepo repository.BillRepository,
	) error {
		// a) Agregar la factura a Bills (la más reciente primero).
		bills, err := billRepo.LoadAll()
		if err != nil {
			return err
		}
		bill.Number = uniqueBillNumber(bills)
		if err := billRepo.SaveAll(append([]*entity.Bill{&bill}, bills...)); err != nil {
			return err
		}

		// b) Descontar el stock de cada artículo, con piso en 0.
		products, err := catalogRepo.LoadAll()
		if err != nil {
			return err
		}
		for _, line := range lines {
			for _, p := range products {
				if p.ID == line.Product.ID {
					p.Stock = max(0, p.Stock-line.Quantity)
					break
				}
			}
		}
		if err := catalogRepo.SaveAll(products); err != nil {
			return err
		}

		// c) Acumular el gasto del cliente, o insertarlo si es alta rápida.
		customers, err := customerRepo.LoadAll()
		if err != nil {
			return err
		}
		found := false
		for _, cust := range customers {
			if cust.ID == customer.ID {
				cust.TotalSpent = cust.TotalSpent.Add(amount)
				found = true
				break
			}
		}
		if !found {
			inserted := *customer
			inserted.TotalSpent = amount
			customers = append(customers, &inserted)
		}
		return customerRepo.SaveAll(customers)
	})
	if err != nil {
		c.setStatus(StatusIdle)
		c.log.Error().Err(err).Str("bill_id", bill.ID).Msg("checkout fallido en el commit")
		return nil, fmt.Errorf("commit de la venta: %w", err)
	}

	// La señal va después del guardado exitoso; los suscriptores recargan
	// del almacén (incluida la caché de catálogo de este mismo motor).
	c.changeBus.Publish()

	c.cart.Clear()
	c.resolver.Clear()

	c.mu.Lock()
	c.status = StatusSuccess
	c.lastBill = &bill
	c.mu.Unlock()

	c.log.Info().
		Str("bill_id", bill.ID).
		Str("bill_number", bill.Number).
		Str("customer", bill.CustomerName).
		Str("amount", amount.StringFixed(2)).
		Msg("venta finalizada")

	return &CheckoutResult{Bill: bill}, nil
}

// begin valida precondiciones y toma la guarda de reentrada.
func (c *Checkout) begin() (*entity.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusProcessing {
		return nil, domain.ErrCheckoutInFlight
	}
	if c.cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	customer := c.resolver.Selected()
	if customer == nil {
		return nil, domain.ErrNoCustomer
	}
	c.status = StatusProcessing
	return customer, nil
}

func (c *Checkout) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Checkout) buildBill(customer *entity.Customer, lines []CartLine, amount decimal.Decimal, status, mode string) entity.Bill {
	items := make([]entity.BillItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, entity.BillItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
		})
	}
	return entity.Bill{
		ID:           uuid.New().String(),
		Date:         c.now(),
		CustomerName: customer.Name,
		Amount:       amount,
		Status:       status,
		PaymentMode:  mode,
		Items:        items,
		TaxDetails:   taxAnnotation(c.taxRate),
	}
}

// normalizeInput aplica defaults y valida los valores del operador.
func normalizeInput(in CheckoutInput) (status, mode string, err error) {
	status = in.Status
	if status == "" {
		status = entity.BillStatusPaid
	}
	mode = in.PaymentMode
	if mode == "" {
		mode = entity.PaymentModeCash
	}
	switch status {
	case entity.BillStatusPaid, entity.BillStatusPending:
	default:
		return "", "", fmt.Errorf("%w: estado de factura %q", domain.ErrInvalidInput, in.Status)
	}
	switch mode {
	case entity.PaymentModeCash, entity.PaymentModeCard, entity.PaymentModeUPI:
	default:
		return "", "", fmt.Errorf("%w: modo de pago %q", domain.ErrInvalidInput, in.PaymentMode)
	}
	return status, mode, nil
}

// uniqueBillNumber genera un consecutivo legible BN###### que no choque con
// los ya emitidos.
func uniqueBillNumber(existing []*entity.Bill) string {
	used := make(map[string]bool, len(existing))
	for _, b := range existing {
		used[b.Number] = true
	}
	for {
		number := fmt.Sprintf("BN%06d", 100000+rand.IntN(900000))
		if !used[number] {
			return number
		}
	}
}

// taxAnnotation arma la anotación de impuesto de la factura, ej. "18% GST Applied".
func taxAnnotation(taxRate decimal.Decimal) string {
	pct := taxRate.Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s%% GST Applied", pct.String())
}
