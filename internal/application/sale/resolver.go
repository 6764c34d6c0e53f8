package sale

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Saurabh752007/ShopMaster/internal/domain"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
)

// Valores por defecto para el alta rápida de clientes de mostrador.
const (
	walkInName  = "Walk-in Customer"
	walkInPhone = "Not provided"
)

// CustomerResolver identifica al cliente de la venta: búsqueda sobre la
// colección persistida, selección de un registro existente, o alta rápida
// para clientes de mostrador. El registro de un alta rápida NO se escribe en
// el almacén hasta que el checkout lo comita — una venta abandonada no deja
// clientes huérfanos.
type CustomerResolver struct {
	repo repository.CustomerRepository

	mu       sync.Mutex
	selected *entity.Customer
}

// NewCustomerResolver construye el resolver.
func NewCustomerResolver(repo repository.CustomerRepository) *CustomerResolver {
	return &CustomerResolver{repo: repo}
}

// Search busca por subcadena, sin distinguir mayúsculas en el nombre y de
// forma literal en el teléfono, contra la colección persistida. Query vacío
// devuelve resultado vacío (la búsqueda es "mientras escribe", sin estado).
func (r *CustomerResolver) Search(query string) ([]*entity.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	customers, err := r.repo.LoadAll()
	if err != nil {
		return nil, err
	}
	q := foldText(query)
	var out []*entity.Customer
	for _, c := range customers {
		if strings.Contains(foldText(c.Name), q) || strings.Contains(c.Phone, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ByID busca el cliente por identificador exacto en la colección persistida.
func (r *CustomerResolver) ByID(id string) (*entity.Customer, error) {
	customers, err := r.repo.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
}

// Select ata la venta al cliente dado.
func (r *CustomerResolver) Select(c *entity.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = c
}

// Selected devuelve el cliente atado a la venta, o nil.
func (r *CustomerResolver) Selected() *entity.Customer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// Clear desata el cliente de la venta.
func (r *CustomerResolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = nil
}

// QuickAdd sintetiza un cliente nuevo con identificador fresco y lo deja
// seleccionado. Con nombre vacío usa el nombre de mostrador por defecto.
func (r *CustomerResolver) QuickAdd(name string) *entity.Customer {
	name = strings.TrimSpace(name)
	if name == "" {
		name = walkInName
	}
	c := &entity.Customer{
		ID:         "CUST-" + strings.ToUpper(uuid.New().String()[:8]),
		Name:       name,
		Phone:      walkInPhone,
		TotalSpent: decimal.Zero,
	}
	r.Select(c)
	return c
}
