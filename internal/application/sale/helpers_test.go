package sale_test

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia
// ──────────────────────────────────────────────────────────────────────────────

var errRepoDown = errors.New("almacén no disponible")

// memCatalogRepo implementa repository.CatalogRepository en memoria.
type memCatalogRepo struct {
	products []*entity.Product
	failing  bool
}

func (m *memCatalogRepo) LoadAll() ([]*entity.Product, error) {
	if m.failing {
		return nil, errRepoDown
	}
	out := make([]*entity.Product, len(m.products))
	for i, p := range m.products {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

func (m *memCatalogRepo) SaveAll(products []*entity.Product) error {
	if m.failing {
		return errRepoDown
	}
	m.products = products
	return nil
}

// memCustomerRepo implementa repository.CustomerRepository en memoria.
type memCustomerRepo struct {
	customers []*entity.Customer
}

func (m *memCustomerRepo) LoadAll() ([]*entity.Customer, error) {
	out := make([]*entity.Customer, len(m.customers))
	for i, c := range m.customers {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

func (m *memCustomerRepo) SaveAll(customers []*entity.Customer) error {
	m.customers = customers
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Builders
// ──────────────────────────────────────────────────────────────────────────────

func testProduct(id, name string, price float64, stock int) entity.Product {
	return entity.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		Unit:     "packs",
		Stock:    stock,
		Category: "Groceries",
	}
}
