package docstore

import (
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
)

// Ensure que los adaptadores implementan los puertos de dominio.
var _ repository.CatalogRepository = (*CatalogRepository)(nil)
var _ repository.CustomerRepository = (*CustomerRepository)(nil)
var _ repository.BillRepository = (*BillRepository)(nil)

// CatalogRepository persiste la colección Catalog en el almacén documental.
type CatalogRepository struct {
	store *Store
}

// NewCatalogRepository construye el repositorio sobre el store.
func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func (r *CatalogRepository) LoadAll() ([]*entity.Product, error) {
	products := []*entity.Product{}
	if err := r.store.Load(collectionCatalog, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) SaveAll(products []*entity.Product) error {
	return r.store.Save(collectionCatalog, products)
}

// CustomerRepository persiste la colección Customers.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository construye el repositorio sobre el store.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) LoadAll() ([]*entity.Customer, error) {
	customers := []*entity.Customer{}
	if err := r.store.Load(collectionCustomers, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) SaveAll(customers []*entity.Customer) error {
	return r.store.Save(collectionCustomers, customers)
}

// BillRepository persiste la colección Bills (append-only).
type BillRepository struct {
	store *Store
}

// NewBillRepository construye el repositorio sobre el store.
func NewBillRepository(store *Store) *BillRepository {
	return &BillRepository{store: store}
}

func (r *BillRepository) LoadAll() ([]*entity.Bill, error) {
	bills := []*entity.Bill{}
	if err := r.store.Load(collectionBills, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *BillRepository) SaveAll(bills []*entity.Bill) error {
	return r.store.Save(collectionBills, bills)
}
