package repository

import "github.com/Saurabh752007/ShopMaster/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para la colección Customers.
type CustomerRepository interface {
	LoadAll() ([]*entity.Customer, error)
	SaveAll(customers []*entity.Customer) error
}
