package repository

import "github.com/Saurabh752007/ShopMaster/internal/domain/entity"

// BillRepository define el puerto de persistencia para la colección Bills.
// La colección es append-only: las facturas nuevas se insertan al frente
// (la más reciente primero) y ninguna se modifica después de creada.
type BillRepository interface {
	LoadAll() ([]*entity.Bill, error)
	SaveAll(bills []*entity.Bill) error
}
