package repository

import "github.com/Saurabh752007/ShopMaster/internal/domain/entity"

// CatalogRepository define el puerto de persistencia para la colección Catalog.
// El medio subyacente es un almacén documental clave-valor: cada colección se
// carga y se guarda completa, en orden estable. Una colección ausente carga
// como secuencia vacía.
type CatalogRepository interface {
	LoadAll() ([]*entity.Product, error)
	SaveAll(products []*entity.Product) error
}
