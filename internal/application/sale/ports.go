package sale

import (
	"context"

	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
)

// TxRunner ejecuta una función como un commit multi-colección del almacén
// documental. Los repositorios que recibe fn están atados al staging de esa
// transacción: si fn retorna error no se persiste nada; si retorna nil, las
// tres colecciones se escriben como una sola unidad durable.
// Garantiza la invariante del checkout: o las tres escrituras ocurren, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		catalogRepo repository.CatalogRepository,
		customerRepo repository.CustomerRepository,
		billRepo repository.BillRepository,
	) error) error
}
