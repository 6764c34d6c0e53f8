package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Saurabh752007/ShopMaster/internal/application/sale"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
)

// Ensure TxRunner implements sale.TxRunner.
var _ sale.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks como un commit multi-colección sobre el almacén
// documental. Las lecturas dentro del callback ven el estado actual; las
// escrituras quedan staged en memoria y se vuelcan todas juntas vía
// Store.SaveBatch (journal + replay idempotente) solo si el callback termina
// sin error. Es el equivalente documental de Begin/Commit/Rollback.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados al staging y hace el commit al final.
// Si fn retorna error, no se escribe nada (rollback implícito).
func (r *TxRunner) Run(ctx context.Context, fn func(
	catalogRepo repository.CatalogRepository,
	customerRepo repository.CustomerRepository,
	billRepo repository.BillRepository,
) error) error {
	tx := &txState{store: r.store, staged: make(map[string]json.RawMessage)}

	if err := fn(&stagedCatalogRepo{tx: tx}, &stagedCustomerRepo{tx: tx}, &stagedBillRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.SaveBatch(tx.staged); err != nil {
		return fmt.Errorf("commit de colecciones: %w", err)
	}
	return nil
}

// txState acumula las colecciones escritas durante el callback.
type txState struct {
	store  *Store
	staged map[string]json.RawMessage
}

// loadInTx lee la versión staged si la colección ya fue escrita en esta
// transacción; si no, lee del store (read-your-writes).
func loadInTx[T any](tx *txState, collection string) ([]*T, error) {
	items := []*T{}
	if raw, ok := tx.staged[collection]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("docstore: decodificar staging %s: %w", collection, err)
		}
		return items, nil
	}
	if err := tx.store.Load(collection, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveInTx[T any](tx *txState, collection string, items []*T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("docstore: codificar staging %s: %w", collection, err)
	}
	tx.staged[collection] = raw
	return nil
}

type stagedCatalogRepo struct{ tx *txState }

func (r *stagedCatalogRepo) LoadAll() ([]*entity.Product, error) {
	return loadInTx[entity.Product](r.tx, collectionCatalog)
}

func (r *stagedCatalogRepo) SaveAll(products []*entity.Product) error {
	return saveInTx(r.tx, collectionCatalog, products)
}

type stagedCustomerRepo struct{ tx *txState }

func (r *stagedCustomerRepo) LoadAll() ([]*entity.Customer, error) {
	return loadInTx[entity.Customer](r.tx, collectionCustomers)
}

func (r *stagedCustomerRepo) SaveAll(customers []*entity.Customer) error {
	return saveInTx(r.tx, collectionCustomers, customers)
}

type stagedBillRepo struct{ tx *txState }

func (r *stagedBillRepo) LoadAll() ([]*entity.Bill, error) {
	return loadInTx[entity.Bill](r.tx, collectionBills)
}

func (r *stagedBillRepo) SaveAll(bills []*entity.Bill) error {
	return saveInTx(r.tx, collectionBills, bills)
}
