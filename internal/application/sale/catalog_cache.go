package sale

import (
	"strings"
	"sync"

	"github.com/Saurabh752007/ShopMaster/internal/bus"
	"github.com/Saurabh752007/ShopMaster/internal/domain/entity"
	"github.com/Saurabh752007/ShopMaster/internal/domain/repository"
	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// CatalogCache es la copia de trabajo de solo lectura del catálogo.
// Se refresca al construirse y con cada señal del bus de cambios; entre
// señales sirve lecturas sin tocar el almacén. Nunca es autoritativa: el
// almacén documental es la fuente de verdad.
type CatalogCache struct {
	repo repository.CatalogRepository
	log  *logger.Logger

	mu        sync.RWMutex
	products  []entity.Product
	byID      map[string]int
	byBarcode map[string]int

	unsubscribe func()
}

// NewCatalogCache carga el catálogo y se suscribe al bus de cambios.
func NewCatalogCache(repo repository.CatalogRepository, changeBus *bus.ChangeBus, log *logger.Logger) (*CatalogCache, error) {
	c := &CatalogCache{repo: repo, log: log}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	c.unsubscribe = changeBus.Subscribe(func() {
		if err := c.Refresh(); err != nil {
			log.Error().Err(err).Msg("refrescar caché de catálogo")
		}
	})
	return c, nil
}

// Refresh recarga la copia de trabajo desde el repositorio.
func (c *CatalogCache) Refresh() error {
	products, err := c.repo.LoadAll()
	if err != nil {
		return err
	}
	byID := make(map[string]int, len(products))
	byBarcode := make(map[string]int, len(products))
	copies := make([]entity.Product, len(products))
	for i, p := range products {
		copies[i] = *p
		byID[p.ID] = i
		if p.Barcode != "" {
			byBarcode[p.Barcode] = i
		}
	}

	c.mu.Lock()
	c.products = copies
	c.byID = byID
	c.byBarcode = byBarcode
	c.mu.Unlock()
	return nil
}

// Items devuelve una copia del catálogo en orden del almacén.
func (c *CatalogCache) Items() []entity.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID busca un artículo por identificador.
func (c *CatalogCache) ByID(id string) (entity.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byID[id]; ok {
		return c.products[i], true
	}
	return entity.Product{}, false
}

// ByScanCode resuelve un código decodificado: primero por código de barras,
// luego por identificador.
func (c *CatalogCache) ByScanCode(code string) (entity.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byBarcode[code]; ok {
		return c.products[i], true
	}
	if i, ok := c.byID[code]; ok {
		return c.products[i], true
	}
	return entity.Product{}, false
}

// Filter devuelve los artículos cuyo nombre o categoría contiene el texto
// (sin distinguir mayúsculas). Query vacío devuelve todo el catálogo.
func (c *CatalogCache) Filter(query string) []entity.Product {
	q := foldText(strings.TrimSpace(query))
	if q == "" {
		return c.Items()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []entity.Product
	for _, p := range c.products {
		if strings.Contains(foldText(p.Name), q) || strings.Contains(foldText(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// Close desuscribe la caché del bus de cambios.
func (c *CatalogCache) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
