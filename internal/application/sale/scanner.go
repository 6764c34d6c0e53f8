package sale

import (
	"strings"
	"sync"
	"time"

	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// Mensajes que el pipeline expone a la capa de presentación durante la
// ventana de cooldown.
const (
	scanMsgAdded    = "Added: "
	scanMsgMaxStock = "Max Stock: "
	scanMsgNotFound = "Not Found: "
)

// ScanPipeline consume el stream de códigos decodificados que empuja el
// colaborador cámara/decodificador y traduce cada código en una mutación del
// carrito. Un código físico frente a la cámara produce muchos eventos de
// decodificación por segundo; el cooldown garantiza "un escaneo físico →
// a lo sumo una mutación".
//
// El cooldown se modela como un deadline monotónico, no como un booleano
// volteado por un timer: mientras now < deadline, los códigos entrantes se
// descartan por completo (no se encolan) y LastMessage conserva el mensaje
// del escaneo que abrió la ventana. Al vencer el deadline el mensaje se limpia.
type ScanPipeline struct {
	cache    *CatalogCache
	cart     *Cart
	cooldown time.Duration
	log      *logger.Logger

	mu            sync.Mutex
	cooldownUntil time.Time
	lastMessage   string

	now func() time.Time // inyectable en tests
}

// NewScanPipeline construye el pipeline sobre la caché y el carrito de la venta.
func NewScanPipeline(cache *CatalogCache, cart *Cart, cooldown time.Duration, log *logger.Logger) *ScanPipeline {
	return &ScanPipeline{
		cache:    cache,
		cart:     cart,
		cooldown: cooldown,
		log:      log,
		now:      time.Now,
	}
}

// OnDecoded procesa un código decodificado. Es el punto de entrada push del
// colaborador escáner.
func (p *ScanPipeline) OnDecoded(code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if now.Before(p.cooldownUntil) {
		// Ventana activa: el evento se descarta sin tocar carrito ni mensaje.
		return
	}

	item, ok := p.cache.ByScanCode(code)
	switch {
	case !ok:
		p.enterCooldown(now, scanMsgNotFound+code)
		p.log.Debug().Str("code", code).Msg("escaneo sin resolución en catálogo")
	case p.cart.QuantityFor(item.ID) >= item.Stock:
		p.enterCooldown(now, scanMsgMaxStock+item.Name)
	default:
		p.cart.Add(item, 1)
		p.enterCooldown(now, scanMsgAdded+item.Name)
	}
}

// CooldownActive indica si la ventana de cooldown sigue abierta.
func (p *ScanPipeline) CooldownActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Before(p.cooldownUntil)
}

// LastMessage devuelve el mensaje transitorio del último escaneo, o cadena
// vacía una vez vencido el cooldown.
func (p *ScanPipeline) LastMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.now().Before(p.cooldownUntil) {
		return p.lastMessage
	}
	return ""
}

func (p *ScanPipeline) enterCooldown(now time.Time, message string) {
	p.cooldownUntil = now.Add(p.cooldown)
	p.lastMessage = message
}
