// Package bus implementa el bus de cambios del motor de ventas: una señal
// publish/subscribe en memoria, síncrona y sin payload. Quien muta una
// colección persistida publica después del guardado exitoso; cada suscriptor
// recarga su copia de trabajo desde el almacén (el almacén es la fuente de
// verdad, las cachés nunca son autoritativas).
package bus

import "sync"

// ChangeBus notifica "una colección persistida cambió" a los suscriptores vivos.
// La entrega es síncrona en el goroutine que publica. Un suscriptor que no está
// montado al momento del publish simplemente pierde la señal y recargará en su
// próximo montaje.
type ChangeBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// New construye un bus sin suscriptores.
func New() *ChangeBus {
	return &ChangeBus{subs: make(map[int]func())}
}

// Subscribe registra el handler y devuelve la función para desuscribirlo.
// Desuscribirse más de una vez es inocuo.
func (b *ChangeBus) Subscribe(handler func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish entrega la señal a un snapshot de los suscriptores actuales.
// Se itera fuera del lock para que un handler pueda suscribir o desuscribir
// sin bloquearse a sí mismo.
func (b *ChangeBus) Publish() {
	b.mu.Lock()
	handlers := make([]func(), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}
