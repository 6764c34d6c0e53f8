// Package docstore implementa el adaptador de persistencia del motor de
// ventas sobre un medio documental clave-valor: un archivo JSON por colección
// dentro de un directorio de datos. Cada colección se carga y se guarda
// completa; una colección ausente carga como secuencia vacía.
//
// Los guardados individuales son atómicos (archivo temporal + rename). Los
// commits multi-colección del checkout pasan por un journal de escritura
// anticipada (commit.journal): primero se escribe y sincroniza el journal con
// el contenido nuevo de todas las colecciones, luego se reemplaza cada archivo
// y por último se borra el journal. Open reaplica un journal huérfano antes de
// servir, de modo que un proceso caído a mitad de commit nunca deja las
// colecciones a medias.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Saurabh752007/ShopMaster/pkg/logger"
)

// Nombres de colección (heredan las claves del almacén original del dashboard).
const (
	collectionCatalog   = "sm_products"
	collectionCustomers = "sm_customers"
	collectionBills     = "sm_bills"
)

const journalName = "commit.journal"

// Store es el almacén documental sobre el directorio de datos.
type Store struct {
	mu  sync.Mutex
	dir string
	log *logger.Logger
}

// journal es el contenido del archivo de escritura anticipada: el estado
// nuevo y completo de cada colección tocada por el commit.
type journal struct {
	Collections map[string]json.RawMessage `json:"collections"`
}

// Open prepara el directorio de datos y reaplica un journal pendiente si lo hay.
func Open(dir string, log *logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("docstore: directorio de datos vacío")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("docstore: crear directorio %s: %w", dir, err)
	}
	s := &Store{dir: dir, log: log}
	if err := s.replayJournal(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load deserializa la colección en out. Si el archivo no existe, out queda
// como está (el caller pasa un slice vacío).
func (s *Store) Load(collection string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(collection, out)
}

func (s *Store) loadLocked(collection string, out any) error {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("docstore: leer %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("docstore: decodificar %s: %w", collection, err)
	}
	return nil
}

// Save serializa y guarda la colección completa de forma atómica.
func (s *Store) Save(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: codificar %s: %w", collection, err)
	}
	return s.writeFileLocked(s.path(collection), data)
}

// SaveBatch guarda varias colecciones como una unidad lógica, vía journal.
// O todas las colecciones del batch quedan escritas, o (tras replay) ninguna
// queda a medias.
func (s *Store) SaveBatch(batch map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	j := journal{Collections: batch}
	data, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("docstore: codificar journal: %w", err)
	}
	jpath := filepath.Join(s.dir, journalName)
	if err := s.writeFileLocked(jpath, data); err != nil {
		return fmt.Errorf("docstore: escribir journal: %w", err)
	}

	if err := s.applyLocked(batch); err != nil {
		return err
	}
	if err := os.Remove(jpath); err != nil {
		return fmt.Errorf("docstore: borrar journal: %w", err)
	}
	return nil
}

// applyLocked reemplaza cada archivo de colección con el contenido del batch.
// Es idempotente: reaplicar el mismo batch produce el mismo estado final.
func (s *Store) applyLocked(batch map[string]json.RawMessage) error {
	for collection, raw := range batch {
		pretty, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			pretty = raw
		}
		if err := s.writeFileLocked(s.path(collection), pretty); err != nil {
			return fmt.Errorf("docstore: aplicar %s: %w", collection, err)
		}
	}
	return nil
}

// replayJournal reaplica un journal dejado por un commit interrumpido.
// El journal se escribe con rename atómico, así que si existe está completo.
func (s *Store) replayJournal() error {
	jpath := filepath.Join(s.dir, journalName)
	data, err := os.ReadFile(jpath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("docstore: leer journal: %w", err)
	}
	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("docstore: journal corrupto: %w", err)
	}
	if err := s.applyLocked(j.Collections); err != nil {
		return err
	}
	if err := os.Remove(jpath); err != nil {
		return fmt.Errorf("docstore: borrar journal: %w", err)
	}
	if s.log != nil {
		s.log.Warn().
			Int("collections", len(j.Collections)).
			Msg("commit interrumpido reaplicado desde el journal")
	}
	return nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// writeFileLocked escribe de forma atómica: temporal en el mismo directorio,
// fsync y rename sobre el destino.
func (s *Store) writeFileLocked(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
