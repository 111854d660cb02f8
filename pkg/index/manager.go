package index

import (
	"fmt"
	"sync"

	"github.com/Thejuampi/memris-sub005/pkg/textindex"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// Kind names which accelerator structure a column's index uses.
type Kind string

const (
	KindHash  Kind = "HASH"
	KindRange Kind = "RANGE"
	KindText  Kind = "TEXT"
)

// Accelerator is the narrow surface the Scanner probes; both HashIndex
// and RangeIndex satisfy it, so a column can be queried without the
// caller knowing which structure backs it.
type Accelerator interface {
	Size() int
	Clear()
}

// Manager owns the set of indexes declared for one arena's tables,
// keyed by (tableName, columnName). It holds no knowledge of table
// contents: RepositoryCore calls Add/Remove as rows are inserted,
// updated, and deleted so indexes stay in sync with the table they
// accelerate.
type Manager struct {
	mu    sync.RWMutex
	hash  map[string]*HashIndex
	rang  map[string]*RangeIndex
	text  map[string]*textindex.TextIndex
	kinds map[string]Kind
}

// NewManager creates an empty index manager.
func NewManager() *Manager {
	return &Manager{
		hash:  make(map[string]*HashIndex),
		rang:  make(map[string]*RangeIndex),
		text:  make(map[string]*textindex.TextIndex),
		kinds: make(map[string]Kind),
	}
}

func key(tableName, columnName string) string {
	return tableName + "." + columnName
}

// CreateHash declares a HashIndex on (tableName, columnName). It is a
// no-op if that column already has an index of the same kind, and an
// error if it already has an index of a different kind.
func (m *Manager) CreateHash(tableName, columnName string) (*HashIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(tableName, columnName)
	if existing, ok := m.kinds[k]; ok {
		if existing != KindHash {
			return nil, fmt.Errorf("index: column %s.%s already has a %s index", tableName, columnName, existing)
		}
		return m.hash[k], nil
	}
	idx := NewHashIndex()
	m.hash[k] = idx
	m.kinds[k] = KindHash
	return idx, nil
}

// CreateRange declares a RangeIndex on (tableName, columnName) over
// values of the given type code.
func (m *Manager) CreateRange(tableName, columnName string, code typeset.Code) (*RangeIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(tableName, columnName)
	if existing, ok := m.kinds[k]; ok {
		if existing != KindRange {
			return nil, fmt.Errorf("index: column %s.%s already has a %s index", tableName, columnName, existing)
		}
		return m.rang[k], nil
	}
	idx := NewRangeIndex(code)
	m.rang[k] = idx
	m.kinds[k] = KindRange
	return idx, nil
}

// CreateText declares a TextIndex on (tableName, columnName).
func (m *Manager) CreateText(tableName, columnName string) (*textindex.TextIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(tableName, columnName)
	if existing, ok := m.kinds[k]; ok {
		if existing != KindText {
			return nil, fmt.Errorf("index: column %s.%s already has a %s index", tableName, columnName, existing)
		}
		return m.text[k], nil
	}
	idx := textindex.New()
	m.text[k] = idx
	m.kinds[k] = KindText
	return idx, nil
}

// Text returns the TextIndex registered for (tableName, columnName),
// or nil if none exists.
func (m *Manager) Text(tableName, columnName string) *textindex.TextIndex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text[key(tableName, columnName)]
}

// Hash returns the HashIndex registered for (tableName, columnName),
// or nil if none exists (or the registered index is a RangeIndex).
func (m *Manager) Hash(tableName, columnName string) *HashIndex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hash[key(tableName, columnName)]
}

// Range returns the RangeIndex registered for (tableName, columnName),
// or nil if none exists (or the registered index is a HashIndex).
func (m *Manager) Range(tableName, columnName string) *RangeIndex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rang[key(tableName, columnName)]
}

// KindOf reports which kind of index (if any) backs a column.
func (m *Manager) KindOf(tableName, columnName string) (Kind, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.kinds[key(tableName, columnName)]
	return k, ok
}

// Drop removes any index registered for (tableName, columnName).
func (m *Manager) Drop(tableName, columnName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(tableName, columnName)
	if idx := m.text[k]; idx != nil {
		idx.Close()
	}
	delete(m.hash, k)
	delete(m.rang, k)
	delete(m.text, k)
	delete(m.kinds, k)
}

// DropTable removes every index registered for tableName.
func (m *Manager) DropTable(tableName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := tableName + "."
	for k := range m.kinds {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			if idx := m.text[k]; idx != nil {
				idx.Close()
			}
			delete(m.hash, k)
			delete(m.rang, k)
			delete(m.text, k)
			delete(m.kinds, k)
		}
	}
}

// ColumnNames returns every column name in tableName that carries an
// index, in no particular order.
func (m *Manager) ColumnNames(tableName string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := tableName + "."
	var out []string
	for k := range m.kinds {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	return out
}
