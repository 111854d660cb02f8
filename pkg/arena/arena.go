// Package arena implements Arena: the ownership boundary for a set of
// tables, their indexes, per-record id counters, and cached repository
// handles — a table registry guarded by one mutex, with lazy
// get-or-create and an explicit open/closed flag.
package arena

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Thejuampi/memris-sub005/pkg/config"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/index"
	"github.com/Thejuampi/memris-sub005/pkg/logging"
	"github.com/Thejuampi/memris-sub005/pkg/table"
)

// Arena is one isolated data space: tables, indexes, id counters, and
// a repository cache all live under it, and closing it releases every
// resource it owns at once.
type Arena struct {
	id  string
	cfg *config.Config
	log logging.Logger

	mu          sync.Mutex
	tables      map[reflect.Type]*table.Table
	descriptors map[reflect.Type]*descriptor.RecordDescriptor
	rawTables   map[string]*table.Table
	indexes     *index.Manager
	counters    map[reflect.Type]*uint64
	repos       map[string]any

	closed atomic.Bool
}

// New creates an empty Arena identified by id.
func New(id string, cfg *config.Config, log logging.Logger) *Arena {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NoOp()
	}
	return &Arena{
		id:          id,
		cfg:         cfg,
		log:         log,
		tables:      make(map[reflect.Type]*table.Table),
		descriptors: make(map[reflect.Type]*descriptor.RecordDescriptor),
		rawTables:   make(map[string]*table.Table),
		indexes:     index.NewManager(),
		counters:    make(map[reflect.Type]*uint64),
		repos:       make(map[string]any),
	}
}

// ID returns the arena's identifier.
func (a *Arena) ID() string { return a.id }

// Config returns the arena's engine configuration.
func (a *Arena) Config() *config.Config { return a.cfg }

// Indexes returns the arena's index manager.
func (a *Arena) Indexes() *index.Manager { return a.indexes }

func (a *Arena) checkOpen() error {
	if a.closed.Load() {
		return errs.NewArenaClosed(a.id)
	}
	return nil
}

// GetOrCreateTable returns the Table backing d's record type, building
// it (and its declared indexes) on first use. Concurrent calls for the
// same record type collapse to a single construction.
func (a *Arena) GetOrCreateTable(d *descriptor.RecordDescriptor) (*table.Table, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.tables[d.RecordType]; ok {
		return t, nil
	}

	specs := make([]table.ColumnSpec, 0, len(d.Fields))
	for _, f := range d.ColumnOrder() {
		specs = append(specs, table.ColumnSpec{Name: f.ColumnName, Code: f.StorageType})
	}
	t := table.New(d.TableName, specs, a.cfg.PageSize)
	a.tables[d.RecordType] = t
	a.descriptors[d.RecordType] = d

	if d.IDField != nil {
		if _, err := a.indexes.CreateHash(d.TableName, d.IDField.ColumnName); err != nil {
			return nil, err
		}
	}
	for _, spec := range d.Indexes {
		switch spec.Kind {
		case "hash":
			if _, err := a.indexes.CreateHash(d.TableName, spec.ColumnName); err != nil {
				return nil, err
			}
		case "range":
			field := d.FieldByColumn(spec.ColumnName)
			if field == nil {
				continue
			}
			if _, err := a.indexes.CreateRange(d.TableName, spec.ColumnName, field.StorageType); err != nil {
				return nil, err
			}
		case "text":
			if _, err := a.indexes.CreateText(d.TableName, spec.ColumnName); err != nil {
				return nil, err
			}
		}
	}

	a.log.Info("arena: table created", "arena", a.id, "table", d.TableName)
	return t, nil
}

// GetOrCreateRawTable returns a table keyed by a plain string name
// rather than a Go record type, used for join tables backing
// many-to-many relationships that have no record type of their own.
func (a *Arena) GetOrCreateRawTable(name string, specs []table.ColumnSpec) (*table.Table, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.rawTables[name]; ok {
		return t, nil
	}
	t := table.New(name, specs, a.cfg.PageSize)
	a.rawTables[name] = t
	return t, nil
}

// GetTable returns the table already built for d's record type, or
// nil if GetOrCreateTable has not been called for it yet.
func (a *Arena) GetTable(d *descriptor.RecordDescriptor) *table.Table {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tables[d.RecordType]
}

// GetOrCreateIDCounter returns the atomic counter used for IDENTITY id
// generation on d's record type.
func (a *Arena) GetOrCreateIDCounter(d *descriptor.RecordDescriptor) *uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.counters[d.RecordType]
	if !ok {
		c = new(uint64)
		a.counters[d.RecordType] = c
	}
	return c
}

// NextID atomically increments and returns the next IDENTITY value for
// d's record type.
func (a *Arena) NextID(d *descriptor.RecordDescriptor) int64 {
	c := a.GetOrCreateIDCounter(d)
	return int64(atomic.AddUint64(c, 1))
}

// GetOrCreateRepository returns the cached value under key, calling
// construct to build it on first use. Repositories live in a separate
// package that depends on Arena, so Arena caches them as opaque values
// rather than importing that package back.
func (a *Arena) GetOrCreateRepository(key string, construct func() any) (any, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.repos[key]; ok {
		return r, nil
	}
	r := construct()
	a.repos[key] = r
	return r, nil
}

// DescriptorFor returns the RecordDescriptor registered for t, if its
// table has been created.
func (a *Arena) DescriptorFor(t reflect.Type) *descriptor.RecordDescriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.descriptors[t]
}

// Close releases every resource the arena owns. Subsequent operations
// fail fast with ArenaClosed.
func (a *Arena) Close() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables = nil
	a.descriptors = nil
	a.indexes = nil
	a.counters = nil
	a.repos = nil
	a.log.Info("arena: closed", "arena", a.id)
}

// Closed reports whether Close has been called.
func (a *Arena) Closed() bool { return a.closed.Load() }
