// Package repository implements Core: the generic repository surface
// RepositoryCore exposes over one record type — save (insert or
// update), id lookup, existence and count checks, delete, and compiled
// queries with parameter binding, index-accelerated predicate
// evaluation, sorting, limiting, and projection.
package repository

import (
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/logging"
	"github.com/Thejuampi/memris-sub005/pkg/materialize"
	"github.com/Thejuampi/memris-sub005/pkg/query"
	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/scan"
	"github.com/Thejuampi/memris-sub005/pkg/table"
)

// Core is the repository for one record type within one Arena.
type Core struct {
	arena        *arena.Arena
	descriptor   *descriptor.RecordDescriptor
	materializer *materialize.Materializer
	generators   *GeneratorRegistry
	log          logging.Logger
}

// New builds a Core for d, bound to a. generators may be nil, which is
// equivalent to an empty registry — only relevant to record types that
// declare a CUSTOM id strategy.
func New(a *arena.Arena, d *descriptor.RecordDescriptor, mat *materialize.Materializer, log logging.Logger, generators *GeneratorRegistry) *Core {
	if log == nil {
		log = logging.NoOp()
	}
	return &Core{arena: a, descriptor: d, materializer: mat, generators: generators, log: log}
}

// Save inserts record if it has no id (or a zero id), or updates the
// existing row otherwise, cascading *_ONE relationships and deferring
// collection relationships to a post-insert pass. It returns the
// record's id.
func (c *Core) Save(record any) (any, error) {
	t, err := c.arena.GetOrCreateTable(c.descriptor)
	if err != nil {
		return nil, err
	}

	existing, hasID := materialize.GetID(c.descriptor, record)
	isUpdate := hasID && !materialize.IsZeroID(existing)

	if isUpdate {
		if c.descriptor.PreUpdate != nil {
			if err := c.descriptor.PreUpdate(record); err != nil {
				return nil, err
			}
		}
	} else {
		if c.descriptor.PrePersist != nil {
			if err := c.descriptor.PrePersist(record); err != nil {
				return nil, err
			}
		}
		id, err := c.generateID()
		if err != nil {
			return nil, err
		}
		if c.descriptor.IDField != nil {
			if err := materialize.SetID(c.descriptor, record, id); err != nil {
				return nil, err
			}
		}
		existing = id
	}

	if isUpdate {
		if err := c.update(t, record, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err := c.insert(t, record, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (c *Core) insert(t *table.Table, record any, id any) error {
	values, pending, err := materialize.ExtractRow(c.descriptor, record, c.cascadeSave)
	if err != nil {
		return err
	}
	row, err := t.Insert(values)
	if err != nil {
		return err
	}
	rid := rowid.FromRow(row, t.PageSize())
	if err := c.indexRow(t, row, rid, true); err != nil {
		return err
	}
	return c.applyPending(record, id, pending)
}

func (c *Core) update(t *table.Table, record any, id any) error {
	if c.descriptor.IDField == nil {
		return errs.NewMissingId(c.descriptor.RecordType.String())
	}
	h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName)
	ids := h.Lookup(id)
	if len(ids) == 0 {
		return c.insert(t, record, id)
	}
	rid := ids[0]
	row := rid.RowIndex(t.PageSize())

	if err := c.removeSecondaryPostings(t, row, rid); err != nil {
		return err
	}

	values, pending, err := materialize.ExtractRow(c.descriptor, record, c.cascadeSave)
	if err != nil {
		return err
	}
	if err := t.Update(row, values); err != nil {
		return err
	}
	if err := c.indexRow(t, row, rid, false); err != nil {
		return err
	}
	return c.applyPending(record, id, pending)
}

// cascadeSave is the materialize.CascadeSave callback: it obtains (or
// builds) the target record type's own Core from the arena's
// repository cache and delegates to its Save, so a *_ONE relationship
// field is persisted before its foreign key is bound.
func (c *Core) cascadeSave(target *descriptor.RecordDescriptor, child any) (any, error) {
	repoAny, err := c.arena.GetOrCreateRepository(target.TableName, func() any {
		return New(c.arena, target, materialize.New(c.arena), c.log, c.generators)
	})
	if err != nil {
		return nil, err
	}
	repo := repoAny.(*Core)
	return repo.Save(child)
}

// applyPending persists deferred OneToMany/ManyToMany children now
// that the parent row (and its id) exist.
func (c *Core) applyPending(parent any, parentID any, pending []materialize.PendingRelationship) error {
	for _, p := range pending {
		switch p.Field.RelationshipKind {
		case descriptor.OneToMany:
			if err := c.applyOneToMany(p, parent); err != nil {
				return err
			}
		case descriptor.ManyToMany:
			if err := c.applyManyToMany(p, parentID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Core) applyOneToMany(p materialize.PendingRelationship, parent any) error {
	target := p.Field.TargetRecord
	backRef := target.Field(p.Field.MappedBy)
	if backRef == nil {
		return errs.NewUnknownPropertyPath(target.RecordType.String(), p.Field.MappedBy)
	}
	repoAny, err := c.arena.GetOrCreateRepository(target.TableName, func() any {
		return New(c.arena, target, materialize.New(c.arena), c.log, c.generators)
	})
	if err != nil {
		return err
	}
	childRepo := repoAny.(*Core)
	for i := 0; i < p.Children.Len(); i++ {
		child := p.Children.Index(i)
		if err := setBackReference(child, backRef.PropertyPath, parent); err != nil {
			return err
		}
		if _, err := childRepo.Save(child.Interface()); err != nil {
			return err
		}
	}
	return nil
}

// setBackReference points child's mapped-by field at parent — the
// actual saved record, not just its id, since ExtractRow's *_ONE path
// cascades a save from the object it finds there.
func setBackReference(child reflect.Value, propertyPath string, parent any) error {
	cv := child
	for cv.Kind() == reflect.Ptr {
		if cv.IsNil() {
			cv.Set(reflect.New(cv.Type().Elem()))
		}
		cv = cv.Elem()
	}
	fv := cv.FieldByName(propertyPath)
	if !fv.IsValid() {
		return errs.NewUnknownPropertyPath(cv.Type().String(), propertyPath)
	}
	v := reflect.ValueOf(parent)
	if fv.Kind() != reflect.Ptr && v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if fv.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}
	if v.Type() != fv.Type() && v.Type().ConvertibleTo(fv.Type()) {
		v = v.Convert(fv.Type())
	}
	fv.Set(v)
	return nil
}

func (c *Core) applyManyToMany(p materialize.PendingRelationship, parentID any) error {
	target := p.Field.TargetRecord
	leftCol := c.descriptor.TableName + "_id"
	rightCol := target.TableName + "_id"
	joinTable, err := c.arena.GetOrCreateRawTable(p.Field.JoinTable, []table.ColumnSpec{
		{Name: leftCol, Code: c.descriptor.IDField.StorageType},
		{Name: rightCol, Code: target.IDField.StorageType},
	})
	if err != nil {
		return err
	}
	repoAny, err := c.arena.GetOrCreateRepository(target.TableName, func() any {
		return New(c.arena, target, materialize.New(c.arena), c.log, c.generators)
	})
	if err != nil {
		return err
	}
	childRepo := repoAny.(*Core)
	for i := 0; i < p.Children.Len(); i++ {
		child := p.Children.Index(i)
		childID, err := childRepo.Save(child.Interface())
		if err != nil {
			return err
		}
		_, err = joinTable.Insert([]table.Value{{V: parentID}, {V: childID}})
		if err != nil {
			return err
		}
	}
	return nil
}

// generateID produces a fresh id value per the descriptor's strategy.
// Record types with no id field return nil.
func (c *Core) generateID() (any, error) {
	if c.descriptor.IDField == nil {
		return nil, nil
	}
	strategy := c.descriptor.IDStrategy
	goType := c.descriptor.IDField.GoType
	if strategy == descriptor.Auto {
		switch {
		case isIntegerKind(goType.Kind()):
			strategy = descriptor.Identity
		case goType.Kind() == reflect.String || goType == reflect.TypeOf(uuid.UUID{}):
			strategy = descriptor.UUID
		default:
			return nil, errs.NewUnsupportedIdType(goType.String())
		}
	}

	switch strategy {
	case descriptor.Identity:
		next := c.arena.NextID(c.descriptor)
		v := reflect.ValueOf(next)
		if v.Type() != goType && v.Type().ConvertibleTo(goType) {
			v = v.Convert(goType)
		}
		return v.Interface(), nil
	case descriptor.UUID:
		if goType == reflect.TypeOf(uuid.UUID{}) {
			return uuid.New(), nil
		}
		return uuid.New().String(), nil
	case descriptor.Custom:
		if c.generators == nil {
			return nil, errs.NewGeneratorNotFound(c.descriptor.IDGeneratorName)
		}
		return c.generators.Generate(c.descriptor.IDGeneratorName)
	default:
		return nil, errs.NewUnsupportedIdType(goType.String())
	}
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

// indexRow adds index postings for row's current values. includeID
// also registers the id index posting, skipped on update since a
// row's id never changes.
func (c *Core) indexRow(t *table.Table, row int, rid rowid.RowID, includeID bool) error {
	if includeID && c.descriptor.IDField != nil {
		v, err := columnValue(t, c.descriptor.IDField.ColumnName, c.descriptor.IDField.StorageType, row)
		if err != nil {
			return err
		}
		if h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName); h != nil {
			h.Add(v, rid)
		}
	}
	for _, spec := range c.descriptor.Indexes {
		field := c.descriptor.FieldByColumn(spec.ColumnName)
		if field == nil {
			continue
		}
		v, err := columnValue(t, spec.ColumnName, field.StorageType, row)
		if err != nil {
			return err
		}
		switch spec.Kind {
		case "hash":
			if h := c.arena.Indexes().Hash(t.Name(), spec.ColumnName); h != nil {
				h.Add(v, rid)
			}
		case "range":
			if r := c.arena.Indexes().Range(t.Name(), spec.ColumnName); r != nil {
				r.Add(v, rid)
			}
		case "text":
			if s, ok := v.(string); ok {
				if x := c.arena.Indexes().Text(t.Name(), spec.ColumnName); x != nil {
					x.Add(s, rid)
				}
			}
		}
	}
	return nil
}

// removeSecondaryPostings drops row's current postings from every
// declared secondary index (not the id index, which never changes),
// read before the row's values are overwritten by an update.
func (c *Core) removeSecondaryPostings(t *table.Table, row int, rid rowid.RowID) error {
	for _, spec := range c.descriptor.Indexes {
		field := c.descriptor.FieldByColumn(spec.ColumnName)
		if field == nil {
			continue
		}
		v, err := columnValue(t, spec.ColumnName, field.StorageType, row)
		if err != nil {
			return err
		}
		switch spec.Kind {
		case "hash":
			if h := c.arena.Indexes().Hash(t.Name(), spec.ColumnName); h != nil {
				h.Remove(v, rid)
			}
		case "range":
			if r := c.arena.Indexes().Range(t.Name(), spec.ColumnName); r != nil {
				r.Remove(v, rid)
			}
		case "text":
			if s, ok := v.(string); ok {
				if x := c.arena.Indexes().Text(t.Name(), spec.ColumnName); x != nil {
					x.Remove(s, rid)
				}
			}
		}
	}
	return nil
}

// removeAllPostings drops row's postings from the id index and every
// secondary index, used by delete.
func (c *Core) removeAllPostings(t *table.Table, row int, rid rowid.RowID) error {
	if c.descriptor.IDField != nil {
		v, err := columnValue(t, c.descriptor.IDField.ColumnName, c.descriptor.IDField.StorageType, row)
		if err == nil {
			if h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName); h != nil {
				h.Remove(v, rid)
			}
		}
	}
	return c.removeSecondaryPostings(t, row, rid)
}

// FindById materializes the record with the given id, reporting
// ok=false if no live row carries it.
func (c *Core) FindById(id any) (any, bool, error) {
	t := c.arena.GetTable(c.descriptor)
	if t == nil || c.descriptor.IDField == nil {
		return nil, false, nil
	}
	h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName)
	if h == nil {
		return nil, false, nil
	}
	ids := h.Lookup(id)
	if len(ids) == 0 {
		return nil, false, nil
	}
	row := ids[0].RowIndex(t.PageSize())
	if !t.IsLive(row) {
		return nil, false, nil
	}
	rec, err := c.materializer.MaterializeRow(c.descriptor, row)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// ExistsById reports whether a live row with the given id exists,
// without materializing it.
func (c *Core) ExistsById(id any) (bool, error) {
	_, ok, err := c.existsRow(id)
	return ok, err
}

func (c *Core) existsRow(id any) (rowid.RowID, bool, error) {
	t := c.arena.GetTable(c.descriptor)
	if t == nil || c.descriptor.IDField == nil {
		return 0, false, nil
	}
	h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName)
	if h == nil {
		return 0, false, nil
	}
	ids := h.Lookup(id)
	if len(ids) == 0 {
		return 0, false, nil
	}
	rid := ids[0]
	if !t.IsLive(rid.RowIndex(t.PageSize())) {
		return 0, false, nil
	}
	return rid, true, nil
}

// Count returns the number of live rows in this record type's table.
func (c *Core) Count() int {
	t := c.arena.GetTable(c.descriptor)
	if t == nil {
		return 0
	}
	return t.ScanAll().Len()
}

// DeleteById marks the row with the given id dead and retracts its
// index postings, reporting false if no live row carried that id.
func (c *Core) DeleteById(id any) (bool, error) {
	rid, ok, err := c.existsRow(id)
	if err != nil || !ok {
		return false, err
	}
	t := c.arena.GetTable(c.descriptor)
	row := rid.RowIndex(t.PageSize())
	if err := c.removeAllPostings(t, row, rid); err != nil {
		return false, err
	}
	if err := t.MarkDead(row); err != nil {
		return false, err
	}
	return true, nil
}

// FindAll materializes every live row in this record type's table.
func (c *Core) FindAll() (any, error) {
	return c.FindBy(&query.CompiledQuery{Kind: query.Find}, nil)
}

// FindAllById materializes the records carrying the given ids, in
// input order, silently skipping ids with no live row.
func (c *Core) FindAllById(ids []any) ([]any, error) {
	t := c.arena.GetTable(c.descriptor)
	out := make([]any, 0, len(ids))
	if t == nil || c.descriptor.IDField == nil {
		return out, nil
	}
	h := c.arena.Indexes().Hash(t.Name(), c.descriptor.IDField.ColumnName)
	if h == nil {
		return out, nil
	}
	for _, id := range ids {
		rids := h.Lookup(id)
		if len(rids) == 0 {
			continue
		}
		row := rids[0].RowIndex(t.PageSize())
		if !t.IsLive(row) {
			continue
		}
		rec, err := c.materializer.MaterializeRow(c.descriptor, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// SaveAll saves every record in order, returning their assigned ids in
// the same order.
func (c *Core) SaveAll(records []any) ([]any, error) {
	ids := make([]any, 0, len(records))
	for _, r := range records {
		id, err := c.Save(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes record's row by reading its id off the descriptor's
// id field. It returns MissingId when the id cannot be read from the
// record, and is a no-op when no live row has that id.
func (c *Core) Delete(record any) error {
	id, ok := materialize.GetID(c.descriptor, record)
	if !ok {
		return errs.NewMissingId(c.descriptor.RecordType.String())
	}
	_, err := c.DeleteById(id)
	return err
}

// DeleteAllById deletes every id in the slice, silently skipping ids
// with no live row.
func (c *Core) DeleteAllById(ids []any) error {
	for _, id := range ids {
		if _, err := c.DeleteById(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll marks every live row in this record type's table dead and
// retracts its postings.
func (c *Core) DeleteAll() error {
	t := c.arena.GetTable(c.descriptor)
	if t == nil {
		return nil
	}
	for _, rid := range t.ScanAll().IDs() {
		row := rid.RowIndex(t.PageSize())
		if err := c.removeAllPostings(t, row, rid); err != nil {
			return err
		}
		if err := t.MarkDead(row); err != nil {
			return err
		}
	}
	return nil
}

// FindBy executes a CompiledQuery with bound parameters, shaping the
// result by q.Kind: FIND returns []any (or []map[string]any when
// q.Projection is set), COUNT returns int64, EXISTS returns bool, and
// DELETE returns the int64 count of rows removed.
func (c *Core) FindBy(q *query.CompiledQuery, args []any) (any, error) {
	t, err := c.arena.GetOrCreateTable(c.descriptor)
	if err != nil {
		return nil, err
	}
	p, err := bindPredicate(q, args)
	if err != nil {
		return nil, err
	}
	sel, err := c.selectRows(t, p)
	if err != nil {
		return nil, err
	}
	if q.Distinct {
		sel = sel.Distinct()
	}
	ids := append([]rowid.RowID(nil), sel.IDs()...)
	if len(q.OrderBy) > 0 {
		if err := sortIDs(t, ids, q.OrderBy, c.arena.Config()); err != nil {
			return nil, err
		}
	}
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}

	switch q.Kind {
	case query.Count:
		return int64(len(ids)), nil
	case query.Exists:
		return len(ids) > 0, nil
	case query.Delete:
		return c.deleteSelected(t, ids)
	default:
		return c.materializeSelected(t, ids, q.Projection)
	}
}

func (c *Core) deleteSelected(t *table.Table, ids []rowid.RowID) (int64, error) {
	var n int64
	for _, rid := range ids {
		row := rid.RowIndex(t.PageSize())
		if !t.IsLive(row) {
			continue
		}
		if err := c.removeAllPostings(t, row, rid); err != nil {
			return n, err
		}
		if err := t.MarkDead(row); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (c *Core) materializeSelected(t *table.Table, ids []rowid.RowID, proj *query.Projection) (any, error) {
	if proj != nil && len(proj.Paths) > 0 {
		out := make([]map[string]any, 0, len(ids))
		for _, rid := range ids {
			row := rid.RowIndex(t.PageSize())
			m, err := c.materializer.MaterializeProjection(c.descriptor, row, proj.Paths)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	}
	out := make([]any, 0, len(ids))
	for _, rid := range ids {
		row := rid.RowIndex(t.PageSize())
		rec, err := c.materializer.MaterializeRow(c.descriptor, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// selectRows evaluates p against t, probing a HashIndex for a
// top-level EQ comparison or a RangeIndex for a top-level Between
// before falling back to a full scan.Scan. A nil predicate (no
// conditions) selects every live row.
func (c *Core) selectRows(t *table.Table, p query.Predicate) (rowid.Selection, error) {
	if p == nil {
		return t.ScanAll(), nil
	}
	if sel, ok, err := c.tryIndexProbe(t, p); ok || err != nil {
		return sel, err
	}
	return scan.Scan(t, p)
}

func (c *Core) tryIndexProbe(t *table.Table, p query.Predicate) (rowid.Selection, bool, error) {
	switch n := p.(type) {
	case query.Comparison:
		if n.Op == query.Containing {
			s, ok := n.Value.(string)
			if !ok {
				return rowid.Selection{}, false, nil
			}
			x := c.arena.Indexes().Text(t.Name(), n.Column)
			if x == nil {
				return rowid.Selection{}, false, nil
			}
			// TextIndex is advisory: narrow to its candidates, then
			// re-verify the exact substring against each one, since
			// tokenization is not guaranteed to align with arbitrary
			// substring boundaries.
			candidates := x.Probe(s)
			if candidates == nil {
				return rowid.Selection{}, true, nil
			}
			verified, err := c.verifyContaining(t, candidates, n.Column, s)
			if err != nil {
				return rowid.Selection{}, false, err
			}
			return c.liveSelection(t, verified), true, nil
		}
		if n.Op != query.EQ {
			return rowid.Selection{}, false, nil
		}
		h := c.arena.Indexes().Hash(t.Name(), n.Column)
		if h == nil {
			return rowid.Selection{}, false, nil
		}
		return c.liveSelection(t, h.Lookup(n.Value)), true, nil
	case query.Between:
		r := c.arena.Indexes().Range(t.Name(), n.Column)
		if r == nil {
			return rowid.Selection{}, false, nil
		}
		return c.liveSelection(t, r.Between(n.Lower, n.Upper)), true, nil
	default:
		return rowid.Selection{}, false, nil
	}
}

// verifyContaining re-checks each TextIndex candidate against the
// literal substring want, since token matches are not proof of an
// exact substring match.
func (c *Core) verifyContaining(t *table.Table, candidates []rowid.RowID, column, want string) ([]rowid.RowID, error) {
	out := make([]rowid.RowID, 0, len(candidates))
	for _, id := range candidates {
		row := id.RowIndex(t.PageSize())
		v, err := t.GetString(column, row)
		if err != nil {
			return nil, err
		}
		if strings.Contains(v, want) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *Core) liveSelection(t *table.Table, ids []rowid.RowID) rowid.Selection {
	out := make([]rowid.RowID, 0, len(ids))
	for _, id := range ids {
		if t.IsLive(id.RowIndex(t.PageSize())) {
			out = append(out, id)
		}
	}
	return rowid.NewSelection(out).SortByRowIndex(t.PageSize())
}
