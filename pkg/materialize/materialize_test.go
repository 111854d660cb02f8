package materialize

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/rowid"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

type widget struct {
	ID   int64  `memris:"column=id,id"`
	Name string `memris:"column=name"`
}

func TestMaterializeRow_FlatRecord(t *testing.T) {
	a := arena.New("a1", nil, nil)
	d, err := descriptor.Build(widget{}, typeset.DefaultRegistry(), nil)
	require.NoError(t, err)

	tb, err := a.GetOrCreateTable(d)
	require.NoError(t, err)
	row, err := tb.Insert([]table.Value{{V: int64(7)}, {V: "Bolt"}})
	require.NoError(t, err)

	mat := New(a)
	rec, err := mat.MaterializeRow(d, row)
	require.NoError(t, err)

	w := rec.(*widget)
	require.Equal(t, int64(7), w.ID)
	require.Equal(t, "Bolt", w.Name)
}

func TestMaterializeProjection_SkipsUnrequestedColumns(t *testing.T) {
	a := arena.New("a1", nil, nil)
	d, err := descriptor.Build(widget{}, typeset.DefaultRegistry(), nil)
	require.NoError(t, err)

	tb, err := a.GetOrCreateTable(d)
	require.NoError(t, err)
	row, err := tb.Insert([]table.Value{{V: int64(7)}, {V: "Bolt"}})
	require.NoError(t, err)

	mat := New(a)
	out, err := mat.MaterializeProjection(d, row, []string{"Name"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Name": "Bolt"}, out)
}

type customer struct {
	ID   int64  `memris:"column=id,id"`
	Name string `memris:"column=name"`
}

type order struct {
	ID       int64     `memris:"column=id,id"`
	Customer *customer `memris:"relationship=many_to_one,fk=customer_id"`
}

func TestMaterializeRow_ManyToOneHydratesTarget(t *testing.T) {
	a := arena.New("a1", nil, nil)
	registry := typeset.DefaultRegistry()

	custDesc, err := descriptor.Build(customer{}, registry, nil)
	require.NoError(t, err)
	targets := map[reflect.Type]*descriptor.RecordDescriptor{reflect.TypeOf(customer{}): custDesc}
	orderDesc, err := descriptor.Build(order{}, registry, targets)
	require.NoError(t, err)

	custTable, err := a.GetOrCreateTable(custDesc)
	require.NoError(t, err)
	custRow, err := custTable.Insert([]table.Value{{V: int64(1)}, {V: "Ada"}})
	require.NoError(t, err)
	a.Indexes().Hash(custDesc.TableName, custDesc.IDField.ColumnName).
		Add(int64(1), rowid.FromRow(custRow, custTable.PageSize()))

	orderTable, err := a.GetOrCreateTable(orderDesc)
	require.NoError(t, err)
	orderRow, err := orderTable.Insert([]table.Value{{V: int64(100)}, {V: int64(1)}})
	require.NoError(t, err)

	mat := New(a)
	rec, err := mat.MaterializeRow(orderDesc, orderRow)
	require.NoError(t, err)

	o := rec.(*order)
	require.NotNil(t, o.Customer)
	require.Equal(t, "Ada", o.Customer.Name)
}

func TestMaterializeRow_ManyToOneNilFKLeavesFieldNil(t *testing.T) {
	a := arena.New("a1", nil, nil)
	registry := typeset.DefaultRegistry()

	custDesc, err := descriptor.Build(customer{}, registry, nil)
	require.NoError(t, err)
	targets := map[reflect.Type]*descriptor.RecordDescriptor{reflect.TypeOf(customer{}): custDesc}
	orderDesc, err := descriptor.Build(order{}, registry, targets)
	require.NoError(t, err)

	_, err = a.GetOrCreateTable(custDesc)
	require.NoError(t, err)
	orderTable, err := a.GetOrCreateTable(orderDesc)
	require.NoError(t, err)
	orderRow, err := orderTable.Insert([]table.Value{{V: int64(100)}, {V: int64(0)}})
	require.NoError(t, err)

	mat := New(a)
	rec, err := mat.MaterializeRow(orderDesc, orderRow)
	require.NoError(t, err)

	o := rec.(*order)
	require.Nil(t, o.Customer)
}
