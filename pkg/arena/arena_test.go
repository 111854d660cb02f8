package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thejuampi/memris-sub005/pkg/config"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

type widget struct {
	ID  int64  `memris:"column=id,id"`
	SKU string `memris:"column=sku,index=hash"`
}

func widgetDescriptor(t *testing.T) *descriptor.RecordDescriptor {
	d, err := descriptor.Build(widget{}, typeset.DefaultRegistry(), nil)
	require.NoError(t, err)
	return d
}

func TestGetOrCreateTable_BuildsTableAndDeclaredIndexes(t *testing.T) {
	a := New("a1", config.Default(), nil)
	d := widgetDescriptor(t)

	tb, err := a.GetOrCreateTable(d)
	require.NoError(t, err)
	require.Equal(t, "widget", tb.Name())

	require.NotNil(t, a.Indexes().Hash("widget", "id"))
	require.NotNil(t, a.Indexes().Hash("widget", "sku"))
}

func TestGetOrCreateTable_SecondCallReturnsSameTable(t *testing.T) {
	a := New("a1", config.Default(), nil)
	d := widgetDescriptor(t)

	tb1, err := a.GetOrCreateTable(d)
	require.NoError(t, err)
	tb2, err := a.GetOrCreateTable(d)
	require.NoError(t, err)
	require.Same(t, tb1, tb2)
}

func TestGetTable_NilBeforeCreation(t *testing.T) {
	a := New("a1", config.Default(), nil)
	d := widgetDescriptor(t)
	require.Nil(t, a.GetTable(d))
}

func TestNextID_IsMonotonic(t *testing.T) {
	a := New("a1", config.Default(), nil)
	d := widgetDescriptor(t)

	require.Equal(t, int64(1), a.NextID(d))
	require.Equal(t, int64(2), a.NextID(d))
}

func TestGetOrCreateRepository_CachesConstructedValue(t *testing.T) {
	a := New("a1", config.Default(), nil)
	calls := 0
	construct := func() any {
		calls++
		return "repo"
	}

	r1, err := a.GetOrCreateRepository("widget", construct)
	require.NoError(t, err)
	r2, err := a.GetOrCreateRepository("widget", construct)
	require.NoError(t, err)

	require.Equal(t, "repo", r1)
	require.Equal(t, r1, r2)
	require.Equal(t, 1, calls)
}

func TestClose_FailsFastOnFurtherOperations(t *testing.T) {
	a := New("a1", config.Default(), nil)
	d := widgetDescriptor(t)

	a.Close()
	require.True(t, a.Closed())

	_, err := a.GetOrCreateTable(d)
	require.Error(t, err)
}

func TestClose_IsIdempotent(t *testing.T) {
	a := New("a1", config.Default(), nil)
	a.Close()
	require.NotPanics(t, func() { a.Close() })
}

func TestGetOrCreateRawTable_ReturnsSameInstanceByName(t *testing.T) {
	a := New("a1", config.Default(), nil)
	specs := []table.ColumnSpec{{Name: "customer_id", Code: typeset.Int64}, {Name: "product_id", Code: typeset.Int64}}

	t1, err := a.GetOrCreateRawTable("orders_products", specs)
	require.NoError(t, err)
	t2, err := a.GetOrCreateRawTable("orders_products", specs)
	require.NoError(t, err)
	require.Same(t, t1, t2)
}
