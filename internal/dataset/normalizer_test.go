package dataset

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersight/internal/errors"
)

const sampleCSV = `ID,orderdate,quantity,shipcountrycode,ref_total,Vip
1,2024-01-01,2,US,A,1
1,2024-01-01,1,US,B,1
2,2024-01-02,4,FR,A,0
`

func TestNormalizeCSV(t *testing.T) {
	n := NewNormalizer(nil)

	result, err := n.NormalizeCSV(context.Background(), strings.NewReader(sampleCSV))

	require.NoError(t, err)
	assert.Equal(t, 3, result.Table.Len())
	assert.Equal(t, 0, result.DroppedRows)

	first := result.Table.Records()[0]
	assert.Equal(t, "1", first.OrderID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, "US", first.ShipCountry)
	assert.Equal(t, "A", first.ProductRef)
	assert.True(t, first.IsVip())
}

func TestNormalizeCSV_MissingColumns(t *testing.T) {
	n := NewNormalizer(nil)
	csv := "ID,quantity,shipcountrycode\n1,2,US\n"

	_, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.Error(t, err)
	require.True(t, errors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "orderdate")
	assert.Contains(t, err.Error(), "ref_total")
	assert.Contains(t, err.Error(), "Vip")
}

func TestNormalizeCSV_ColumnNamesAreCaseSensitive(t *testing.T) {
	n := NewNormalizer(nil)
	csv := "id,orderdate,quantity,shipcountrycode,ref_total,vip\n1,2024-01-01,2,US,A,1\n"

	_, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.True(t, errors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "ID")
	assert.Contains(t, err.Error(), "Vip")
}

func TestNormalizeCSV_DropsUnparsableDates(t *testing.T) {
	n := NewNormalizer(nil)
	csv := `ID,orderdate,quantity,shipcountrycode,ref_total,Vip
1,2024-01-01,2,US,A,1
2,not-a-date,4,FR,B,0
3,,1,DE,C,0
4,2024-02-15,3,UK,D,1
`

	result, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Table.Len())
	assert.Equal(t, 2, result.DroppedRows)
}

func TestNormalizeCSV_CoercesQuantities(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "plain integer", raw: "7", want: 7},
		{name: "unparsable", raw: "abc", want: 0},
		{name: "empty", raw: "", want: 0},
		{name: "negative clamps to zero", raw: "-3", want: 0},
		{name: "float export", raw: "3.0", want: 3},
		{name: "thousands separator", raw: "1,200", want: 1200},
	}

	n := NewNormalizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "ID,orderdate,quantity,shipcountrycode,ref_total,Vip\n1,2024-01-01," + tt.raw + ",US,A,1\n"

			result, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

			require.NoError(t, err)
			require.Equal(t, 1, result.Table.Len())
			assert.Equal(t, tt.want, result.Table.Records()[0].Quantity)
		})
	}
}

func TestNormalizeCSV_ProductRefsStayOpaque(t *testing.T) {
	n := NewNormalizer(nil)
	// "007" and "7" are distinct references even though they are numerically
	// equal.
	csv := `ID,orderdate,quantity,shipcountrycode,ref_total,Vip
1,2024-01-01,1,US,007,1
2,2024-01-01,1,US,7,1
`

	result, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	refs := result.Table.ProductRefs()
	assert.Equal(t, []string{"007", "7"}, refs)
}

func TestNormalizeCSV_VipFlagKeepsRawValue(t *testing.T) {
	n := NewNormalizer(nil)
	csv := `ID,orderdate,quantity,shipcountrycode,ref_total,Vip
1,2024-01-01,1,US,A,1
2,2024-01-01,1,US,B,0
3,2024-01-01,1,US,C,2
4,2024-01-01,1,US,D,maybe
`

	result, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	records := result.Table.Records()
	assert.Equal(t, 1, records[0].VipFlag)
	assert.Equal(t, 0, records[1].VipFlag)
	assert.Equal(t, 2, records[2].VipFlag)
	assert.Equal(t, -1, records[3].VipFlag)
	assert.True(t, records[0].IsVip())
	assert.False(t, records[2].IsVip())
}

func TestNormalizeCSV_SkipsBlankRows(t *testing.T) {
	n := NewNormalizer(nil)
	csv := "ID,orderdate,quantity,shipcountrycode,ref_total,Vip\n1,2024-01-01,2,US,A,1\n,,,,,\n"

	result, err := n.NormalizeCSV(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Table.Len())
	assert.Equal(t, 0, result.DroppedRows)
}

func TestParseOrderDate_Layouts(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		want time.Time
	}{
		{raw: "2024-03-09", ok: true, want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{raw: "2024/03/09", ok: true, want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{raw: "03/09/2024", ok: true, want: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{raw: "2024-03-09 10:30:00", ok: true, want: time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)},
		{raw: "ninth of march", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseOrderDate(tt.raw)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
