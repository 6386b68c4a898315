package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/table"
)

func TestCombine(t *testing.T) {
	a := table.New("id", "Группа")
	a.Append(int64(1), "A")
	b := table.New("id", "Магазин")
	b.Append(int64(2), "TAB")

	out := Combine(a, nil, b)
	require.Equal(t, []string{"id", "Группа", "Магазин"}, out.Columns)
	require.Len(t, out.Rows, 2)
	require.Equal(t, "TAB", out.Rows[1]["Магазин"])

	out.Rows[0]["Группа"] = "B"
	require.Equal(t, "A", a.Rows[0]["Группа"])
}

func TestEnrichWithLookupNormalisesBarcodes(t *testing.T) {
	ref := table.New("Баркод", "Наименование", "Фото")
	ref.Append(" ABC123 ", "Крем", "a.jpg")
	ref.Append("x9", "старое", "old.jpg")
	ref.Append("X9", "Мыло", "b.jpg")
	ref.Append("", "пусто", "")

	lk, err := NewLookup(ref, "Баркод", "Наименование", "Фото")
	require.NoError(t, err)
	require.Equal(t, 2, lk.Len())

	orders := table.New("id", "Штрихкод")
	orders.Append(int64(1), "abc123")
	orders.Append(int64(2), "x9 ")
	orders.Append(int64(3), "nope")

	out, err := EnrichWithLookup(orders, "Штрихкод", lk)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "Штрихкод", "Наименование", "Фото"}, out.Columns)
	require.Len(t, out.Rows, 3)
	require.Equal(t, "Крем", out.Rows[0]["Наименование"])
	require.Equal(t, "Мыло", out.Rows[1]["Наименование"])
	require.Equal(t, "b.jpg", out.Rows[1]["Фото"])
	require.Nil(t, out.Rows[2]["Наименование"])
	require.Equal(t, int64(3), out.Rows[2]["id"])
}

func TestLookupRequiresColumns(t *testing.T) {
	_, err := NewLookup(table.New("Баркод"), "Баркод", "Фото")
	var serr *apperr.SchemaError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, []string{"Фото"}, serr.Missing)
}

func TestSortByKeyIsStableAndCaseless(t *testing.T) {
	tb := table.New("Артикул продавца", "n")
	tb.Append("b-2", int64(1))
	tb.Append("A-1", int64(2))
	tb.Append("B-2", int64(3))
	tb.Append("a-1", int64(4))

	require.NoError(t, SortByKey(tb, "Артикул продавца"))
	var got []int64
	for _, r := range tb.Rows {
		got = append(got, r["n"].(int64))
	}
	require.Equal(t, []int64{2, 4, 1, 3}, got)

	require.Error(t, SortByKey(tb, "missing"))
}

func TestSortByKeys(t *testing.T) {
	tb := table.New("Группа", "Артикул продавца")
	tb.Append("B", "x")
	tb.Append("A", "z")
	tb.Append("A", "y")
	require.NoError(t, SortByKeys(tb, "Группа", "Артикул продавца"))
	require.Equal(t, "y", tb.Rows[0]["Артикул продавца"])
	require.Equal(t, "z", tb.Rows[1]["Артикул продавца"])
	require.Equal(t, "B", tb.Rows[2]["Группа"])
}

func TestSortByKeysPutsBlanksLast(t *testing.T) {
	tb := table.New("Пункт выдачи", "Артикул продавца")
	tb.Append(nil, "a")
	tb.Append("Казань", "c")
	tb.Append(" ", "b")
	tb.Append("Казань", nil)
	tb.Append("Екатеринбург", "d")
	require.NoError(t, SortByKeys(tb, "Пункт выдачи", "Артикул продавца"))

	var got []string
	for _, r := range tb.Rows {
		got = append(got, table.Text(r["Артикул продавца"]))
	}
	require.Equal(t, []string{"d", "c", "", "a", "b"}, got)
}

func TestRouteByColumnValue(t *testing.T) {
	tb := table.New("Пункт выдачи", "id")
	tb.Append("Москва, Москва_Север", int64(1))
	tb.Append("Казань", int64(2))
	tb.Append("Омск", int64(3))
	tb.Append("Москва, Москва_Север", int64(4))

	routes := []Route{
		{Value: "Москва, Москва_Север", Destination: "ЗАДАНИЯ_МОСКВА.xlsx"},
		{Value: "Краснодар", Destination: "ЗАДАНИЯ_КРД.xlsx"},
		{Value: "Казань", Destination: "ЗАДАНИЯ_КАЗАНЬ.xlsx"},
	}
	out, err := RouteByColumnValue(tb, "Пункт выдачи", routes, RouteOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "ЗАДАНИЯ_МОСКВА.xlsx", out[0].Route.Destination)
	require.Equal(t, 2, out[0].Table.Len())
	require.Equal(t, "ЗАДАНИЯ_КАЗАНЬ.xlsx", out[1].Route.Destination)
	require.Equal(t, int64(2), out[1].Table.Rows[0]["id"])

	out, err = RouteByColumnValue(tb, "Пункт выдачи", routes, RouteOptions{KeepEmpty: true})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, 0, out[1].Table.Len())
	require.Equal(t, tb.Columns, out[1].Table.Columns)
}

func TestRouteFoldMatch(t *testing.T) {
	tb := table.New("Группа")
	tb.Append(" a ")
	tb.Append("A")
	tb.Append("b")

	out, err := RouteByColumnValue(tb, "Группа", []Route{{Value: "A", Destination: "A.xlsx"}}, RouteOptions{Mode: MatchFold})
	require.NoError(t, err)
	require.Equal(t, 2, out[0].Table.Len())

	exact, err := FilterEquals(tb, "Группа", "A", MatchExact)
	require.NoError(t, err)
	require.Equal(t, 1, exact.Len())
}

func TestPrefixTable(t *testing.T) {
	p := PrefixTable{
		{Value: "TABL", Label: "Таблетки"},
		{Value: "TAB", Label: "Табак"},
		{Value: "MK", Label: "Мама Кит"},
	}
	require.Equal(t, "Таблетки", p.Label("TABL-12"))
	require.Equal(t, "Табак", p.Label(" TAB-7"))
	require.Equal(t, "", p.Label("tab-7"))
	require.Equal(t, "", p.Label("ZZ-1"))
}
