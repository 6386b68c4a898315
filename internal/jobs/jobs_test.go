package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/cabinet"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

type stockCall struct {
	warehouse string
	skus      []string
	amount    int
}

type fakeAPI struct {
	orders       []models.Order
	supplies     []models.Supply
	supplyOrders map[string][]int64
	failIDs      map[int64]bool
	stockFail    map[string]bool
	sticker      []byte

	createdNames []string
	attached     map[string][]int64
	expirations  []models.Expiration
	stockCalls   []stockCall
	deleted      []string
	delivered    []string
}

func (f *fakeAPI) ListNewOrders(ctx context.Context) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeAPI) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	return f.supplies, nil
}

func (f *fakeAPI) CreateSupply(ctx context.Context, name string) (string, error) {
	f.createdNames = append(f.createdNames, name)
	return "WB-GI-1", nil
}

func (f *fakeAPI) DeleteSupply(ctx context.Context, supplyID string) error {
	f.deleted = append(f.deleted, supplyID)
	return nil
}

func (f *fakeAPI) AttachOrders(ctx context.Context, supplyID string, orderIDs []int64) (models.AttachResult, error) {
	if f.attached == nil {
		f.attached = map[string][]int64{}
	}
	res := models.AttachResult{SupplyID: supplyID, Requested: len(orderIDs)}
	var failed []int64
	for _, id := range orderIDs {
		if f.failIDs[id] {
			failed = append(failed, id)
			continue
		}
		f.attached[supplyID] = append(f.attached[supplyID], id)
		res.Attached++
	}
	if len(failed) > 0 {
		res.Failures = []models.ChunkFailure{{Index: 0, OrderIDs: failed, StatusCode: 409, Message: "conflict"}}
	}
	return res, nil
}

func (f *fakeAPI) FetchOrderIDsForSupply(ctx context.Context, supplyID string) ([]int64, error) {
	return f.supplyOrders[supplyID], nil
}

func (f *fakeAPI) DeliverSupply(ctx context.Context, supplyID string) error {
	f.delivered = append(f.delivered, supplyID)
	return nil
}

func (f *fakeAPI) SupplyBarcode(ctx context.Context, supplyID, kind string) ([]byte, error) {
	return f.sticker, nil
}

func (f *fakeAPI) SetOrderExpiration(ctx context.Context, orderID string, date time.Time) error {
	f.expirations = append(f.expirations, models.Expiration{OrderID: orderID, Date: date})
	return nil
}

func (f *fakeAPI) SetOrderExpirations(ctx context.Context, items []models.Expiration) (models.ExpirationReport, error) {
	var rep models.ExpirationReport
	for _, it := range items {
		if err := f.SetOrderExpiration(ctx, it.OrderID, it.Date); err != nil {
			return rep, err
		}
		rep.Set++
	}
	return rep, nil
}

func (f *fakeAPI) UpdateStocks(ctx context.Context, warehouseID string, skus []string, amount int) (models.StockReport, error) {
	f.stockCalls = append(f.stockCalls, stockCall{warehouse: warehouseID, skus: skus, amount: amount})
	rep := models.StockReport{WarehouseID: warehouseID, Amount: amount}
	for _, s := range skus {
		if f.stockFail[s] {
			rep.Failed = append(rep.Failed, s)
		} else {
			rep.Updated = append(rep.Updated, s)
		}
	}
	return rep, nil
}

var fixedNow = time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T, api *fakeAPI) (*Runner, storage.Store) {
	t.Helper()
	t.Setenv("ACTIVE_SUPPLIES_KEY", "")
	tables, err := config.LoadTables("")
	require.NoError(t, err)
	st := storage.NewLocal(t.TempDir())
	reg := cabinet.NewRegistry(tables.Cabinets, nil)
	for _, id := range reg.List() {
		reg.Register(id, api)
	}
	r := NewRunner(st, tables, reg)
	r.Now = func() time.Time { return fixedNow }
	return r, st
}

func put(t *testing.T, st storage.Store, key string, tb *table.Table) {
	t.Helper()
	require.NoError(t, table.Save(context.Background(), st, key, tb))
}

func load(t *testing.T, st storage.Store, key string) *table.Table {
	t.Helper()
	tb, err := table.Load(context.Background(), st, key)
	require.NoError(t, err)
	return tb
}

func column(tb *table.Table, col string) []string {
	var out []string
	for _, r := range tb.Rows {
		out = append(out, table.Text(r[col]))
	}
	return out
}

func TestExportNewOrders(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{orders: []models.Order{
		{ID: 101, CreatedAt: time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC), Article: "TAB-1",
			Offices: []string{"Москва", "Москва_Север"}, Price: decimal.RequireFromString("1250.5"), Skus: []string{"204", "205"}},
		{ID: 102, Article: "ZZ-9", Offices: []string{"Краснодар"}, Price: decimal.NewFromInt(99)},
	}}
	r, st := newTestRunner(t, api)

	out, err := r.ExportNewOrders(ctx, "f")
	require.NoError(t, err)
	require.Equal(t, "orders/F/задания_F.xlsx", out.Key)
	require.Equal(t, 2, out.Rows)

	tb := load(t, st, out.Key)
	require.Equal(t, models.OrderColumns, tb.Columns)
	first := tb.Rows[0]
	require.Equal(t, int64(101), first[models.ColOrderID])
	require.Equal(t, "Москва, Москва_Север", first[models.ColPickupPoint])
	require.Equal(t, "204, 205", first[models.ColBarcode])
	require.Equal(t, "ТАБРИС", first[models.ColStore])
	require.Equal(t, "Я ЧОРНИ", first[models.ColSeller])
	require.Equal(t, "F", first[models.ColGroup])
	require.Equal(t, 1250.5, first[models.ColPrice])
	require.WithinDuration(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first[models.ColDate].(time.Time), time.Second)
	require.Nil(t, tb.Rows[1][models.ColStore])
	require.Nil(t, tb.Rows[1][models.ColDate])
}

func TestExportNewOrdersWritesNothingWhenEmpty(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	out, err := r.ExportNewOrders(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, Output{}, out)
	_, err = st.Get(ctx, "orders/A/задания_A.xlsx")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestExportActiveSupplies(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{supplies: []models.Supply{
		{ID: "WB-GI-1", Name: "старая", CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "WB-GI-2", Name: "закрытая", Done: true, CreatedAt: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "WB-GI-3", Name: "НЕ КУПИЛИ 03.05", CreatedAt: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), CargoType: 1},
	}}
	r, st := newTestRunner(t, api)

	out, err := r.ExportActiveSupplies(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, "supplies/active/B.xlsx", out.Key)

	tb := load(t, st, out.Key)
	require.Equal(t, models.SupplyColumns, tb.Columns)
	require.Equal(t, []string{"WB-GI-3", "WB-GI-1"}, column(tb, models.ColSupplyID))
	require.Equal(t, false, tb.Rows[0][models.ColSupplyDone])

	api.supplies = nil
	out, err = r.ExportActiveSupplies(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, 0, out.Rows)
	require.Equal(t, models.SupplyColumns, load(t, st, out.Key).Columns)
}

func TestExportSupplyOrdersDefaultsToNotPurchased(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		supplies: []models.Supply{
			{ID: "WB-GI-1", Name: "ЗАКУПЛЕННЫЕ КАЛЕДИНО 2024-05-01"},
			{ID: "WB-GI-2", Name: "НЕ КУПИЛИ"},
			{ID: "WB-GI-4", Name: "поставка не купили"},
		},
		supplyOrders: map[string][]int64{"WB-GI-1": {1}, "WB-GI-2": {7, 8}, "WB-GI-4": {4}, "WB-GI-9": {9}},
	}
	r, st := newTestRunner(t, api)

	out, err := r.ExportSupplyOrders(ctx, "C", nil)
	require.NoError(t, err)
	require.Equal(t, "orders/Выходы C/поставки_не_купили_C.xlsx", out.Key)
	tb := load(t, st, out.Key)
	require.Equal(t, models.SupplyOrderColumns, tb.Columns)
	require.ElementsMatch(t, []string{"7", "8", "4"}, column(tb, models.ColOrderID))
	require.Equal(t, []string{"C", "C", "C"}, column(tb, models.ColGroup))

	out, err = r.ExportSupplyOrders(ctx, "C", []string{" WB-GI-9 ", ""})
	require.NoError(t, err)
	require.Equal(t, []string{"WB-GI-9"}, column(load(t, st, out.Key), models.ColNoBuySupplyID))
}

func TestMergeWithBase(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	tasks := table.New(models.OrderColumns...)
	tasks.Append("2024-05-01 10:00:00", "mk-2", "Краснодар", 10.0, "B2", "КОСМЕТИК", int64(2), "ОБЩИЙ", "A")
	tasks.Append("2024-05-01 11:00:00", "TAB-1", "Екатеринбург", 20.0, " b1 ", "ТАБРИС", int64(1), "ОБЩИЙ", "A")
	tasks.Append("2024-05-01 12:00:00", "MK-1", "Краснодар", 30.0, "none", "КОСМЕТИК", int64(3), "ОБЩИЙ", "A")
	put(t, st, "orders/A/задания_A.xlsx", tasks)

	notBought := table.New(models.SupplyOrderColumns...)
	notBought.Append("WB-GI-5", int64(50), "ОБЩИЙ", "A")
	put(t, st, "orders/Выходы A/поставки_не_купили_A.xlsx", notBought)

	base := table.New(models.ColBaseBarcode, models.ColName, models.ColPhoto, models.ColArticle)
	base.Append("B1", "Табрис крем", "b1.jpg", "TAB-1")
	base.Append("b2", "Маска", "b2.jpg", "MK-2")
	put(t, st, "База данных/База данных.xlsx", base)

	out, err := r.MergeWithBase(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, "orders/выходы/задания_с_названием_и_фото_A.xlsx", out.Key)
	require.Equal(t, 4, out.Rows)

	tb := load(t, st, out.Key)
	require.True(t, tb.Has(models.ColName))
	require.True(t, tb.Has(models.ColPhoto))
	require.True(t, tb.Has(models.ColNoBuySupplyID))
	require.Equal(t, []string{"1", "3", "2", "50"}, column(tb, models.ColOrderID))
	require.Equal(t, []string{"Табрис крем", "", "Маска", ""}, column(tb, models.ColName))
}

func TestMergeWithBaseRequiresBarcode(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	tasks := table.New(models.ColOrderID, models.ColArticle)
	tasks.Append(int64(1), "TAB-1")
	put(t, st, "orders/A/задания_A.xlsx", tasks)

	base := table.New(models.ColBaseBarcode, models.ColName, models.ColPhoto)
	base.Append("B1", "Табрис крем", "b1.jpg")
	put(t, st, "База данных/База данных.xlsx", base)

	_, err := r.MergeWithBase(ctx, "A")
	var serr *apperr.SchemaError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, []string{models.ColBarcode}, serr.Missing)

	_, err = st.Get(ctx, "orders/выходы/задания_с_названием_и_фото_A.xlsx")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMergeWithBaseNeedsAnInput(t *testing.T) {
	r, _ := newTestRunner(t, &fakeAPI{})
	_, err := r.MergeWithBase(context.Background(), "A")
	var nerr *apperr.NoDataError
	require.True(t, errors.As(err, &nerr))
}

func TestSplitByPickupPoint(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	a := table.New(models.ColArticle, models.ColPickupPoint, models.ColOrderID)
	a.Append("b-2", "Москва, Москва_Север", int64(1))
	a.Append("A-1", "Казань", int64(2))
	a.Append("a-3", "Москва, Москва_Север", int64(3))
	put(t, st, "orders/выходы/a.xlsx", a)

	b := table.New(models.ColArticle, models.ColPickupPoint, models.ColOrderID)
	b.Append("a-0", "Краснодар", int64(4))
	b.Append("C-5", "Москва, Москва_Север", int64(5))
	put(t, st, "orders/выходы/b.xlsx", b)

	require.NoError(t, st.Put(ctx, "orders/выходы/broken.xlsx", []byte("not a workbook"), storage.XLSXContentType))
	require.NoError(t, st.Put(ctx, "orders/выходы/notes.txt", []byte("x"), "text/plain"))

	out, err := r.SplitByPickupPoint(ctx)
	require.NoError(t, err)
	require.Equal(t, []Output{
		{Key: "orders/готовые/НА_ЗАКУПКУ_КРД.xlsx", Rows: 1},
		{Key: "orders/готовые/НА_ЗАКУПКУ_ЗЕЛ.xlsx", Rows: 3},
	}, out)

	zel := load(t, st, "orders/готовые/НА_ЗАКУПКУ_ЗЕЛ.xlsx")
	require.Equal(t, []string{"a-3", "b-2", "C-5"}, column(zel, models.ColArticle))

	_, err = st.Get(ctx, "orders/готовые/НА_ЗАКУПКУ_МСК.xlsx")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSplitByPickupPointWithoutInputs(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	_, err := r.SplitByPickupPoint(ctx)
	var nerr *apperr.NoDataError
	require.True(t, errors.As(err, &nerr))

	require.NoError(t, st.Put(ctx, "orders/выходы/broken.xlsx", []byte("junk"), storage.XLSXContentType))
	_, err = r.SplitByPickupPoint(ctx)
	require.True(t, errors.As(err, &nerr))
}

func TestSplitByGroup(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})

	in := table.New(models.ColArticle, models.ColGroup)
	in.Append("z-1", " a")
	in.Append("B-1", "b")
	in.Append("a-1", "A")
	put(t, st, "orders/готовые/ЗАДАНИЯ_МОСКВА.xlsx", in)
	put(t, st, "на закупку/ЗАДАНИЯ_ЕКБ.xlsx", in)

	out, err := r.SplitByGroup(ctx, "moscow")
	require.NoError(t, err)
	require.Equal(t, []Output{
		{Key: "закупленные/закупленные_Москва/A.xlsx", Rows: 2},
		{Key: "закупленные/закупленные_Москва/B.xlsx", Rows: 1},
	}, out)
	require.Equal(t, []string{"a-1", "z-1"}, column(load(t, st, out[0].Key), models.ColArticle))

	out, err = r.SplitByGroup(ctx, "EKB")
	require.NoError(t, err)
	require.Len(t, out, 8)
	require.Equal(t, Output{Key: "закупленные Екб/H.xlsx", Rows: 0}, out[7])

	_, err = r.SplitByGroup(ctx, "kazan")
	require.ErrorContains(t, err, "not configured")
}

func TestCreateBoughtSupply(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{failIDs: map[int64]bool{12: true}}
	r, st := newTestRunner(t, api)

	bought := table.New(models.ColOrderID, models.ColPurchased)
	bought.Append(int64(11), "да")
	bought.Append(int64(12), " Да ")
	bought.Append(int64(13), "нет")
	bought.Append("14.0", "да")
	bought.Append("abc", "да")
	put(t, st, "закупленные/закупленные_Каледино/B.xlsx", bought)

	res, err := r.CreateBoughtSupply(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, []string{"ЗАКУПЛЕННЫЕ КАЛЕДИНО 2024-05-03"}, api.createdNames)
	require.Equal(t, 3, res.Requested)
	require.Equal(t, 2, res.Attached)
	require.Equal(t, []int64{12}, res.Missing())
	require.Equal(t, []int64{11, 14}, api.attached["WB-GI-1"])
}

func TestCreateBoughtSupplyWithNothingBought(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	r, st := newTestRunner(t, api)

	bought := table.New(models.ColOrderID, models.ColPurchased)
	bought.Append(int64(11), "нет")
	put(t, st, "закупленные/закупленные_Каледино/A.xlsx", bought)

	_, err := r.CreateBoughtSupply(ctx, "A")
	var nerr *apperr.NoDataError
	require.True(t, errors.As(err, &nerr))
	require.Empty(t, api.createdNames)

	put(t, st, "закупленные/закупленные_Каледино/A.xlsx", table.New(models.ColOrderID))
	_, err = r.CreateBoughtSupply(ctx, "A")
	var serr *apperr.SchemaError
	require.True(t, errors.As(err, &serr))
}

func TestReturnUncollected(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{failIDs: map[int64]bool{3: true}}
	r, st := newTestRunner(t, api)

	list := table.New("№ задания", models.ColCollected, models.ColArticle)
	list.Append(int64(1), "нет", "a")
	list.Append(int64(2), "да", "b")
	list.Append(int64(3), "НЕТ", "c")
	put(t, st, "Листы подбора/A/лист1.xlsx", list)
	put(t, st, "Листы подбора/A/без_статуса.xlsx", table.New("№ задания"))

	res, err := r.ReturnUncollected(ctx, "A", "", "WB-GI-7")
	require.NoError(t, err)
	require.Equal(t, 2, res.Requested)
	require.Equal(t, 1, res.Attached)
	require.Equal(t, []int64{1}, api.attached["WB-GI-7"])

	saved := load(t, st, "Листы подбора/A/лист1.xlsx")
	require.Equal(t, []string{"отправлен", "да", "НЕТ"}, column(saved, models.ColCollected))

	_, err = r.ReturnUncollected(ctx, "A", "", " ")
	require.Error(t, err)
}

func TestSetExpirations(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	r, st := newTestRunner(t, api)

	a := table.New("Order ID", models.ColExpiration)
	a.Append(int64(501), "31.12.2025")
	a.Append(int64(502), nil)
	a.Append("503", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	a.Append(int64(504), "скоро")
	put(t, st, "Листы подбора/обработка/a.xlsx", a)
	put(t, st, "Листы подбора/обработка/no_dates.xlsx", table.New("Order ID"))
	require.NoError(t, st.Put(ctx, "Листы подбора/обработка/~$a.xlsx", []byte("lock"), storage.XLSXContentType))

	rep, err := r.SetExpirations(ctx, "A", "")
	require.NoError(t, err)
	require.Equal(t, 2, rep.Set)
	require.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Errors, 1)

	require.Len(t, api.expirations, 2)
	require.Equal(t, "501", api.expirations[0].OrderID)
	require.Equal(t, "31.12.2025", api.expirations[0].Date.Format("02.01.2006"))
	require.Equal(t, "503", api.expirations[1].OrderID)
	require.Equal(t, "15.01.2026", api.expirations[1].Date.Format("02.01.2006"))
}

func TestUpdateStocks(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{stockFail: map[string]bool{"203": true}}
	r, st := newTestRunner(t, api)

	base := table.New(models.ColArticle, models.ColBaseBarcode)
	base.Append("TAB-1", "201")
	base.Append(" TAB-1 ", "202")
	base.Append("TAB-1", "201")
	base.Append("TAB-1", "203")
	base.Append("MK-1", "301")
	put(t, st, "База данных/База данных.xlsx", base)

	rep, err := r.UpdateStocks(ctx, "D", "TAB-1", "крд", 5)
	require.NoError(t, err)
	require.Equal(t, []stockCall{{warehouse: "754193", skus: []string{"201", "202", "203"}, amount: 5}}, api.stockCalls)
	require.Equal(t, []string{"201", "202"}, rep.Updated)

	_, err = r.UpdateStocks(ctx, "D", "MK-1", "1640824", 0)
	require.NoError(t, err)

	logTable := load(t, st, "Остатки/остатки_логи.xlsx")
	require.Equal(t, stockLogColumns, logTable.Columns)
	require.Equal(t, []string{"201, 202", "301"}, column(logTable, "Баркоды"))
	require.Equal(t, []string{"754193", "1640824"}, column(logTable, "ID склада"))

	_, err = r.UpdateStocks(ctx, "D", "TAB-1", "Казань", 5)
	require.ErrorContains(t, err, "no warehouse")
	_, err = r.UpdateStocks(ctx, "D", "TAB-1", "КРД", -1)
	require.Error(t, err)
	_, err = r.UpdateStocks(ctx, "D", "NOPE", "КРД", 1)
	var nerr *apperr.NoDataError
	require.True(t, errors.As(err, &nerr))
}

func TestSupplyWrappers(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sticker: []byte("PNG"), supplyOrders: map[string][]int64{"WB-GI-1": {4, 5}}}
	r, st := newTestRunner(t, api)

	id, err := r.CreateSupply(ctx, "E", "")
	require.NoError(t, err)
	require.Equal(t, "WB-GI-1", id)
	require.Equal(t, []string{"NO BUY 2024-05-03"}, api.createdNames)

	ids, err := r.SupplyOrderIDs(ctx, "E", "WB-GI-1")
	require.NoError(t, err)
	require.Equal(t, []int64{4, 5}, ids)

	require.NoError(t, r.DeleteSupply(ctx, "E", "WB-GI-1"))
	require.NoError(t, r.DeliverSupply(ctx, "E", "WB-GI-2"))
	require.Equal(t, []string{"WB-GI-1"}, api.deleted)
	require.Equal(t, []string{"WB-GI-2"}, api.delivered)

	key, err := r.SaveSupplyBarcode(ctx, "E", " WB-GI-1 ", "png")
	require.NoError(t, err)
	require.Equal(t, "Списки поставок/qr_WB-GI-1.png", key)
	data, err := st.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("PNG"), data)

	_, err = r.CreateSupply(ctx, "Z", "x")
	require.Error(t, err)
}

func TestHighlightAndCleanup(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})
	r.Now = func() time.Time { return time.Date(2024, 5, 3, 12, 0, 0, 0, table.Moscow) }

	routed := table.New(models.ColDate, models.ColArticle)
	routed.Append("2024-05-02 01:00:00", "old")
	routed.Append("2024-05-03 11:00:00", "fresh")
	put(t, st, "orders/готовые/НА_ЗАКУПКУ_КРД.xlsx", routed)
	put(t, st, "orders/готовые/без_даты.xlsx", table.New(models.ColArticle))

	out, err := r.Highlight(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, []Output{{Key: "orders/готовые/НА_ЗАКУПКУ_КРД.xlsx", Rows: 1}}, out)

	put(t, st, "Списки поставок/a.xlsx", routed)
	put(t, st, "Списки поставок/b.xlsx", routed)
	put(t, st, "Списки поставок/архив/c.xlsx", routed)
	require.NoError(t, st.Put(ctx, "Списки поставок/qr_1.png", []byte("x"), "image/png"))

	n, err := r.Cleanup(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	keys, err := st.List(ctx, "Списки поставок/")
	require.NoError(t, err)
	require.Equal(t, []string{"Списки поставок/qr_1.png", "Списки поставок/архив/c.xlsx"}, keys)
}

func TestHighlightSkipsBadWorkbooks(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRunner(t, &fakeAPI{})
	r.Now = func() time.Time { return time.Date(2024, 5, 3, 12, 0, 0, 0, table.Moscow) }

	require.NoError(t, st.Put(ctx, "orders/готовые/a_broken.xlsx", []byte("not a zip"), storage.XLSXContentType))
	good := table.New(models.ColDate, models.ColArticle)
	good.Append("2024-05-02 01:00:00", "old")
	put(t, st, "orders/готовые/b_good.xlsx", good)

	out, err := r.Highlight(ctx, []string{
		"orders/готовые/a_broken.xlsx",
		"orders/готовые/missing.xlsx",
		"orders/готовые/b_good.xlsx",
	})
	require.NoError(t, err)
	require.Equal(t, []Output{{Key: "orders/готовые/b_good.xlsx", Rows: 1}}, out)
}
