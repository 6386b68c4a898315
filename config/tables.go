package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/lukman83/wbops/internal/apperr"
)

// Tables is the operator-maintained part of the configuration: cabinets,
// routing tables and storage key templates. It is read from an optional YAML
// file over built-in defaults.
type Tables struct {
	Cabinets      []Cabinet     `mapstructure:"cabinets"`
	PickupPoints  []Route       `mapstructure:"pickup_points"`
	StorePrefixes []StorePrefix `mapstructure:"store_prefixes"`
	Groups        []string      `mapstructure:"groups"`
	GroupSplits   []GroupSplit  `mapstructure:"group_splits"`
	Highlight     Highlight     `mapstructure:"highlight"`
	Supplies      SupplyNames   `mapstructure:"supplies"`
	Keys          Keys          `mapstructure:"keys"`
}

// Cabinet is one seller account.
type Cabinet struct {
	ID         string      `mapstructure:"id"`
	Seller     string      `mapstructure:"seller"`
	Warehouses []Warehouse `mapstructure:"warehouses"`
}

// Warehouse maps an operator-facing name to the marketplace warehouse id.
type Warehouse struct {
	Name string `mapstructure:"name"`
	ID   string `mapstructure:"id"`
}

// Route sends rows whose column equals Value to the output file File.
type Route struct {
	Value string `mapstructure:"value"`
	File  string `mapstructure:"file"`
}

// StorePrefix labels articles starting with Prefix.
type StorePrefix struct {
	Prefix string `mapstructure:"prefix"`
	Store  string `mapstructure:"store"`
}

// GroupSplit is one input workbook split per group letter.
type GroupSplit struct {
	Name         string `mapstructure:"name"`
	Input        string `mapstructure:"input"`
	OutputPrefix string `mapstructure:"output_prefix"`
	KeepEmpty    bool   `mapstructure:"keep_empty"`
}

// Highlight configures the order-age colouring.
type Highlight struct {
	Column     string   `mapstructure:"column"`
	Keys       []string `mapstructure:"keys"`
	WarnHours  float64  `mapstructure:"warn_hours"`
	AlertHours float64  `mapstructure:"alert_hours"`
	WarnColor  string   `mapstructure:"warn_color"`
	AlertColor string   `mapstructure:"alert_color"`
}

// SupplyNames are the prefixes of generated supply names; the date is appended.
type SupplyNames struct {
	Bought string `mapstructure:"bought"`
	NoBuy  string `mapstructure:"no_buy"`
}

// Keys are storage key templates. "{cabinet}" is replaced by the cabinet id.
type Keys struct {
	Orders            string `mapstructure:"orders"`
	ActiveSupplies    string `mapstructure:"active_supplies"`
	SupplyOrders      string `mapstructure:"supply_orders"`
	ProductBase       string `mapstructure:"product_base"`
	Merged            string `mapstructure:"merged"`
	MergedPrefix      string `mapstructure:"merged_prefix"`
	RoutedPrefix      string `mapstructure:"routed_prefix"`
	Bought            string `mapstructure:"bought"`
	PickListPrefix    string `mapstructure:"pick_list_prefix"`
	ExpirationsPrefix string `mapstructure:"expirations_prefix"`
	BarcodesPrefix    string `mapstructure:"barcodes_prefix"`
	StocksLog         string `mapstructure:"stocks_log"`
	CleanupPrefix     string `mapstructure:"cleanup_prefix"`
}

// For expands a key template for a cabinet.
func For(template, cabinet string) string {
	return strings.ReplaceAll(template, "{cabinet}", cabinet)
}

// Cabinet returns the cabinet with the given id (case-insensitive).
func (t *Tables) Cabinet(id string) (Cabinet, bool) {
	for _, c := range t.Cabinets {
		if strings.EqualFold(c.ID, strings.TrimSpace(id)) {
			return c, true
		}
	}
	return Cabinet{}, false
}

// Warehouse resolves a warehouse name of the cabinet (case-insensitive).
func (c Cabinet) Warehouse(name string) (string, bool) {
	for _, w := range c.Warehouses {
		if strings.EqualFold(w.Name, strings.TrimSpace(name)) {
			return w.ID, true
		}
	}
	return "", false
}

// GroupSplit returns the split set with the given name.
func (t *Tables) GroupSplit(name string) (GroupSplit, bool) {
	for _, s := range t.GroupSplits {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return GroupSplit{}, false
}

// LoadTables reads the tables file at path over the defaults. An empty path
// yields the defaults with environment overrides applied.
func LoadTables(path string) (*Tables, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	// The active-supplies output key has its own historical variable.
	_ = v.BindEnv("keys.active_supplies", "ACTIVE_SUPPLIES_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &apperr.ConfigurationError{Key: "WBOPS_TABLES", Reason: err.Error()}
		}
	}

	var t Tables
	if err := v.Unmarshal(&t); err != nil {
		return nil, fmt.Errorf("error unmarshaling tables: %w", err)
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) check() error {
	seen := make(map[string]bool, len(t.Cabinets))
	for _, c := range t.Cabinets {
		id := strings.ToUpper(c.ID)
		if id == "" {
			return &apperr.ConfigurationError{Key: "cabinets", Reason: "cabinet without id"}
		}
		if seen[id] {
			return &apperr.ConfigurationError{Key: "cabinets", Reason: "duplicate cabinet " + id}
		}
		seen[id] = true
	}
	for _, r := range t.PickupPoints {
		if r.Value == "" || r.File == "" {
			return &apperr.ConfigurationError{Key: "pickup_points", Reason: "route needs value and file"}
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cabinets", []map[string]any{
		{"id": "A", "seller": "ОБЩИЙ"},
		{"id": "B", "seller": "ОБЩИЙ"},
		{"id": "C", "seller": "ОБЩИЙ"},
		{"id": "D", "seller": "ОБЩИЙ", "warehouses": []map[string]any{
			{"name": "КРД", "id": "754193"},
			{"name": "ЗЕЛ", "id": "1453417"},
			{"name": "МСК", "id": "1493800"},
			{"name": "ЕКБ", "id": "1640824"},
		}},
		{"id": "E", "seller": "ОБЩИЙ", "warehouses": []map[string]any{
			{"name": "КРД", "id": "1640880"},
			{"name": "ЗЕЛ", "id": "1640883"},
			{"name": "МСК", "id": "1640882"},
		}},
		{"id": "F", "seller": "Я ЧОРНИ", "warehouses": []map[string]any{
			{"name": "КРАСНОДАР", "id": "1312919"},
			{"name": "МОСКВА", "id": "1367610"},
			{"name": "КАЛ", "id": "1505283"},
		}},
		{"id": "G", "seller": "ОБЩИЙ"},
		{"id": "H", "seller": "ОБЩИЙ"},
	})

	v.SetDefault("pickup_points", []map[string]any{
		{"value": "Краснодар", "file": "НА_ЗАКУПКУ_КРД.xlsx"},
		{"value": "Москва, Москва_Север", "file": "НА_ЗАКУПКУ_ЗЕЛ.xlsx"},
		{"value": "Москва, Москва_Запад-Юг", "file": "НА_ЗАКУПКУ_МСК.xlsx"},
		{"value": "Екатеринбург", "file": "НА_ЗАКУПКУ_ЕКБ.xlsx"},
	})

	prefixes := [][2]string{
		{"TAB", "ТАБРИС"}, {"TBRS", "ТАБРИС"}, {"BAU", "БАУЦЕНТР"},
		{"MK", "КОСМЕТИК"}, {"mk", "КОСМЕТИК"}, {"YEMKP", "КОСМЕТИК"}, {"MGKSMT", "КОСМЕТИК"},
		{"OKK", "ОКЕЙ"}, {"EA", "МОСКВА АПТЕКА"}, {"ASIA", "АЗИЯЛЭНД"}, {"TURC", "ТУРЦИЯ"},
		{"MAG", "МАГНИТ"}, {"CHIT", "ЧИТАЙГОРОД"}, {"LEMAN", "ЛЕМАНА"}, {"LETOILE", "ЛЕТУАЛЬ"},
		{"ZOOZAVR", "ЗООЗАВР"}, {"hlorid", "МОСКВА ХЛОРИД"}, {"AUCHAN", "АШАН"}, {"ACH", "АШАН"},
		{"HUNT", "МИРОХОТЫ"}, {"MIR", "МИРОХОТЫ"}, {"MTR", "МЕТРО"}, {"MET", "МЕТРО"},
		{"MODI", "МОДИ"}, {"PDRGT", "ПИДРУЖКА"}, {"TOK", "ТОКПОКА"}, {"4LAPY", "ЛАПЫ"},
		{"wb4lxltrsh", "ОКЕЙ"}, {"LENTA", "ЛЕНТА"}, {"PEREK", "ПЕРЕКРЁСТОК"}, {"PDRG", "ПОДРУЖКА"},
	}
	prefixDefaults := make([]map[string]any, 0, len(prefixes))
	for _, p := range prefixes {
		prefixDefaults = append(prefixDefaults, map[string]any{"prefix": p[0], "store": p[1]})
	}
	v.SetDefault("store_prefixes", prefixDefaults)

	v.SetDefault("groups", []string{"A", "B", "C", "D", "E", "F", "G", "H"})
	v.SetDefault("group_splits", []map[string]any{
		{"name": "moscow", "input": "orders/готовые/ЗАДАНИЯ_МОСКВА.xlsx", "output_prefix": "закупленные/закупленные_Москва/"},
		{"name": "ekb", "input": "на закупку/ЗАДАНИЯ_ЕКБ.xlsx", "output_prefix": "закупленные Екб/", "keep_empty": true},
	})

	v.SetDefault("highlight.column", "Дата")
	v.SetDefault("highlight.keys", []string{})
	v.SetDefault("highlight.warn_hours", 20)
	v.SetDefault("highlight.alert_hours", 30)
	v.SetDefault("highlight.warn_color", "FFCC80")
	v.SetDefault("highlight.alert_color", "FFCDD2")

	v.SetDefault("supplies.bought", "ЗАКУПЛЕННЫЕ КАЛЕДИНО")
	v.SetDefault("supplies.no_buy", "NO BUY")

	v.SetDefault("keys.orders", "orders/{cabinet}/задания_{cabinet}.xlsx")
	v.SetDefault("keys.active_supplies", "supplies/active/{cabinet}.xlsx")
	v.SetDefault("keys.supply_orders", "orders/Выходы {cabinet}/поставки_не_купили_{cabinet}.xlsx")
	v.SetDefault("keys.product_base", "База данных/База данных.xlsx")
	v.SetDefault("keys.merged", "orders/выходы/задания_с_названием_и_фото_{cabinet}.xlsx")
	v.SetDefault("keys.merged_prefix", "orders/выходы/")
	v.SetDefault("keys.routed_prefix", "orders/готовые/")
	v.SetDefault("keys.bought", "закупленные/закупленные_Каледино/{cabinet}.xlsx")
	v.SetDefault("keys.pick_list_prefix", "Листы подбора/{cabinet}/")
	v.SetDefault("keys.expirations_prefix", "Листы подбора/обработка/")
	v.SetDefault("keys.barcodes_prefix", "Списки поставок/")
	v.SetDefault("keys.stocks_log", "Остатки/остатки_логи.xlsx")
	v.SetDefault("keys.cleanup_prefix", "Списки поставок/")
}
