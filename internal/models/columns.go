package models

// Column names of the exported tables. Downstream jobs and operators rely on
// them, so they stay in Russian as they appear in the workbooks.
const (
	ColDate        = "Дата"
	ColArticle     = "Артикул продавца"
	ColPickupPoint = "Пункт выдачи"
	ColPrice       = "Цена (руб)"
	ColBarcode     = "Штрихкод"
	ColStore       = "Магазин"
	ColOrderID     = "id"
	ColSeller      = "Продавец"
	ColGroup       = "Группа"

	ColSupplyID        = "ID поставки"
	ColSupplyName      = "Номер поставки"
	ColSupplyCreatedAt = "Дата создания"
	ColSupplyDone      = "Завершена"
	ColSupplyCargo     = "Тип груза"

	ColNoBuySupplyID = "supply_id"

	ColBaseBarcode = "Баркод"
	ColName        = "Наименование"
	ColPhoto       = "Фото"

	ColPurchased  = "Закуплено"
	ColCollected  = "Собрано"
	ColExpiration = "Срок годности"
)

// OrderColumns is the column order of the new-orders export.
var OrderColumns = []string{
	ColDate, ColArticle, ColPickupPoint, ColPrice, ColBarcode,
	ColStore, ColOrderID, ColSeller, ColGroup,
}

// SupplyColumns is the column order of the active-supplies export.
var SupplyColumns = []string{
	ColSupplyID, ColSupplyName, ColSupplyCreatedAt, ColSupplyDone, ColSupplyCargo,
}

// SupplyOrderColumns is the column order of the not-purchased export.
var SupplyOrderColumns = []string{ColNoBuySupplyID, ColOrderID, ColSeller, ColGroup}

// OrderIDAliases are the header spellings used for the order id in
// hand-prepared workbooks.
var OrderIDAliases = []string{"№ задания", "Order ID", "ID задания", "ID заказа", ColOrderID}
