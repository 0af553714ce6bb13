package models

// Receipts is the money actually collected at cart close.
type Receipts struct {
	Cash float64 `json:"cash"`
	QR   float64 `json:"qr"`
}

// Receivables is sales value owed but not yet collected.
type Receivables struct {
	Credit float64 `json:"credit"`
	Swiggy float64 `json:"swiggy"`
	Zomato float64 `json:"zomato"`
}

// Expenses are the categorized day expenses accumulated in a daily summary.
// Note the persisted field is "other" (singular); the wizard input category
// is "others" and is a distinct field that is not accumulated here.
type Expenses struct {
	Samples      float64 `json:"samples"`
	Wastage      float64 `json:"wastage"`
	Other        float64 `json:"other"`
	Municipality float64 `json:"municipality"`
	Bata         float64 `json:"bata"`
	Shortage     float64 `json:"shortage"`
}

// DailySummary is the per-date ledger entry nested inside a month document.
type DailySummary struct {
	Date          string      `json:"date"`
	OpeningStock  StockPair   `json:"openingStock"`
	ClosingStock  *StockPair  `json:"closingStock"`
	StickSold     int         `json:"stickSold"`
	PlateSold     int         `json:"plateSold"`
	ReceivedStick int         `json:"receivedStick"`
	ReceivedPlate int         `json:"receivedPlate"`
	Receipts      Receipts    `json:"receipts"`
	Receivables   Receivables `json:"receivables"`
	Expenses      Expenses    `json:"expenses"`
	DayStarted    bool        `json:"dayStarted"`
	DayClosed     bool        `json:"dayClosed"`
	Remarks       string      `json:"remarks"`
}

// MonthRecord is a month document in the dailyStockSummary collection,
// keyed "<YYYY>/months/<MM>".
type MonthRecord struct {
	DailySummaries map[string]DailySummary `json:"dailySummaries"`
}
