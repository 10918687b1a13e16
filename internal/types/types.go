package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// IST is the exchange-local timezone. Calendar dates everywhere in the
// store ("2006-01-02" strings) are IST days, so the daily trade limit
// rolls over at IST midnight regardless of host timezone.
var IST = time.FixedZone("IST", 19800)

const DateLayout = "2006-01-02"

// Today returns the current IST calendar date.
func Today() string {
	return time.Now().In(IST).Format(DateLayout)
}

var hundred = decimal.NewFromInt(100)

// Snapshot is the catalog's latest view of one instrument.
type Snapshot struct {
	Symbol            string          `json:"symbol"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	MovingAverage20   decimal.Decimal `json:"moving_average_20"`
	CurrentVolume     int64           `json:"current_volume"`
	Average5DayVolume float64         `json:"average_5day_volume"`
	Qualified         bool            `json:"qualified"`
	Stale             bool            `json:"stale,omitempty"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// Deviation is the percentage distance of the current price from its
// 20-period moving average. Always computed from the stored fields,
// never persisted.
func (s Snapshot) Deviation() decimal.Decimal {
	return s.CurrentPrice.Sub(s.MovingAverage20).Div(s.MovingAverage20).Mul(hundred)
}

const (
	LotActive = "active"
	LotSold   = "sold"
)

// Lot is a single buy event. Lots for one symbol are stored in open
// order; fully consumed lots flip to sold and keep their quantity for
// audit, partially consumed lots stay active with the residual.
type Lot struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Quantity int             `json:"quantity"`
	BuyPrice decimal.Decimal `json:"buy_price"`
	BuyDate  string          `json:"buy_date"`
	Status   string          `json:"status"`
	SaleRef  string          `json:"sale_ref,omitempty"`
}

const (
	KindBuy  = "BUY"
	KindSell = "SELL"
)

// Transaction is one executed trade. The log is append-only and is the
// sole source of daily-limit bookkeeping.
type Transaction struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Kind        string          `json:"kind"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Date        string          `json:"date"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// SymbolMapping records one applied identifier rename.
type SymbolMapping struct {
	OldSymbol string    `json:"old_symbol"`
	NewSymbol string    `json:"new_symbol"`
	Reason    string    `json:"reason"`
	AppliedAt time.Time `json:"applied_at"`
}

// Settings are the persisted strategy parameters.
type Settings struct {
	VolumeThreshold         float64         `json:"volume_threshold"`
	FilterEnabled           bool            `json:"filter_enabled"`
	MaxRankToConsider       int             `json:"max_rank_to_consider"`
	AveragingLossThreshold  float64         `json:"averaging_loss_threshold"`
	ProfitThreshold         float64         `json:"profit_threshold"`
	DefaultInvestmentAmount decimal.Decimal `json:"default_investment_amount"`
}

func DefaultSettings() Settings {
	return Settings{
		VolumeThreshold:         50000,
		FilterEnabled:           true,
		MaxRankToConsider:       5,
		AveragingLossThreshold:  -2.5,
		ProfitThreshold:         6.0,
		DefaultInvestmentAmount: decimal.NewFromInt(10000),
	}
}

// Quote is one price source observation. MovingAverage20 and
// AvgVolume5Day may be zero when the source cannot supply them; the
// refresher then falls back to the catalog's prior values.
type Quote struct {
	Symbol          string
	Price           decimal.Decimal
	MovingAverage20 decimal.Decimal
	Volume          int64
	AvgVolume5Day   float64
}

type RankedInstrument struct {
	Symbol    string          `json:"symbol"`
	Deviation decimal.Decimal `json:"deviation"`
}

const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionNone = "NONE"
)

// Proposal reasons. The NoAction reasons are normal decision outcomes,
// not errors.
const (
	ReasonTopRankUnheld       = "TOP_RANK_UNHELD"
	ReasonAveragingDown       = "AVERAGING_DOWN"
	ReasonProfitTarget        = "PROFIT_TARGET"
	ReasonDailyLimitReached   = "DAILY_LIMIT_REACHED"
	ReasonNoEligibleCandidate = "NO_ELIGIBLE_CANDIDATE"
	ReasonNoProfitableLot     = "NO_PROFITABLE_LOT"
	ReasonInsufficientCapital = "INSUFFICIENT_CAPITAL"
)

// Proposal is a read-only trade suggestion. Deviation is set for buy
// proposals, ProfitPct for sell proposals.
type Proposal struct {
	Action    string          `json:"action"`
	Symbol    string          `json:"symbol,omitempty"`
	Quantity  int             `json:"quantity,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Spent     decimal.Decimal `json:"spent"`
	Reason    string          `json:"reason"`
	Deviation decimal.Decimal `json:"deviation"`
	ProfitPct decimal.Decimal `json:"profit_pct"`
}

// Fill is the portion of one lot consumed by a sell.
type Fill struct {
	LotID    string          `json:"lot_id"`
	Quantity int             `json:"quantity"`
	BuyPrice decimal.Decimal `json:"buy_price"`
	PnL      decimal.Decimal `json:"pnl"`
}

type SellResult struct {
	Transaction Transaction     `json:"transaction"`
	Fills       []Fill          `json:"fills"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

type RefreshSummary struct {
	Attempted int               `json:"attempted"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

type QualificationSummary struct {
	Threshold    float64 `json:"threshold"`
	Qualified    int     `json:"qualified"`
	Disqualified int     `json:"disqualified"`
}

type VolumeEntry struct {
	Symbol        string    `json:"symbol"`
	AvgVolume5Day float64   `json:"avg_volume_5day"`
	CurrentVolume int64     `json:"current_volume"`
	LastUpdated   time.Time `json:"last_updated"`
}

type VolumeReport struct {
	Threshold     float64       `json:"threshold"`
	FilterEnabled bool          `json:"filter_enabled"`
	Qualified     []VolumeEntry `json:"qualified"`
	Disqualified  []VolumeEntry `json:"disqualified"`
	MissingData   []string      `json:"missing_data"`
}

type HoldingSummary struct {
	Symbol        string          `json:"symbol"`
	Lots          int             `json:"lots"`
	TotalQuantity int             `json:"total_quantity"`
	Invested      decimal.Decimal `json:"invested"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	HasQuote      bool            `json:"has_quote"`
}

type PortfolioSummary struct {
	Holdings           []HoldingSummary `json:"holdings"`
	TotalInvested      decimal.Decimal  `json:"total_invested"`
	TotalCurrentValue  decimal.Decimal  `json:"total_current_value"`
	TotalUnrealizedPnL decimal.Decimal  `json:"total_unrealized_pnl"`
}

type Statistics struct {
	TotalBuys        int             `json:"total_buys"`
	TotalSells       int             `json:"total_sells"`
	WinningSells     int             `json:"winning_sells"`
	WinRate          float64         `json:"win_rate"`
	TotalRealizedPnL decimal.Decimal `json:"total_realized_pnl"`
	AvgProfitPerSell decimal.Decimal `json:"avg_profit_per_sell"`
}

type MappingRow struct {
	OldSymbol string `json:"old_symbol"`
	NewSymbol string `json:"new_symbol"`
	Reason    string `json:"reason"`
}

type MappingResult struct {
	Row   MappingRow `json:"row"`
	Error string     `json:"error,omitempty"`
}

type MappingSummary struct {
	Attempted int             `json:"attempted"`
	Applied   int             `json:"applied"`
	Failed    []MappingResult `json:"failed,omitempty"`
}
