package strategy

import "fmt"

// TradeMode restricts which position directions a strategy may open.
type TradeMode int

const (
	OnlyBuy TradeMode = iota
	OnlySell
	BothBuySell
)

func (m TradeMode) String() string {
	switch m {
	case OnlyBuy:
		return "only_buy"
	case OnlySell:
		return "only_sell"
	case BothBuySell:
		return "both_buy_sell"
	default:
		return fmt.Sprintf("trade_mode(%d)", int(m))
	}
}

// ParseTradeMode resolves a configuration string to a TradeMode.
func ParseTradeMode(s string) (TradeMode, error) {
	switch s {
	case "only_buy", "Only_Buy", "OnlyBuy":
		return OnlyBuy, nil
	case "only_sell", "Only_Sell", "OnlySell":
		return OnlySell, nil
	case "both", "both_buy_sell", "Both_Buy_Sell", "BothBuySell":
		return BothBuySell, nil
	default:
		return 0, fmt.Errorf("unknown trade mode %q", s)
	}
}

// Position is the current net directional exposure of a run.
type Position int

const (
	Flat Position = iota
	Long
	Short
)

func (p Position) String() string {
	switch p {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Intent is a single order instruction emitted for one bar and consumed
// immediately by the execution engine.
type Intent int

const (
	NoAction Intent = iota
	OpenLong
	OpenShort
	Close
)

func (i Intent) String() string {
	switch i {
	case OpenLong:
		return "open_long"
	case OpenShort:
		return "open_short"
	case Close:
		return "close"
	default:
		return "no_action"
	}
}
