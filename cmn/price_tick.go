package cmn

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceTick is one pool price sample, quote per base.
type PriceTick struct {
	Timestamp   time.Time       `json:"timestamp"`
	Price       decimal.Decimal `json:"price"`
	BaseSymbol  string          `json:"base_token"`
	QuoteSymbol string          `json:"quote_token"`
}

func (t *PriceTick) Matches(base, quote string) bool {
	return t.BaseSymbol == base && t.QuoteSymbol == quote
}
