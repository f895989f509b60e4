package market

import "strings"

// Fixed ticker universes per market. Order matters: bulk snapshot rows are
// emitted in this order.
var (
	nasdaq = []string{"NVDA", "AAPL", "MSFT", "GOOGL", "AMZN", "AVGO", "META", "TSLA", "ASML", "INTC"}
	sensex = []string{
		"INFY.NS", "RELIANCE.NS", "TECHM.NS", "TCS.NS", "BHARTIARTL.NS",
		"TATASTEEL.NS", "TATAMOTORS.NS", "HCLTECH.NS", "HDFCBANK.NS", "BEL.NS",
	}
	dow = []string{"MMM", "AAPL", "JNJ", "V", "UNH", "JPM", "PG", "HD", "IBM", "KO"}
)

var groups = map[string][]string{
	"nasdaq": nasdaq,
	"sensex": sensex,
	"dow":    dow,
}

// Names lists the recognized market identifiers in documentation order.
var Names = []string{"nasdaq", "sensex", "dow"}

// Tickers returns the fixed ticker list for a market identifier,
// case-insensitively. The returned slice must not be mutated.
func Tickers(name string) ([]string, bool) {
	ts, ok := groups[strings.ToLower(name)]
	return ts, ok
}
