package timeframe

import (
	"fmt"
	"strings"
)

// Spec is the provider-facing shape of a user period token: the trailing
// history span to request and the sampling interval of each bar.
type Spec struct {
	Span     string
	Interval string
}

// Tokens lists the recognized period tokens in documentation order.
var Tokens = []string{"1d", "1w", "1mo", "6mo", "1y", "5y", "all"}

var specs = map[string]Spec{
	"1d":  {Span: "1d", Interval: "30m"},
	"1w":  {Span: "7d", Interval: "1d"},
	"1mo": {Span: "1mo", Interval: "1d"},
	"6mo": {Span: "6mo", Interval: "1d"},
	"1y":  {Span: "1y", Interval: "1d"},
	"5y":  {Span: "5y", Interval: "1wk"},
	"all": {Span: "max", Interval: "1mo"},
}

// InvalidPeriodError reports an unrecognized period token. The message
// enumerates the valid set.
type InvalidPeriodError struct {
	Token string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period %q: valid periods are %s", e.Token, strings.Join(Tokens, ", "))
}

// Resolve maps a period token, case-insensitively, to its Spec.
func Resolve(token string) (Spec, error) {
	s, ok := specs[strings.ToLower(token)]
	if !ok {
		return Spec{}, &InvalidPeriodError{Token: token}
	}
	return s, nil
}
