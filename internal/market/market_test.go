package market

import "testing"

func TestTickers_KnownMarkets(t *testing.T) {
	for _, name := range Names {
		ts, ok := Tickers(name)
		if !ok {
			t.Fatalf("market %s not found", name)
		}
		if len(ts) != 10 {
			t.Fatalf("market %s: want 10 tickers, got %d", name, len(ts))
		}
	}
}

func TestTickers_CaseInsensitive(t *testing.T) {
	ts, ok := Tickers("NASDAQ")
	if !ok {
		t.Fatal("NASDAQ not found")
	}
	if ts[0] != "NVDA" || ts[9] != "INTC" {
		t.Fatalf("unexpected nasdaq order: %v", ts)
	}
}

func TestTickers_Unknown(t *testing.T) {
	if _, ok := Tickers("ftse"); ok {
		t.Fatal("ftse must not resolve")
	}
}
