package odds

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestImpliedFromAmerican(t *testing.T) {
	cases := []struct {
		price int
		want  float64
	}{
		{-110, 110.0 / 210.0},
		{-300, 0.75},
		{150, 0.4},
		{100, 0.5},
	}
	for _, tc := range cases {
		got := ImpliedFromAmerican(tc.price).InexactFloat64()
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ImpliedFromAmerican(%d) = %v, want %v", tc.price, got, tc.want)
		}
	}
}

func TestDevigSumsToOne(t *testing.T) {
	cases := [][2]int{
		{-110, -110},
		{-300, 240},
		{-150, 130},
		{120, -140},
	}
	one := decimal.NewFromInt(1)
	for _, tc := range cases {
		a, b := Devig(ImpliedFromAmerican(tc[0]), ImpliedFromAmerican(tc[1]))
		if sum := a.Add(b); !sum.Sub(one).Abs().LessThan(decimal.NewFromFloat(1e-12)) {
			t.Errorf("Devig(%d, %d) sums to %s, want 1", tc[0], tc[1], sum)
		}
		if a.LessThanOrEqual(decimal.Zero) || b.LessThanOrEqual(decimal.Zero) {
			t.Errorf("Devig(%d, %d) produced non-positive probability", tc[0], tc[1])
		}
	}
}

func TestDevigZeroInputs(t *testing.T) {
	a, b := Devig(decimal.Zero, decimal.Zero)
	if !a.Equal(decimal.NewFromFloat(0.5)) || !b.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("Devig(0, 0) = %s, %s, want even split", a, b)
	}
}

func TestLineFromPrices(t *testing.T) {
	l := LineFromPrices("Boston Celtics", "Miami Heat", -300, 240)
	if l.HomePrice != -300 || l.AwayPrice != 240 {
		t.Errorf("prices = %d/%d", l.HomePrice, l.AwayPrice)
	}
	// -300 favorite should hold roughly 3/4 probability after devig.
	if p := l.HomeWinProb(); p < 0.70 || p > 0.75 {
		t.Errorf("home implied = %v, want ~0.72", p)
	}
	if l.HasTotal {
		t.Error("line without totals market claims a total")
	}
	if _, ok := l.TotalLine(); ok {
		t.Error("TotalLine ok without a posted total")
	}
}

func TestBookFind(t *testing.T) {
	lines := []*MarketLine{
		LineFromPrices("Boston Celtics", "Miami Heat", -300, 240),
		LineFromPrices("Denver Nuggets", "Dallas Mavericks", -150, 130),
	}
	b := NewBook(lines)

	if b.Len() != 2 {
		t.Fatalf("book has %d lines, want 2", b.Len())
	}
	if l := b.Find("Boston Celtics", "Miami Heat"); l == nil || l.HomePrice != -300 {
		t.Error("exact lookup failed")
	}
	if l := b.Find("Miami Heat", "Boston Celtics"); l == nil {
		t.Error("order-independent lookup failed")
	}
	if l := b.Find("Denver Nuggets FC", "Dallas"); l == nil || l.HomePrice != -150 {
		t.Error("fuzzy last-token lookup failed")
	}
	if l := b.Find("Utah Jazz", "Phoenix Suns"); l != nil {
		t.Errorf("found a line for an absent matchup: %+v", l)
	}
}
