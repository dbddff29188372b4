// Package odds provides the optional market line provider: two-sided win
// prices devigged into implied probabilities, plus the posted totals line.
package odds

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MarketLine is the market's view of one matchup.
type MarketLine struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	// Win market, devigged so HomeImplied + AwayImplied = 1.
	HomeImplied decimal.Decimal `json:"home_implied"`
	AwayImplied decimal.Decimal `json:"away_implied"`
	HomePrice   int             `json:"home_price"` // American odds
	AwayPrice   int             `json:"away_price"`

	// Totals market. HasTotal is false when the book posted no line.
	Total    decimal.Decimal `json:"total"`
	HasTotal bool            `json:"has_total"`
}

// HomeWinProb returns the devigged home win probability as a float.
func (m *MarketLine) HomeWinProb() float64 {
	return m.HomeImplied.InexactFloat64()
}

// TotalLine returns the posted total, if any.
func (m *MarketLine) TotalLine() (float64, bool) {
	if !m.HasTotal {
		return 0, false
	}
	return m.Total.InexactFloat64(), true
}

// ImpliedFromAmerican converts an American price quote to its raw implied
// probability (vig included).
func ImpliedFromAmerican(price int) decimal.Decimal {
	p := decimal.NewFromInt(int64(price))
	hundred := decimal.NewFromInt(100)
	if price < 0 {
		abs := p.Abs()
		return abs.Div(abs.Add(hundred))
	}
	return hundred.Div(p.Add(hundred))
}

// Devig rescales two complementary implied probabilities so they sum to 1,
// removing the bookmaker's margin.
func Devig(a, b decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total := a.Add(b)
	if total.IsZero() {
		half := decimal.NewFromFloat(0.5)
		return half, half
	}
	return a.Div(total), b.Div(total)
}

// LineFromPrices builds a devigged MarketLine from two-sided American quotes.
func LineFromPrices(home, away string, homePrice, awayPrice int) *MarketLine {
	hImp, aImp := Devig(ImpliedFromAmerican(homePrice), ImpliedFromAmerican(awayPrice))
	return &MarketLine{
		HomeTeam:    home,
		AwayTeam:    away,
		HomeImplied: hImp,
		AwayImplied: aImp,
		HomePrice:   homePrice,
		AwayPrice:   awayPrice,
	}
}

// Book is a day's slate of market lines, keyed for matchup lookup.
type Book struct {
	lines map[string]*MarketLine
}

// NewBook builds a Book from a slate of lines.
func NewBook(lines []*MarketLine) *Book {
	b := &Book{lines: make(map[string]*MarketLine, len(lines))}
	for _, l := range lines {
		b.lines[pairKey(l.HomeTeam, l.AwayTeam)] = l
	}
	return b
}

// Len returns the number of matchups in the book.
func (b *Book) Len() int {
	return len(b.lines)
}

// Find locates the line for a matchup. Exact sorted-pair lookup first, then
// a last-token fuzzy scan for slates whose team names differ from ours.
// Returns nil when the market has no line for the matchup.
func (b *Book) Find(home, away string) *MarketLine {
	if l, ok := b.lines[pairKey(home, away)]; ok {
		return l
	}

	homeLast := lastToken(home)
	awayLast := lastToken(away)
	for key, l := range b.lines {
		if homeLast != "" && strings.Contains(key, homeLast) {
			return l
		}
		if awayLast != "" && strings.Contains(key, awayLast) {
			return l
		}
	}
	return nil
}

// pairKey builds an order-independent key from the two team names.
func pairKey(a, b string) string {
	names := []string{strings.ToLower(a), strings.ToLower(b)}
	sort.Strings(names)
	return names[0] + "|" + names[1]
}

func lastToken(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
