package settle

import (
	"github.com/shopspring/decimal"

	"github.com/phenomenon0/nba-oracle/pkg/oracle/predlog"
)

// Summary is the all-time accuracy rollup across the whole log.
type Summary struct {
	Days    int `json:"days"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Pending int `json:"pending"`

	Pct decimal.Decimal `json:"pct"` // hits over settled, percent

	GodHits  int             `json:"god_hits"`
	GodTotal int             `json:"god_total"` // settled high-confidence picks
	GodPct   decimal.Decimal `json:"god_pct"`
}

// Summarize walks the log and aggregates settlement results, with a separate
// split for high-confidence picks.
func Summarize(l *predlog.Log) Summary {
	s := Summary{Days: len(l.Days)}
	for i := range l.Days {
		for j := range l.Days[i].Predictions {
			rec := &l.Days[i].Predictions[j]
			switch rec.Result {
			case predlog.StatusHit:
				s.Hits++
				if rec.God {
					s.GodHits++
					s.GodTotal++
				}
			case predlog.StatusMiss:
				s.Misses++
				if rec.God {
					s.GodTotal++
				}
			default:
				s.Pending++
			}
		}
	}
	s.Pct = pct(s.Hits, s.Hits+s.Misses)
	s.GodPct = pct(s.GodHits, s.GodTotal)
	return s
}

func pct(hits, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(hits)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}
