// Package teams provides the canonical NBA team registry and the name
// normalization used to resolve free-text team names from upstream feeds.
package teams

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Team is a canonical team entry with its known aliases.
type Team struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbreviation"`
	Aliases      []string `json:"aliases"`
}

// Registry resolves free-text team names to canonical teams.
type Registry struct {
	mu       sync.RWMutex
	teams    map[string]*Team // ID -> Team
	byName   map[string]*Team // normalized name/alias -> Team
	byAbbrev map[string]*Team // abbreviation -> Team
}

// NewRegistry creates a registry preloaded with the NBA teams.
func NewRegistry() *Registry {
	r := &Registry{
		teams:    make(map[string]*Team),
		byName:   make(map[string]*Team),
		byAbbrev: make(map[string]*Team),
	}
	for _, t := range nbaTeams {
		r.Add(t)
	}
	return r
}

// Add indexes a team by canonical name, abbreviation, and aliases.
func (r *Registry) Add(t *Team) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.teams[t.ID] = t
	r.byName[NormalizeName(t.Name)] = t
	if t.Abbreviation != "" {
		r.byAbbrev[strings.ToLower(t.Abbreviation)] = t
	}
	for _, alias := range t.Aliases {
		r.byName[NormalizeName(alias)] = t
	}
}

// Get returns a team by ID.
func (r *Registry) Get(id string) (*Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	return t, ok
}

// Find resolves a free-text name to a canonical team.
// Resolution order: exact normalized match, abbreviation, token overlap.
func (r *Registry) Find(name string) (*Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normName := NormalizeName(name)
	if t, ok := r.byName[normName]; ok {
		return t, true
	}
	if t, ok := r.byAbbrev[normName]; ok {
		return t, true
	}

	// Partial match: either string contains the other.
	for key, t := range r.byName {
		if strings.Contains(key, normName) || strings.Contains(normName, key) {
			return t, true
		}
	}

	// Last resort: any shared token with a canonical name.
	for key, t := range r.byName {
		if TokenOverlap(key, normName) > 0 {
			return t, true
		}
	}

	return nil, false
}

// SameTeam reports whether two free-text names refer to the same team.
// Falls back to raw token overlap when neither name resolves, matching the
// permissive behavior required for un-normalized upstream feeds.
func (r *Registry) SameTeam(a, b string) bool {
	ta, okA := r.Find(a)
	tb, okB := r.Find(b)
	if okA && okB {
		return ta.ID == tb.ID
	}
	return TokenOverlap(a, b) > 0
}

// NormalizeName lowercases a name, strips accents, and collapses spaces.
func NormalizeName(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	name = strings.Join(strings.Fields(name), " ")
	return strings.TrimSpace(name)
}

// Tokens splits a name into normalized word tokens.
func Tokens(name string) []string {
	return strings.Fields(NormalizeName(name))
}

// TokenOverlap counts words shared between two names.
func TokenOverlap(a, b string) int {
	set := make(map[string]bool)
	for _, tok := range Tokens(a) {
		set[tok] = true
	}
	n := 0
	for _, tok := range Tokens(b) {
		if set[tok] {
			n++
			set[tok] = false
		}
	}
	return n
}

// nbaTeams is the canonical NBA registry. Aliases cover the short forms and
// city abbreviations seen in scoreboard and odds feeds.
var nbaTeams = []*Team{
	{ID: "1", Name: "Atlanta Hawks", Abbreviation: "ATL", Aliases: []string{"Hawks"}},
	{ID: "2", Name: "Boston Celtics", Abbreviation: "BOS", Aliases: []string{"Celtics"}},
	{ID: "3", Name: "Brooklyn Nets", Abbreviation: "BKN", Aliases: []string{"Nets"}},
	{ID: "4", Name: "Charlotte Hornets", Abbreviation: "CHA", Aliases: []string{"Hornets"}},
	{ID: "5", Name: "Chicago Bulls", Abbreviation: "CHI", Aliases: []string{"Bulls"}},
	{ID: "6", Name: "Cleveland Cavaliers", Abbreviation: "CLE", Aliases: []string{"Cavaliers", "Cavs"}},
	{ID: "7", Name: "Dallas Mavericks", Abbreviation: "DAL", Aliases: []string{"Mavericks", "Mavs"}},
	{ID: "8", Name: "Denver Nuggets", Abbreviation: "DEN", Aliases: []string{"Nuggets"}},
	{ID: "9", Name: "Detroit Pistons", Abbreviation: "DET", Aliases: []string{"Pistons"}},
	{ID: "10", Name: "Golden State Warriors", Abbreviation: "GSW", Aliases: []string{"Warriors", "Golden State"}},
	{ID: "11", Name: "Houston Rockets", Abbreviation: "HOU", Aliases: []string{"Rockets"}},
	{ID: "12", Name: "Indiana Pacers", Abbreviation: "IND", Aliases: []string{"Pacers"}},
	{ID: "13", Name: "LA Clippers", Abbreviation: "LAC", Aliases: []string{"Clippers", "Los Angeles Clippers"}},
	{ID: "14", Name: "Los Angeles Lakers", Abbreviation: "LAL", Aliases: []string{"Lakers", "LA Lakers"}},
	{ID: "15", Name: "Memphis Grizzlies", Abbreviation: "MEM", Aliases: []string{"Grizzlies"}},
	{ID: "16", Name: "Miami Heat", Abbreviation: "MIA", Aliases: []string{"Heat"}},
	{ID: "17", Name: "Milwaukee Bucks", Abbreviation: "MIL", Aliases: []string{"Bucks"}},
	{ID: "18", Name: "Minnesota Timberwolves", Abbreviation: "MIN", Aliases: []string{"Timberwolves", "Wolves"}},
	{ID: "19", Name: "New Orleans Pelicans", Abbreviation: "NOP", Aliases: []string{"Pelicans"}},
	{ID: "20", Name: "New York Knicks", Abbreviation: "NYK", Aliases: []string{"Knicks"}},
	{ID: "21", Name: "Oklahoma City Thunder", Abbreviation: "OKC", Aliases: []string{"Thunder", "OKC Thunder"}},
	{ID: "22", Name: "Orlando Magic", Abbreviation: "ORL", Aliases: []string{"Magic"}},
	{ID: "23", Name: "Philadelphia 76ers", Abbreviation: "PHI", Aliases: []string{"76ers", "Sixers"}},
	{ID: "24", Name: "Phoenix Suns", Abbreviation: "PHX", Aliases: []string{"Suns"}},
	{ID: "25", Name: "Portland Trail Blazers", Abbreviation: "POR", Aliases: []string{"Trail Blazers", "Blazers"}},
	{ID: "26", Name: "Sacramento Kings", Abbreviation: "SAC", Aliases: []string{"Kings"}},
	{ID: "27", Name: "San Antonio Spurs", Abbreviation: "SAS", Aliases: []string{"Spurs"}},
	{ID: "28", Name: "Toronto Raptors", Abbreviation: "TOR", Aliases: []string{"Raptors"}},
	{ID: "29", Name: "Utah Jazz", Abbreviation: "UTA", Aliases: []string{"Jazz"}},
	{ID: "30", Name: "Washington Wizards", Abbreviation: "WAS", Aliases: []string{"Wizards"}},
}
