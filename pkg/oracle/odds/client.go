package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL  = "https://api.the-odds-api.com/v4"
	defaultSportKey = "basketball_nba"
)

// ClientConfig configures the market line client.
type ClientConfig struct {
	APIKey   string
	BaseURL  string
	SportKey string
	Timeout  time.Duration
}

// DefaultClientConfig returns default configuration. The API key must be
// supplied by the caller; without one the client returns empty slates.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:  defaultBaseURL,
		SportKey: defaultSportKey,
		Timeout:  10 * time.Second,
	}
}

// Client fetches win and totals markets from the odds API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sportKey   string
	apiKey     string
}

// NewClient creates a new market line client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	defaults := DefaultClientConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.SportKey == "" {
		config.SportKey = defaults.SportKey
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    config.BaseURL,
		sportKey:   config.SportKey,
		apiKey:     config.APIKey,
	}
}

// HasKey reports whether the client is configured with an API key.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// Slate fetches the current slate of market lines. With no API key it
// returns an empty book so callers degrade to model-derived lines.
func (c *Client) Slate(ctx context.Context) (*Book, error) {
	if c.apiKey == "" {
		return NewBook(nil), nil
	}

	url := fmt.Sprintf("%s/sports/%s/odds/?apiKey=%s&regions=us&markets=h2h,totals&oddsFormat=american",
		c.baseURL, c.sportKey, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching odds: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds API returned %d", resp.StatusCode)
	}

	var games []apiGame
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	lines := make([]*MarketLine, 0, len(games))
	for _, g := range games {
		if l := g.toLine(); l != nil {
			lines = append(lines, l)
		}
	}
	return NewBook(lines), nil
}

// --- odds API payload shapes ---

type apiGame struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Price int     `json:"price"`
				Point float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// toLine extracts the first bookmaker's h2h and totals quotes.
func (g apiGame) toLine() *MarketLine {
	var line *MarketLine
	for _, book := range g.Bookmakers {
		for _, mkt := range book.Markets {
			switch mkt.Key {
			case "h2h":
				if line != nil {
					continue
				}
				var homePrice, awayPrice int
				var haveHome, haveAway bool
				for _, o := range mkt.Outcomes {
					if o.Name == g.HomeTeam {
						homePrice, haveHome = o.Price, true
					}
					if o.Name == g.AwayTeam {
						awayPrice, haveAway = o.Price, true
					}
				}
				if haveHome && haveAway {
					line = LineFromPrices(g.HomeTeam, g.AwayTeam, homePrice, awayPrice)
				}
			case "totals":
				if line == nil || line.HasTotal {
					continue
				}
				for _, o := range mkt.Outcomes {
					if o.Name == "Over" && o.Point > 0 {
						line.Total = decimal.NewFromFloat(o.Point)
						line.HasTotal = true
						break
					}
				}
			}
		}
		if line != nil && line.HasTotal {
			break
		}
	}
	return line
}
