package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"

// ClientConfig configures the stat provider client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration // per-call HTTP timeout
	Retries int           // attempts per call (not counting backoff)
	Rate    rate.Limit    // outbound requests per second
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: defaultBaseURL,
		Timeout: 10 * time.Second,
		Retries: 2,
		Rate:    rate.Limit(5),
	}
}

// Client fetches scoreboards, schedules, and season stats from the public
// scoreboard API. All lookups degrade to league-average defaults rather than
// failing the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retries    int
	limiter    *rate.Limiter
}

// NewClient creates a new stat provider client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	defaults := DefaultClientConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Retries == 0 {
		config.Retries = defaults.Retries
	}
	if config.Rate == 0 {
		config.Rate = defaults.Rate
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		retries:    config.Retries,
		limiter:    rate.NewLimiter(config.Rate, 1),
	}
}

// Scoreboard returns the events for a calendar date (YYYY-MM-DD).
func (c *Client) Scoreboard(ctx context.Context, date string) ([]Event, error) {
	url := c.baseURL + "/scoreboard"
	if date != "" {
		url += "?dates=" + strings.ReplaceAll(date, "-", "")
	}

	var board apiScoreboard
	if err := c.getJSON(ctx, url, &board); err != nil {
		return nil, fmt.Errorf("fetching scoreboard: %w", err)
	}

	events := make([]Event, 0, len(board.Events))
	for _, ev := range board.Events {
		parsed, ok := parseEvent(ev)
		if !ok {
			continue
		}
		events = append(events, parsed)
	}
	return events, nil
}

// FinalScores returns the completed games for a date.
func (c *Client) FinalScores(ctx context.Context, date string) ([]FinalScore, error) {
	events, err := c.Scoreboard(ctx, date)
	if err != nil {
		return nil, err
	}

	finals := make([]FinalScore, 0, len(events))
	for _, ev := range events {
		if ev.State != "post" || !ev.Completed {
			continue
		}
		finals = append(finals, FinalScore{
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			HomeScore: ev.HomeScore,
			AwayScore: ev.AwayScore,
			Final:     true,
		})
	}
	return finals, nil
}

// TeamStats returns the season snapshot for a team. Fields the provider
// omits keep their league-average default.
func (c *Client) TeamStats(ctx context.Context, teamID string) TeamStats {
	snapshot := LeagueAverages()

	var payload apiStatistics
	if err := c.getJSON(ctx, c.baseURL+"/teams/"+teamID+"/statistics", &payload); err != nil {
		return snapshot
	}

	for _, cat := range payload.Results.Stats.Categories {
		for _, s := range cat.Stats {
			if s.Value <= 0 {
				continue
			}
			switch s.Name {
			case "avgPoints":
				snapshot.PPG = s.Value
			case "avgPointsAllowed":
				snapshot.OppPPG = s.Value
			case "pace":
				snapshot.Pace = s.Value
			case "offensiveRating":
				snapshot.OffRating = s.Value
			case "defensiveRating":
				snapshot.DefRating = s.Value
			}
		}
	}

	if wins, losses, ok := c.record(ctx, teamID); ok {
		snapshot.Wins = wins
		snapshot.Losses = losses
	}
	return snapshot
}

// Schedule returns a team's season schedule, oldest first.
func (c *Client) Schedule(ctx context.Context, teamID string) ([]Event, error) {
	var payload apiScoreboard
	if err := c.getJSON(ctx, c.baseURL+"/teams/"+teamID+"/schedule", &payload); err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	events := make([]Event, 0, len(payload.Events))
	for _, ev := range payload.Events {
		parsed, ok := parseEvent(ev)
		if !ok {
			continue
		}
		events = append(events, parsed)
	}
	return events, nil
}

// RecentForm returns the trailing-window form for a team. Missing schedule
// data degrades to NeutralForm.
func (c *Client) RecentForm(ctx context.Context, teamID string, window int) RecentForm {
	events, err := c.Schedule(ctx, teamID)
	if err != nil {
		return NeutralForm()
	}
	return FormFromEvents(events, teamID, window)
}

// record returns the season win-loss record from the team endpoint.
func (c *Client) record(ctx context.Context, teamID string) (int, int, bool) {
	var payload apiTeam
	if err := c.getJSON(ctx, c.baseURL+"/teams/"+teamID, &payload); err != nil {
		return 0, 0, false
	}
	items := payload.Team.Record.Items
	if len(items) == 0 {
		return 0, 0, false
	}

	// Summary is "W-L".
	parts := strings.SplitN(items[0].Summary, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	wins, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	losses, errL := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errL != nil {
		return 0, 0, false
	}
	return wins, losses, true
}

// getJSON performs a GET with bounded retries and jittered backoff.
func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := 200*time.Millisecond + time.Duration(rand.Intn(300))*time.Millisecond
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("provider returned %d", resp.StatusCode)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decoding response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}

// --- provider payload shapes ---

type apiScoreboard struct {
	Events []apiEvent `json:"events"`
}

type apiEvent struct {
	Date         string           `json:"date"`
	Status       apiStatus        `json:"status"`
	Competitions []apiCompetition `json:"competitions"`
}

type apiCompetition struct {
	Status      apiStatus       `json:"status"`
	Competitors []apiCompetitor `json:"competitors"`
}

type apiCompetitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Winner   bool   `json:"winner"`
	Team     struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

type apiStatus struct {
	Type struct {
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
}

type apiStatistics struct {
	Results struct {
		Stats struct {
			Categories []struct {
				Stats []struct {
					Name  string  `json:"name"`
					Value float64 `json:"value"`
				} `json:"stats"`
			} `json:"categories"`
		} `json:"stats"`
	} `json:"results"`
}

type apiTeam struct {
	Team struct {
		Record struct {
			Items []struct {
				Summary string `json:"summary"`
			} `json:"items"`
		} `json:"record"`
	} `json:"team"`
}

func parseEvent(ev apiEvent) (Event, bool) {
	if len(ev.Competitions) == 0 {
		return Event{}, false
	}
	comp := ev.Competitions[0]
	if len(comp.Competitors) < 2 {
		return Event{}, false
	}

	parsed := Event{
		Date:      eventDate(ev.Date),
		State:     ev.Status.Type.State,
		Completed: ev.Status.Type.Completed || comp.Status.Type.Completed,
		TipOff:    ev.Date,
	}
	for _, c := range comp.Competitors {
		score, _ := strconv.Atoi(c.Score)
		if c.HomeAway == "away" {
			parsed.AwayID = c.Team.ID
			parsed.AwayTeam = c.Team.DisplayName
			parsed.AwayScore = score
		} else {
			parsed.HomeID = c.Team.ID
			parsed.HomeTeam = c.Team.DisplayName
			parsed.HomeScore = score
		}
	}
	return parsed, true
}

// eventDate truncates a provider timestamp to its calendar date.
func eventDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
