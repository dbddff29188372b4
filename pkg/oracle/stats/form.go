package stats

import "time"

// DefaultFormWindow is the trailing-game window used for recent form.
const DefaultFormWindow = 10

// FormFromEvents derives recent form for a team from its schedule events.
// Only completed games count; the streak is measured from the most recent
// game backwards.
func FormFromEvents(events []Event, teamID string, window int) RecentForm {
	if window <= 0 {
		window = DefaultFormWindow
	}

	completed := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Completed && (ev.HomeID == teamID || ev.AwayID == teamID) {
			completed = append(completed, ev)
		}
	}
	if len(completed) > window {
		completed = completed[len(completed)-window:]
	}
	if len(completed) == 0 {
		return NeutralForm()
	}

	var wins, points, allowed int
	streak := 0
	streakType := ""
	for i := len(completed) - 1; i >= 0; i-- {
		ev := completed[i]
		scored, conceded := ev.HomeScore, ev.AwayScore
		if ev.AwayID == teamID {
			scored, conceded = ev.AwayScore, ev.HomeScore
		}
		won := scored > conceded

		if won {
			wins++
		}
		points += scored
		allowed += conceded

		result := "L"
		if won {
			result = "W"
		}
		if streakType == "" {
			streakType = result
		}
		if result == streakType && streak == len(completed)-1-i {
			streak++
		}
	}

	count := len(completed)
	return RecentForm{
		Wins:       wins,
		Losses:     count - wins,
		AvgPoints:  float64(points) / float64(count),
		AvgAllowed: float64(allowed) / float64(count),
		FormScore:  (float64(wins)/float64(count) - 0.5) * 2,
		Streak:     streak,
		StreakType: streakType,
	}
}

// PlayedOn reports whether the team completed a game on the given date.
func PlayedOn(events []Event, teamID, date string) bool {
	for _, ev := range events {
		if ev.Date != date {
			continue
		}
		if !ev.Completed {
			continue
		}
		if ev.HomeID == teamID || ev.AwayID == teamID {
			return true
		}
	}
	return false
}

// BackToBack reports whether the team played the calendar day before
// gameDate (YYYY-MM-DD).
func BackToBack(events []Event, teamID, gameDate string) bool {
	day, err := time.Parse("2006-01-02", gameDate)
	if err != nil {
		return false
	}
	yesterday := day.AddDate(0, 0, -1).Format("2006-01-02")
	return PlayedOn(events, teamID, yesterday)
}
