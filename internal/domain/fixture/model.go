package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Fixture is one real-world match belonging to a round.
type Fixture struct {
	ID         int64
	RoundID    int64
	HomeClubID int64
	AwayClubID int64
	HomeScore  *int
	AwayScore  *int
	Status     string
	KickoffAt  time.Time
}

// IsFinished reports whether the fixture has a terminal result.
func (f Fixture) IsFinished() bool {
	return IsFinishedStatus(f.Status)
}

// ConcededBy returns the goals the given club conceded in a finished fixture.
// ok is false when the club did not play or the score is not final.
func (f Fixture) ConcededBy(clubID int64) (int, bool) {
	if !f.IsFinished() || f.HomeScore == nil || f.AwayScore == nil {
		return 0, false
	}
	switch clubID {
	case f.HomeClubID:
		return *f.AwayScore, true
	case f.AwayClubID:
		return *f.HomeScore, true
	default:
		return 0, false
	}
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// AllFinished reports whether a round's fixture set is complete.
// An empty set never counts as finished.
func AllFinished(items []Fixture) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsFinished() {
			return false
		}
	}
	return true
}
