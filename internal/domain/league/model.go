package league

import (
	"fmt"
	"sort"
	"time"
)

// League is a private competition between fantasy teams of one season.
type League struct {
	ID          int64
	SeasonID    int64
	Name        string
	InviteCode  string
	OwnerTeamID int64
	CreatedAt   time.Time
}

func (l League) Validate() error {
	if l.SeasonID <= 0 {
		return fmt.Errorf("league season id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.InviteCode == "" {
		return fmt.Errorf("league invite code is required")
	}
	if l.OwnerTeamID <= 0 {
		return fmt.Errorf("league owner team id is required")
	}
	return nil
}

// Member is one team's membership. ID grows with join order.
type Member struct {
	ID       int64
	LeagueID int64
	TeamID   int64
	JoinedAt time.Time
}

// LeaveResult reports what happened to the league after a member left.
type LeaveResult struct {
	LeagueDeleted  bool
	OwnerChanged   bool
	NewOwnerTeamID int64
}

// NextOwner returns the earliest joiner among the members other than leavingTeamID.
func NextOwner(members []Member, leavingTeamID int64) (Member, bool) {
	remaining := make([]Member, 0, len(members))
	for _, m := range members {
		if m.TeamID != leavingTeamID {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		return Member{}, false
	}
	sort.Slice(remaining, func(i, j int) bool {
		if !remaining[i].JoinedAt.Equal(remaining[j].JoinedAt) {
			return remaining[i].JoinedAt.Before(remaining[j].JoinedAt)
		}
		return remaining[i].ID < remaining[j].ID
	})
	return remaining[0], true
}
