package lineup

import "context"

// Repository exposes lineup persistence operations.
type Repository interface {
	GetByTeamAndRound(ctx context.Context, teamID int64, roundNumber int) (Lineup, bool, error)
	ListByTeam(ctx context.Context, teamID int64) ([]Lineup, error)
	ListByRound(ctx context.Context, seasonID int64, roundNumber int) ([]Lineup, error)
	// Save upserts by (team, round) and replaces every slot.
	Save(ctx context.Context, item Lineup) (Lineup, error)
}
