package fantasy

import "context"

// Repository describes fantasy team persistence needs from use cases.
type Repository interface {
	GetTeam(ctx context.Context, teamID int64) (Team, bool, error)
	ListTeams(ctx context.Context, seasonID int64) ([]Team, error)
	ListSquad(ctx context.Context, teamID int64) ([]SquadPlayer, error)
	ListTransfers(ctx context.Context, teamID int64) ([]Transfer, error)
	CountTransfers(ctx context.Context, teamID int64, roundNumber int) (int, error)
	// ApplyTransfer swaps the squad row and records the transfer atomically.
	ApplyTransfer(ctx context.Context, transfer Transfer) (Transfer, error)
}
