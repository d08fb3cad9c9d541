package league

import "context"

// Repository describes private league persistence needs from use cases.
type Repository interface {
	// Create inserts the league together with the owner's membership.
	Create(ctx context.Context, item League) (League, error)
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	ListMembers(ctx context.Context, leagueID int64) ([]Member, error)
	AddMember(ctx context.Context, member Member) (Member, error)
	// RemoveMember deletes the membership and, atomically, hands ownership to
	// the earliest remaining joiner or deletes the league when nobody is left.
	RemoveMember(ctx context.Context, leagueID, teamID int64) (LeaveResult, error)
}
