package memory

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
)

type LeagueRepository struct{ store *Store }

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) (league.League, error) {
	if err := item.Validate(); err != nil {
		return league.League{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.leagues {
		if existing.InviteCode == item.InviteCode {
			return league.League{}, errors.Newf("invite code %q already used", item.InviteCode)
		}
	}
	item.ID = r.store.nextID()
	r.store.leagues[item.ID] = item
	r.store.members = append(r.store.members, league.Member{
		ID:       r.store.nextID(),
		LeagueID: item.ID,
		TeamID:   item.OwnerTeamID,
		JoinedAt: item.CreatedAt,
	})
	return item, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.leagues[leagueID]
	return item, ok, nil
}

func (r *LeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.leagues {
		if item.InviteCode == inviteCode {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID int64) ([]league.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.membersOf(leagueID), nil
}

func (r *LeagueRepository) AddMember(_ context.Context, member league.Member) (league.Member, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.leagues[member.LeagueID]; !ok {
		return league.Member{}, errors.Newf("league %d not found", member.LeagueID)
	}
	for _, existing := range r.store.members {
		if existing.LeagueID == member.LeagueID && existing.TeamID == member.TeamID {
			return existing, nil
		}
	}
	member.ID = r.store.nextID()
	r.store.members = append(r.store.members, member)
	return member, nil
}

func (r *LeagueRepository) RemoveMember(_ context.Context, leagueID, teamID int64) (league.LeaveResult, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.leagues[leagueID]
	if !ok {
		return league.LeaveResult{}, errors.Newf("league %d not found", leagueID)
	}

	members := r.store.membersOf(leagueID)
	kept := r.store.members[:0:0]
	for _, m := range r.store.members {
		if m.LeagueID == leagueID && m.TeamID == teamID {
			continue
		}
		kept = append(kept, m)
	}
	r.store.members = kept

	next, found := league.NextOwner(members, teamID)
	if !found {
		delete(r.store.leagues, leagueID)
		return league.LeaveResult{LeagueDeleted: true}, nil
	}
	if item.OwnerTeamID != teamID {
		return league.LeaveResult{}, nil
	}
	item.OwnerTeamID = next.TeamID
	r.store.leagues[leagueID] = item
	return league.LeaveResult{OwnerChanged: true, NewOwnerTeamID: next.TeamID}, nil
}

// membersOf must be called with mu held.
func (s *Store) membersOf(leagueID int64) []league.Member {
	out := make([]league.Member, 0)
	for _, m := range s.members {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
