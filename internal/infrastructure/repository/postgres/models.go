package postgres

import (
	"database/sql"
	"time"
)

type seasonTableModel struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}

type roundTableModel struct {
	ID       int64        `db:"id"`
	SeasonID int64        `db:"season_id"`
	Number   int          `db:"number"`
	StartsAt time.Time    `db:"starts_at"`
	EndsAt   sql.NullTime `db:"ends_at"`
	IsClosed bool         `db:"is_closed"`
}

type playerTableModel struct {
	ID       int64   `db:"id"`
	ClubID   int64   `db:"club_id"`
	Name     string  `db:"name"`
	Position string  `db:"position"`
	Price    float64 `db:"price"`
	Injured  bool    `db:"injured"`
}

type fixtureTableModel struct {
	ID         int64         `db:"id"`
	RoundID    int64         `db:"round_id"`
	HomeClubID int64         `db:"home_club_id"`
	AwayClubID int64         `db:"away_club_id"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	KickoffAt  time.Time     `db:"kickoff_at"`
}

type matchStatTableModel struct {
	PlayerID      int64         `db:"player_id"`
	FixtureID     int64         `db:"fixture_id"`
	ClubID        int64         `db:"club_id"`
	Minutes       int           `db:"minutes"`
	Goals         int           `db:"goals"`
	Assists       int           `db:"assists"`
	Saves         int           `db:"saves"`
	Fouls         int           `db:"fouls"`
	YellowCards   int           `db:"yellow_cards"`
	RedCards      int           `db:"red_cards"`
	CleanSheet    sql.NullInt64 `db:"clean_sheet"`
	GoalsConceded sql.NullInt64 `db:"goals_conceded"`
}

type roundPointsModel struct {
	SeasonID    int64   `db:"season_id"`
	RoundNumber int     `db:"round_number"`
	PlayerID    int64   `db:"player_id"`
	Points      float64 `db:"points"`
}

type roundStatModel struct {
	SeasonID      int64   `db:"season_id"`
	RoundNumber   int     `db:"round_number"`
	PlayerID      int64   `db:"player_id"`
	Appearances   int     `db:"appearances"`
	Minutes       int     `db:"minutes"`
	Goals         int     `db:"goals"`
	Assists       int     `db:"assists"`
	Saves         int     `db:"saves"`
	Fouls         int     `db:"fouls"`
	YellowCards   int     `db:"yellow_cards"`
	RedCards      int     `db:"red_cards"`
	CleanSheets   int     `db:"clean_sheets"`
	GoalsConceded int     `db:"goals_conceded"`
	Points        float64 `db:"points"`
}

type priceMovementModel struct {
	SeasonID    int64   `db:"season_id"`
	RoundNumber int     `db:"round_number"`
	PlayerID    int64   `db:"player_id"`
	PriceBefore float64 `db:"price_before"`
	PriceAfter  float64 `db:"price_after"`
	Delta       float64 `db:"delta"`
	Points      float64 `db:"points"`
}

type priceHistoryInsertModel struct {
	SeasonID    int64     `db:"season_id"`
	RoundNumber int       `db:"round_number"`
	PlayerID    int64     `db:"player_id"`
	Price       float64   `db:"price"`
	Delta       float64   `db:"delta"`
	RecordedAt  time.Time `db:"recorded_at"`
}

type teamTableModel struct {
	ID          int64     `db:"id"`
	SeasonID    int64     `db:"season_id"`
	OwnerUserID string    `db:"owner_user_id"`
	Name        string    `db:"name"`
	BudgetCap   float64   `db:"budget_cap"`
	CreatedAt   time.Time `db:"created_at"`
}

type squadPlayerTableModel struct {
	TeamID      int64   `db:"team_id"`
	PlayerID    int64   `db:"player_id"`
	BoughtPrice float64 `db:"bought_price"`
	BoughtRound int     `db:"bought_round"`
}

type transferTableModel struct {
	ID          int64     `db:"id"`
	TeamID      int64     `db:"team_id"`
	SeasonID    int64     `db:"season_id"`
	RoundNumber int       `db:"round_number"`
	OutPlayerID int64     `db:"out_player_id"`
	InPlayerID  int64     `db:"in_player_id"`
	OutPrice    float64   `db:"out_price"`
	InPrice     float64   `db:"in_price"`
	CreatedAt   time.Time `db:"created_at"`
}

type transferInsertModel struct {
	TeamID      int64     `db:"team_id"`
	SeasonID    int64     `db:"season_id"`
	RoundNumber int       `db:"round_number"`
	OutPlayerID int64     `db:"out_player_id"`
	InPlayerID  int64     `db:"in_player_id"`
	OutPrice    float64   `db:"out_price"`
	InPrice     float64   `db:"in_price"`
	CreatedAt   time.Time `db:"created_at"`
}

type lineupTableModel struct {
	ID            int64         `db:"id"`
	TeamID        int64         `db:"team_id"`
	RoundNumber   int           `db:"round_number"`
	CaptainID     sql.NullInt64 `db:"captain_id"`
	ViceCaptainID sql.NullInt64 `db:"vice_captain_id"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

type lineupSlotModel struct {
	LineupID  int64         `db:"lineup_id"`
	SlotIndex int           `db:"slot_index"`
	PlayerID  sql.NullInt64 `db:"player_id"`
	IsStarter bool          `db:"is_starter"`
	Position  string        `db:"position"`
}

type leagueTableModel struct {
	ID          int64     `db:"id"`
	SeasonID    int64     `db:"season_id"`
	Name        string    `db:"name"`
	InviteCode  string    `db:"invite_code"`
	OwnerTeamID int64     `db:"owner_team_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type leagueMemberTableModel struct {
	ID       int64     `db:"id"`
	LeagueID int64     `db:"league_id"`
	TeamID   int64     `db:"team_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type notificationTableModel struct {
	ID          int64        `db:"id"`
	Kind        string       `db:"kind"`
	SeasonID    int64        `db:"season_id"`
	RoundNumber int          `db:"round_number"`
	Payload     string       `db:"payload"`
	Attempts    int          `db:"attempts"`
	LastError   string       `db:"last_error"`
	CreatedAt   time.Time    `db:"created_at"`
	SentAt      sql.NullTime `db:"sent_at"`
}
