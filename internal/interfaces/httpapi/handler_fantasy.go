package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/fantasy"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/league"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

type validateSquadRequest struct {
	PlayerIDs []int64 `json:"player_ids" validate:"required,min=1,dive,gt=0"`
	BudgetCap float64 `json:"budget_cap" validate:"gt=0"`
}

type lineupSlotRequest struct {
	Index     int   `json:"index" validate:"gte=0"`
	PlayerID  int64 `json:"player_id" validate:"gt=0"`
	IsStarter bool  `json:"is_starter"`
}

type validateLineupRequest struct {
	TeamID        int64               `json:"team_id" validate:"required,gt=0"`
	Slots         []lineupSlotRequest `json:"slots" validate:"required,min=1,dive"`
	CaptainID     int64               `json:"captain_id" validate:"gte=0"`
	ViceCaptainID int64               `json:"vice_captain_id" validate:"gte=0"`
}

type transferRequest struct {
	TeamID      int64   `json:"team_id" validate:"required,gt=0"`
	RoundNumber int     `json:"round_number" validate:"required,gt=0"`
	OutPlayerID int64   `json:"out_player_id" validate:"required,gt=0"`
	InPlayerID  int64   `json:"in_player_id" validate:"required,gt=0,nefield=OutPlayerID"`
	BudgetCap   float64 `json:"budget_cap" validate:"gte=0"`
}

type createLeagueRequest struct {
	TeamID int64  `json:"team_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=64"`
}

type joinLeagueRequest struct {
	TeamID     int64  `json:"team_id" validate:"required,gt=0"`
	InviteCode string `json:"invite_code" validate:"required,alphanum,max=16"`
}

type violationsDTO struct {
	Valid      bool                `json:"valid"`
	Violations []fantasy.Violation `json:"violations"`
}

type leagueDTO struct {
	ID          int64     `json:"id"`
	SeasonID    int64     `json:"season_id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	OwnerTeamID int64     `json:"owner_team_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type transferDTO struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	SeasonID    int64     `json:"season_id"`
	RoundNumber int       `json:"round_number"`
	OutPlayerID int64     `json:"out_player_id"`
	InPlayerID  int64     `json:"in_player_id"`
	OutPrice    float64   `json:"out_price"`
	InPrice     float64   `json:"in_price"`
	CreatedAt   time.Time `json:"created_at"`
}

type transferResultDTO struct {
	violationsDTO
	Transfer *transferDTO `json:"transfer,omitempty"`
}

type leaveLeagueDTO struct {
	LeagueID       int64 `json:"league_id"`
	TeamID         int64 `json:"team_id"`
	LeagueDeleted  bool  `json:"league_deleted"`
	OwnerChanged   bool  `json:"owner_changed"`
	NewOwnerTeamID int64 `json:"new_owner_team_id,omitempty"`
}

func newViolationsDTO(violations []fantasy.Violation) violationsDTO {
	if violations == nil {
		violations = []fantasy.Violation{}
	}
	return violationsDTO{Valid: len(violations) == 0, Violations: violations}
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:          l.ID,
		SeasonID:    l.SeasonID,
		Name:        l.Name,
		InviteCode:  l.InviteCode,
		OwnerTeamID: l.OwnerTeamID,
		CreatedAt:   l.CreatedAt,
	}
}

func (req transferRequest) toInput() usecase.TransferValidationInput {
	return usecase.TransferValidationInput{
		TeamID:      req.TeamID,
		RoundNumber: req.RoundNumber,
		OutPlayerID: req.OutPlayerID,
		InPlayerID:  req.InPlayerID,
		BudgetCap:   req.BudgetCap,
	}
}

func (h *Handler) ValidateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ValidateSquad")
	defer span.End()

	var req validateSquadRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	violations, err := h.validation.ValidateSquad(ctx, usecase.SquadValidationInput{
		PlayerIDs: req.PlayerIDs,
		BudgetCap: req.BudgetCap,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, newViolationsDTO(violations))
}

func (h *Handler) ValidateLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ValidateLineup")
	defer span.End()

	var req validateLineupRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	slots := make([]lineup.Slot, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, lineup.Slot{Index: s.Index, PlayerID: s.PlayerID, IsStarter: s.IsStarter})
	}

	violations, err := h.validation.ValidateLineup(ctx, usecase.LineupValidationInput{
		TeamID:        req.TeamID,
		Slots:         slots,
		CaptainID:     req.CaptainID,
		ViceCaptainID: req.ViceCaptainID,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, newViolationsDTO(violations))
}

func (h *Handler) ValidateTransfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ValidateTransfer")
	defer span.End()

	var req transferRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	violations, err := h.validation.ValidateTransfer(ctx, req.toInput())
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, newViolationsDTO(violations))
}

func (h *Handler) ExecuteTransfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ExecuteTransfer")
	defer span.End()

	var req transferRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	result, err := h.validation.ExecuteTransfer(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "execute transfer failed", "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := transferResultDTO{violationsDTO: newViolationsDTO(result.Violations)}
	status := http.StatusUnprocessableEntity
	if t := result.Transfer; t != nil {
		status = http.StatusCreated
		resp.Transfer = &transferDTO{
			ID:          t.ID,
			TeamID:      t.TeamID,
			SeasonID:    t.SeasonID,
			RoundNumber: t.RoundNumber,
			OutPlayerID: t.OutPlayerID,
			InPlayerID:  t.InPlayerID,
			OutPrice:    t.OutPrice,
			InPrice:     t.InPrice,
			CreatedAt:   t.CreatedAt,
		}
	}
	writeSuccess(ctx, w, status, resp)
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "CreateLeague")
	defer span.End()

	var req createLeagueRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.leagues.Create(ctx, usecase.CreateLeagueInput{TeamID: req.TeamID, Name: req.Name})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(item))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "JoinLeague")
	defer span.End()

	var req joinLeagueRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.leagues.Join(ctx, usecase.JoinLeagueInput{TeamID: req.TeamID, InviteCode: req.InviteCode})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) LeaveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "LeaveLeague")
	defer span.End()

	leagueID, err := pathInt(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamID, err := pathInt(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.leagues.Leave(ctx, leagueID, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaveLeagueDTO{
		LeagueID:       leagueID,
		TeamID:         teamID,
		LeagueDeleted:  result.LeagueDeleted,
		OwnerChanged:   result.OwnerChanged,
		NewOwnerTeamID: result.NewOwnerTeamID,
	})
}
