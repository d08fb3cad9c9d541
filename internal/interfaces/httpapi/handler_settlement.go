package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/settlement"
	"github.com/riskibarqy/fantasy-settlement/internal/usecase"
)

type settleRoundRequest struct {
	ApplyPrices       *bool `json:"apply_prices"`
	WritePriceHistory *bool `json:"write_price_history"`
}

type recoverRoundRequest struct {
	Apply             bool    `json:"apply"`
	RecalculatePoints bool    `json:"recalculate_points"`
	TeamIDs           []int64 `json:"team_ids" validate:"omitempty,dive,gt=0"`
}

type closeRoundRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) SettleRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "SettleRound")
	defer span.End()

	roundNumber, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req settleRoundRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	opts := settlement.DefaultOptions()
	if req.ApplyPrices != nil {
		opts.ApplyPrices = *req.ApplyPrices
	}
	if req.WritePriceHistory != nil {
		opts.WritePriceHistory = *req.WritePriceHistory
	}

	report, err := h.settlement.Settle(ctx, int(roundNumber), opts)
	if err != nil {
		h.logger.WarnContext(ctx, "settle round failed", "round", roundNumber, "caller", callerFromContext(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RecoverLineups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "RecoverLineups")
	defer span.End()

	roundNumber, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req recoverRoundRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.recovery.Recover(ctx, usecase.LineupRecoveryInput{
		RoundNumber:       int(roundNumber),
		Apply:             req.Apply,
		RecalculatePoints: req.RecalculatePoints,
		TeamIDs:           req.TeamIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "lineup recovery failed", "round", roundNumber, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) CloseRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "CloseRound")
	defer span.End()

	roundNumber, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req closeRoundRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scheduler.CloseRound(ctx, int(roundNumber), req.Force)
	if err != nil {
		h.logger.WarnContext(ctx, "close round failed", "round", roundNumber, "force", req.Force, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ReopenRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "ReopenRound")
	defer span.End()

	roundNumber, err := pathInt(r, "round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.scheduler.ReopenRound(ctx, int(roundNumber)); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"round_number": roundNumber, "reopened": true})
}

func (h *Handler) RunSchedulerPass(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "RunSchedulerPass")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.scheduler.RunOnce(ctx))
}

func (h *Handler) DispatchNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "DispatchNotifications")
	defer span.End()

	if h.notifier == nil {
		writeError(ctx, w, fmt.Errorf("%w: notification webhook is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	result, err := h.notifier.DispatchPending(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r.Context(), "GetStandings")
	defer span.End()

	leagueID, err := queryInt(r, "league_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	upToRound, err := queryInt(r, "up_to_round")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standings, err := h.standings.Build(ctx, usecase.StandingsInput{LeagueID: leagueID, UpToRound: int(upToRound)})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, standings)
}
