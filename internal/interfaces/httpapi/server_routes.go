package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return RequireAdminToken(cfg.AdminToken, RateLimit(cfg.Limiter, fn))
	}

	mux.Handle("POST /v1/admin/rounds/{round}/settle", admin(handler.SettleRound))
	mux.Handle("POST /v1/admin/rounds/{round}/recover", admin(handler.RecoverLineups))
	mux.Handle("POST /v1/admin/rounds/{round}/close", admin(handler.CloseRound))
	mux.Handle("POST /v1/admin/rounds/{round}/reopen", admin(handler.ReopenRound))
	mux.Handle("POST /v1/admin/scheduler/run", admin(handler.RunSchedulerPass))
	mux.Handle("POST /v1/admin/notifications/dispatch", admin(handler.DispatchNotifications))
	mux.Handle("GET /v1/admin/standings", admin(handler.GetStandings))

	mux.Handle("POST /v1/admin/validate/squad", admin(handler.ValidateSquad))
	mux.Handle("POST /v1/admin/validate/lineup", admin(handler.ValidateLineup))
	mux.Handle("POST /v1/admin/validate/transfer", admin(handler.ValidateTransfer))
	mux.Handle("POST /v1/admin/transfers", admin(handler.ExecuteTransfer))

	mux.Handle("POST /v1/admin/leagues", admin(handler.CreateLeague))
	mux.Handle("POST /v1/admin/leagues/join", admin(handler.JoinLeague))
	mux.Handle("DELETE /v1/admin/leagues/{leagueID}/members/{teamID}", admin(handler.LeaveLeague))
}
