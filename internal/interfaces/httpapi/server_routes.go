package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/timeline", handler.GetMatchTimeline)
	mux.HandleFunc("GET /v1/matches/{matchID}/statistics", handler.GetMatchStatistics)
	mux.HandleFunc("GET /v1/matches/{matchID}/lineups", handler.GetMatchLineups)
}

func registerFeedRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/watched", handler.ListWatchedMatches)
	mux.HandleFunc("POST /v1/matches/{matchID}/watch", handler.WatchMatch)
	mux.HandleFunc("DELETE /v1/matches/{matchID}/watch", handler.UnwatchMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/feed", handler.GetWatchedSnapshot)
	mux.HandleFunc("POST /v1/matches/{matchID}/feed/sessions", handler.CreateFeedSession)
	mux.HandleFunc("GET /v1/feed/sessions/{sessionID}", handler.GetFeedSessionState)
	mux.HandleFunc("POST /v1/feed/sessions/{sessionID}/viewport", handler.ObserveFeedViewport)
	mux.HandleFunc("POST /v1/feed/sessions/{sessionID}/jump", handler.JumpFeedToLive)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings", handler.GetLeagueStandings)
	mux.HandleFunc("GET /v1/teams/{teamID}/schedule", handler.GetTeamSchedule)
}

func registerNewsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/news", handler.ListNews)
	mux.HandleFunc("POST /v1/news/extract", handler.ExtractArticle)
}
