package httpapi

import (
	"net/http"
)

func (h *Handler) GetLeagueStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStandings")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryInt(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.standingsSvc.GetTable(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get league standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamSchedule")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryInt(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	schedule, err := h.scheduleService.GetSchedule(ctx, teamID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get team schedule failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, schedule)
}
