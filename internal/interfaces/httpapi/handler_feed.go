package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-center/internal/domain/viewport"
	"github.com/riskibarqy/match-center/internal/usecase"
)

type viewportObservationRequest struct {
	Offset         float64 `json:"offset" validate:"min=0"`
	ContentHeight  float64 `json:"contentHeight" validate:"gt=0"`
	ViewportHeight float64 `json:"viewportHeight" validate:"gt=0"`
}

func (h *Handler) ListWatchedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWatchedMatches")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string][]int64{"matchIds": h.feedService.WatchedMatches(ctx)})
}

func (h *Handler) WatchMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.WatchMatch")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.feedService.Watch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "watch match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, snapshot)
}

func (h *Handler) UnwatchMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnwatchMatch")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.feedService.Unwatch(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "unwatch match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "unwatched"})
}

func (h *Handler) GetWatchedSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWatchedSnapshot")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.feedService.Snapshot(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshot)
}

func (h *Handler) CreateFeedSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFeedSession")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.feedService.CreateSession(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "create feed session failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, session)
}

func (h *Handler) ObserveFeedViewport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ObserveFeedViewport")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	var req viewportObservationRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.feedService.ObserveViewport(ctx, sessionID, viewport.Observation{
		Offset:         req.Offset,
		ContentHeight:  req.ContentHeight,
		ViewportHeight: req.ViewportHeight,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) JumpFeedToLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JumpFeedToLive")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	state, err := h.feedService.JumpToLive(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) GetFeedSessionState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFeedSessionState")
	defer span.End()

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))

	state, err := h.feedService.SessionState(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}
