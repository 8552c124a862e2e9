package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-center/internal/usecase"
)

type extractArticleRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNews")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := queryInt(r, "page", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.newsService.Search(ctx, query, page, pageSize)
	if err != nil {
		h.logger.WarnContext(ctx, "news search failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ExtractArticle(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExtractArticle")
	defer span.End()

	var req extractArticleRequest
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

	result, err := h.articleService.Extract(ctx, req.URL)
	if err != nil {
		h.logger.WarnContext(ctx, "article extraction failed", "url", req.URL, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
