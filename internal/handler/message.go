package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lyftr/lyftr/internal/middleware"
	"github.com/lyftr/lyftr/internal/model"
	"github.com/lyftr/lyftr/internal/repository"
)

const (
	defaultListLimit = 50
)

// MessageHandler serves read endpoints over stored messages.
type MessageHandler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(repo *repository.Repository, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		repo:   repo,
		logger: logger,
	}
}

// messagesResponse is the paginated list envelope.
type messagesResponse struct {
	Data   []*model.Message `json:"data"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// List handles GET /messages.
//
// Query parameters: limit (1..100, default 50), offset (>=0, default 0),
// from (exact sender), since (ts >= value), q (case-insensitive text
// search). Parameter violations return 422.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultListLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > repository.MaxListLimit {
			writeDetail(w, http.StatusUnprocessableEntity, "limit must be an integer between 1 and 100")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	filter := repository.ListFilter{
		Limit:  limit,
		Offset: offset,
		From:   query.Get("from"),
		Since:  query.Get("since"),
		Query:  query.Get("q"),
	}

	items, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("message list failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeDetail(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, messagesResponse{
		Data:   items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Stats handles GET /stats.
func (h *MessageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats query failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeDetail(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
