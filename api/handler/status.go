package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/api/transport"
	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/pkg/httpcontext"
	statusUC "github.com/fastygo/carecircle/usecase/status"
)

type StatusHandler struct {
	baseHandler
	uc *statusUC.UseCase
}

func NewStatusHandler(uc *statusUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Share a mood check-in with a group
// @Tags statuses
// @Router /api/v1/groups/{id}/statuses [post]
func (h *StatusHandler) CreateEntry(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.StatusEntryRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entry, err := h.uc.CreateEntry(stdCtx, userID, &domain.StatusEntry{
		GroupID:  pathParam(ctx, "id"),
		Moods:    req.Moods,
		Feelings: req.Feelings,
		Note:     req.Note,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, entry)
}

// @Summary List the caller's check-ins
// @Tags statuses
// @Router /api/v1/statuses [get]
func (h *StatusHandler) ListMine(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	limit := parseInt(queryString(ctx, "limit"), 50)
	offset := parseInt(queryString(ctx, "offset"), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.ListMine(stdCtx, userID, limit, offset)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, entries, transport.ListMeta{Count: len(entries), Limit: limit, Offset: offset})
}
