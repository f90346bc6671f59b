package handler

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/api/transport"
	"github.com/fastygo/carecircle/pkg/feed"
	"github.com/fastygo/carecircle/pkg/httpcontext"
	activityUC "github.com/fastygo/carecircle/usecase/activity"
)

type FeedHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewFeedHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Group activity feed, newest first
// @Tags feed
// @Param timeFilter query string false "all|today|week|month"
// @Param activityFilter query string false "all|mood|task"
// @Param userID query string false "restrict to one member"
// @Param since query string false "RFC3339 lower bound, overrides timeFilter"
// @Param limit query int false "default 50, max 100"
// @Router /api/v1/groups/{id}/feed [get]
func (h *FeedHandler) GetFeed(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	query := activityUC.Query{
		GroupID:  pathParam(ctx, "id"),
		UserID:   queryString(ctx, "userID"),
		Time:     feed.ParseTimeFilter(queryString(ctx, "timeFilter")),
		Activity: feed.ParseActivityFilter(queryString(ctx, "activityFilter")),
		Limit:    parseInt(queryString(ctx, "limit"), 0),
	}
	if raw := queryString(ctx, "since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.respondInvalid(ctx, "since must be RFC3339")
			return
		}
		query.Since = since
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.Feed(stdCtx, userID, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, items, transport.ListMeta{Count: len(items), Limit: query.Limit})
}
