package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/api/transport"
	"github.com/fastygo/carecircle/pkg/httpcontext"
	groupUC "github.com/fastygo/carecircle/usecase/group"
)

type GroupHandler struct {
	baseHandler
	uc *groupUC.UseCase
}

func NewGroupHandler(uc *groupUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create a group owned by the caller
// @Tags groups
// @Router /api/v1/groups [post]
func (h *GroupHandler) CreateGroup(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.GroupCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	group, err := h.uc.CreateGroup(stdCtx, userID, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, group)
}

// @Summary List the caller's groups
// @Tags groups
// @Router /api/v1/groups [get]
func (h *GroupHandler) ListGroups(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	groups, err := h.uc.ListGroups(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, groups, transport.ListMeta{Count: len(groups)})
}

// @Summary Get a group
// @Tags groups
// @Router /api/v1/groups/{id} [get]
func (h *GroupHandler) GetGroup(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	group, err := h.uc.GetGroup(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, group)
}

// @Summary Join a group by invite code
// @Tags groups
// @Router /api/v1/groups/join [post]
func (h *GroupHandler) JoinGroup(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.GroupJoinRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	membership, err := h.uc.JoinGroup(stdCtx, userID, req.InviteCode, req.Role)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, membership)
}

// @Summary Leave a group
// @Tags groups
// @Router /api/v1/groups/{id}/members/me [delete]
func (h *GroupHandler) LeaveGroup(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.LeaveGroup(stdCtx, userID, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary List group members
// @Tags groups
// @Router /api/v1/groups/{id}/members [get]
func (h *GroupHandler) Members(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	members, err := h.uc.Members(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, members, transport.ListMeta{Count: len(members)})
}
