package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/domain"
	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
	"orientation-api/pkg/utils"
)

type GroupHandler struct {
	groups *service.GroupService
	auth   gin.HandlerFunc
	gate   gin.HandlerFunc // 报名时间窗，只挂在写操作上
	log    *zap.Logger
}

func NewGroupHandler(groups *service.GroupService, auth, gate gin.HandlerFunc, l *zap.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, auth: auth, gate: gate, log: l}
}

type joinIn struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

type kickIn struct {
	UserID string `json:"userId" binding:"required"`
}

type confirmOut struct {
	GroupID     string `json:"groupId"`
	IsConfirmed bool   `json:"isConfirmed"`
}

type regenerateOut struct {
	NewInviteCode string `json:"newInviteCode"`
}

type inviteCodeOut struct {
	InviteCode string `json:"inviteCode"`
}

func (h *GroupHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/group", h.auth), h.log)
	var gated []gin.HandlerFunc
	if h.gate != nil {
		gated = []gin.HandlerFunc{h.gate}
	}

	ez.RegisterAction(e, ez.Action[struct{}, *service.GroupDetail]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.GroupDetail, error) {
			g, err := h.groups.GetMyGroup(c.Request.Context(), callerID(c))
			if errors.Is(err, domain.ErrNoGroup) {
				return nil, ez.WithStatus(err, http.StatusNotFound)
			}
			return g, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Group]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Group, error) {
			return h.groups.CreateGroupForUser(c.Request.Context(), callerID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[joinIn, *domain.Group]{
		Method:  http.MethodPost,
		Path:    "/join",
		Binder:  ez.BindJSON,
		Auth:    true,
		Message: "Joined group",
		Use:     gated,
		Handler: func(c *gin.Context, in *joinIn) (*domain.Group, error) {
			return h.groups.JoinGroup(c.Request.Context(), callerID(c), in.InviteCode)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Group]{
		Method:  http.MethodPatch,
		Path:    "/leave",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "Left group",
		Use:     gated,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Group, error) {
			return h.groups.LeaveGroup(c.Request.Context(), callerID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[kickIn, Message]{
		Method: http.MethodPost,
		Path:   "/kick",
		Binder: ez.BindJSON,
		Auth:   true,
		Use:    gated,
		Handler: func(c *gin.Context, in *kickIn) (Message, error) {
			if !utils.IsUUID(in.UserID) {
				return Message{}, ez.BadRequest("Invalid user id")
			}
			if err := h.groups.KickMember(c.Request.Context(), callerID(c), in.UserID); err != nil {
				return Message{}, err
			}
			return Message{Message: "Member removed"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, confirmOut]{
		Method: http.MethodPost,
		Path:   "/confirm",
		Binder: ez.BindNone,
		Auth:   true,
		Use:    gated,
		Handler: func(c *gin.Context, _ *struct{}) (confirmOut, error) {
			g, err := h.groups.ConfirmGroup(c.Request.Context(), callerID(c))
			if err != nil {
				return confirmOut{}, err
			}
			return confirmOut{GroupID: g.ID, IsConfirmed: g.IsConfirmed}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, regenerateOut]{
		Method: http.MethodPost,
		Path:   "/invite/regenerate",
		Binder: ez.BindNone,
		Auth:   true,
		Use:    gated,
		Handler: func(c *gin.Context, _ *struct{}) (regenerateOut, error) {
			code, err := h.groups.RegenerateInviteCode(c.Request.Context(), callerID(c))
			return regenerateOut{NewInviteCode: code}, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, inviteCodeOut]{
		Method: http.MethodGet,
		Path:   "/invite-code",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (inviteCodeOut, error) {
			code, err := h.groups.GetInviteCode(c.Request.Context(), callerID(c))
			return inviteCodeOut{InviteCode: code}, err
		},
	})

	ez.RegisterAction(e, ez.Action[domain.HousePreferences, domain.HousePreferences]{
		Method: http.MethodPost,
		Path:   "/house-preferences",
		Binder: ez.BindJSON,
		Auth:   true,
		Use:    gated,
		Handler: func(c *gin.Context, in *domain.HousePreferences) (domain.HousePreferences, error) {
			return h.groups.SetHousePreferences(c.Request.Context(), callerID(c), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.ResolvedPreferences]{
		Method: http.MethodGet,
		Path:   "/house-preferences",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.ResolvedPreferences, error) {
			return h.groups.GetHousePreferences(c.Request.Context(), callerID(c))
		},
	})
}
