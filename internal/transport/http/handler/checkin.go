package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/domain"
	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
)

type CheckInHandler struct {
	checkins *service.CheckInService
	auth     gin.HandlerFunc
	log      *zap.Logger
}

func NewCheckInHandler(checkins *service.CheckInService, auth gin.HandlerFunc, l *zap.Logger) *CheckInHandler {
	return &CheckInHandler{checkins: checkins, auth: auth, log: l}
}

type activeEventOut struct {
	Active bool                 `json:"active"`
	Event  *service.EventWindow `json:"event"`
}

type preRegisterIn struct {
	Event string `json:"event" binding:"required"`
}

type workshopIn struct {
	Workshop string `json:"workshop" binding:"required"`
	Slot     string `json:"slot"     binding:"required"`
}

func (h *CheckInHandler) MountAPI(api *gin.RouterGroup) {
	checkin := ez.New(api.Group("/checkin", h.auth), h.log)

	ez.RegisterAction(checkin, ez.Action[struct{}, activeEventOut]{
		Method: http.MethodGet,
		Path:   "/event",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (activeEventOut, error) {
			w, ok := h.checkins.ActiveEvent()
			if !ok {
				return activeEventOut{}, nil
			}
			return activeEventOut{Active: true, Event: &w}, nil
		},
	})

	ez.RegisterAction(checkin, ez.Action[preRegisterIn, *domain.CheckIn]{
		Method: http.MethodPost,
		Path:   "/pre-register",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *preRegisterIn) (*domain.CheckIn, error) {
			return h.checkins.PreRegister(c.Request.Context(), callerID(c), in.Event)
		},
	})

	ez.RegisterAction(checkin, ez.Action[struct{}, *domain.CheckIn]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.CheckIn, error) {
			return h.checkins.CheckIn(c.Request.Context(), callerID(c))
		},
	})

	ez.RegisterAction(checkin, ez.Action[struct{}, []domain.CheckIn]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.CheckIn, error) {
			return h.checkins.MyCheckIns(c.Request.Context(), callerID(c))
		},
	})

	workshops := ez.New(api.Group("/workshops", h.auth), h.log)

	ez.RegisterAction(workshops, ez.Action[workshopIn, *domain.WorkshopRegistration]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *workshopIn) (*domain.WorkshopRegistration, error) {
			return h.checkins.RegisterWorkshop(c.Request.Context(), callerID(c), in.Workshop, in.Slot)
		},
	})

	ez.RegisterAction(workshops, ez.Action[struct{}, []domain.WorkshopRegistration]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.WorkshopRegistration, error) {
			return h.checkins.MyWorkshops(c.Request.Context(), callerID(c))
		},
	})
}
