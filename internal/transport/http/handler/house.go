package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/domain"
	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
)

type HouseHandler struct {
	houses *service.HouseService
	auth   gin.HandlerFunc
	log    *zap.Logger
}

func NewHouseHandler(houses *service.HouseService, auth gin.HandlerFunc, l *zap.Logger) *HouseHandler {
	return &HouseHandler{houses: houses, auth: auth, log: l}
}

func (h *HouseHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/houses", h.auth), h.log)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.House]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.House, error) {
			return h.houses.List(c.Request.Context())
		},
	})
}
