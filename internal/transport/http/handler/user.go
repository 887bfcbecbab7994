package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/domain"
	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
)

type UserHandler struct {
	users *service.UserService
	auth  gin.HandlerFunc
	log   *zap.Logger
}

func NewUserHandler(users *service.UserService, auth gin.HandlerFunc, l *zap.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, log: l}
}

type profileIn struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=64"`
	LastName  *string `json:"lastName"  binding:"omitempty,min=1,max=64"`
	Nickname  *string `json:"nickname"  binding:"omitempty,max=32"`
	Faculty   *string `json:"faculty"   binding:"omitempty,max=64"`
	Year      *int    `json:"year"      binding:"omitempty,min=1,max=8"`
	Phone     *string `json:"phone"     binding:"omitempty,max=16"`
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/user", h.auth), h.log)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Me(c.Request.Context(), callerID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[profileIn, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (*domain.User, error) {
			return h.users.UpdateProfile(c.Request.Context(), callerID(c), domain.ProfilePatch{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Nickname:  in.Nickname,
				Faculty:   in.Faculty,
				Year:      in.Year,
				Phone:     in.Phone,
			})
		},
	})
}
