package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
)

type AuthHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewAuthHandler(users *service.UserService, l *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

type registerIn struct {
	StudentID string `json:"studentId" binding:"required,len=10,numeric"`
	CitizenID string `json:"citizenId" binding:"required,len=13,numeric"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName"  binding:"required,max=64"`
	Nickname  string `json:"nickname"  binding:"omitempty,max=32"`
	Faculty   string `json:"faculty"   binding:"omitempty,max=64"`
	Year      int    `json:"year"      binding:"omitempty,min=1,max=8"`
	Phone     string `json:"phone"     binding:"omitempty,max=16"`
}

type loginIn struct {
	StudentID string `json:"studentId" binding:"required"`
	Password  string `json:"password"  binding:"required"`
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api, h.log)

	ez.RegisterAction(e, ez.Action[registerIn, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (*service.AuthResult, error) {
			return h.users.Register(c.Request.Context(), service.RegisterInput{
				StudentID: in.StudentID,
				CitizenID: in.CitizenID,
				Password:  in.Password,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Nickname:  in.Nickname,
				Faculty:   in.Faculty,
				Year:      in.Year,
				Phone:     in.Phone,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.AuthResult, error) {
			return h.users.Login(c.Request.Context(), in.StudentID, in.Password)
		},
	})
}
