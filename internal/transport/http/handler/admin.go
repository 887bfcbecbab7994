package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/domain"
	"orientation-api/internal/service"
	"orientation-api/internal/transport/http/ez"
	"orientation-api/pkg/utils"
)

// AdminHandler 管理端接口；分组已走 AuthJWT("STAFF")
type AdminHandler struct {
	users      *service.UserService
	groups     *service.GroupService
	houses     *service.HouseService
	reconciler *service.Reconciler
	log        *zap.Logger
}

func NewAdminHandler(users *service.UserService, groups *service.GroupService, houses *service.HouseService,
	reconciler *service.Reconciler, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, groups: groups, houses: houses, reconciler: reconciler, log: l}
}

type page[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}

type listUsersQ struct {
	Offset      int    `form:"offset,default=0"`
	Limit       int    `form:"limit,default=20"`
	Q           string `form:"q"`           // 按学号/姓名模糊搜
	WithDeleted bool   `form:"withDeleted"` // 是否包含已封禁
}

type listGroupsQ struct {
	Offset    int   `form:"offset,default=0"`
	Limit     int   `form:"limit,default=20"`
	Confirmed *bool `form:"confirmed"`
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type houseIn struct {
	ID            string `json:"id"`
	NameTh        string `json:"nameTh"        binding:"required,max=128"`
	NameEn        string `json:"nameEn"        binding:"required,max=128"`
	DescriptionTh string `json:"descriptionTh"`
	DescriptionEn string `json:"descriptionEn"`
	SizeClass     string `json:"sizeClass"     binding:"omitempty,oneof=S M L XL XXL"`
	Capacity      int    `json:"capacity"      binding:"min=0"`
}

type upsertHousesIn struct {
	Houses []houseIn `json:"houses" binding:"required,min=1,dive"`
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, h.log)

	// --- GET /admin/v1/users  用户列表 ---
	ez.RegisterAction(e, ez.Action[listUsersQ, page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersQ) (page[domain.User], error) {
			us, total, err := h.users.List(c.Request.Context(), in.Offset, in.Limit, in.Q, in.WithDeleted)
			return page[domain.User]{Total: total, Items: us}, err
		},
	})

	// --- POST /admin/v1/users/:id/ban  封禁（软删） ---
	ez.RegisterAction(e, ez.Action[idURI, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if !utils.IsUUID(in.ID) {
				return nil, ez.BadRequest("Invalid user id")
			}
			ok, err := h.users.Ban(c.Request.Context(), in.ID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ez.NotFound("user not found")
			}
			return gin.H{"id": in.ID}, nil
		},
	})

	// --- PUT /admin/v1/houses  导入/更新房屋目录 ---
	ez.RegisterAction(e, ez.Action[upsertHousesIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/houses",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *upsertHousesIn) (gin.H, error) {
			houses := make([]domain.House, 0, len(in.Houses))
			for _, x := range in.Houses {
				id := strings.TrimSpace(x.ID)
				if id == "" {
					id = utils.NewID()
				} else if !utils.IsUUID(id) {
					return nil, ez.BadRequest("Invalid house id")
				}
				houses = append(houses, domain.House{
					ID:            id,
					NameTh:        x.NameTh,
					NameEn:        x.NameEn,
					DescriptionTh: x.DescriptionTh,
					DescriptionEn: x.DescriptionEn,
					SizeClass:     x.SizeClass,
					Capacity:      x.Capacity,
				})
			}
			if err := h.houses.Upsert(c.Request.Context(), houses); err != nil {
				return nil, err
			}
			return gin.H{"upserted": len(houses)}, nil
		},
	})

	// --- GET /admin/v1/groups  组列表 ---
	ez.RegisterAction(e, ez.Action[listGroupsQ, page[domain.Group]]{
		Method: http.MethodGet,
		Path:   "/groups",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listGroupsQ) (page[domain.Group], error) {
			gs, total, err := h.groups.List(c.Request.Context(), in.Offset, in.Limit, in.Confirmed)
			return page[domain.Group]{Total: total, Items: gs}, err
		},
	})

	// --- POST /admin/v1/reconcile  手动对账 ---
	ez.RegisterAction(e, ez.Action[struct{}, service.ReconcileReport]{
		Method: http.MethodPost,
		Path:   "/reconcile",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.ReconcileReport, error) {
			return h.reconciler.Reconcile(c.Request.Context())
		},
	})
}
