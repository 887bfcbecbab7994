package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"orientation-api/internal/core/auth"
	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
	"orientation-api/pkg/utils"
)

type RegisterInput struct {
	StudentID string
	CitizenID string
	Password  string
	FirstName string
	LastName  string
	Nickname  string
	Faculty   string
	Year      int
	Phone     string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UserService struct {
	store  *repo.Store
	groups *GroupService
	jwt    *auth.JWTer
	log    *zap.Logger
}

func NewUserService(store *repo.Store, groups *GroupService, jwter *auth.JWTer, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{store: store, groups: groups, jwt: jwter, log: l}
}

func identityOf(u *domain.User) auth.Identity {
	return auth.Identity{ID: u.ID, StudentID: u.StudentID, CitizenID: u.CitizenID, Role: string(u.Role)}
}

// identityConflict 学号或身份证号已被注册（含已封禁用户）时返回对应错误
func identityConflict(ctx context.Context, st *repo.Store, studentID, citizenID string) error {
	student, citizen, err := st.Users.IdentityTaken(ctx, studentID, citizenID)
	switch {
	case err != nil:
		return err
	case student:
		return domain.ErrStudentIDTaken
	case citizen:
		return domain.ErrCitizenIDTaken
	}
	return nil
}

// Register 建用户并同时建一个单人组，保证注册用户总有组
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		StudentID:    strings.TrimSpace(in.StudentID),
		CitizenID:    strings.TrimSpace(in.CitizenID),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Nickname:     strings.TrimSpace(in.Nickname),
		Faculty:      strings.TrimSpace(in.Faculty),
		Year:         in.Year,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleFreshman,
	}
	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		if err := identityConflict(ctx, tx, u.StudentID, u.CitizenID); err != nil {
			return err
		}
		if err := tx.Users.Create(ctx, u); err != nil {
			return err
		}
		g, err := s.groups.attachSoloGroup(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		u.GroupID = &g.ID
		return nil
	})
	if repo.IsDuplicateKey(err) {
		// 并发注册撞唯一索引；事务已回滚，在事务外重查是哪一个号被占用
		if cerr := identityConflict(ctx, s.store, u.StudentID, u.CitizenID); cerr != nil {
			return nil, cerr
		}
	}
	if err != nil {
		return nil, err
	}
	tok, err := s.jwt.Issue(identityOf(u))
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return &AuthResult{Token: tok, User: u}, nil
}

func (s *UserService) Login(ctx context.Context, studentID, password string) (*AuthResult, error) {
	u, err := s.store.Users.FindByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return nil, err
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !utils.CheckPassword(password, hash) || u == nil {
		return nil, domain.ErrInvalidCredentials
	}
	tok, err := s.jwt.Issue(identityOf(u))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: tok, User: u}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return mustUser(ctx, s.store, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p domain.ProfilePatch) (*domain.User, error) {
	if _, err := mustUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	if err := s.store.Users.UpdateProfile(ctx, userID, p); err != nil {
		return nil, err
	}
	return mustUser(ctx, s.store, userID)
}

func (s *UserService) List(ctx context.Context, offset, limit int, q string, withDeleted bool) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Users.List(ctx, offset, limit, strings.TrimSpace(q), withDeleted)
}

// Ban 软删并释放组内名额，与软删同一事务；返回是否命中
func (s *UserService) Ban(ctx context.Context, userID string) (bool, error) {
	var hit, dissolved bool
	err := s.store.Tx(ctx, func(tx *repo.Store) error {
		u, err := tx.Users.FindByID(ctx, userID)
		if err != nil || u == nil {
			return err
		}
		if dissolved, err = releaseMembership(ctx, tx, u); err != nil {
			return err
		}
		n, err := tx.Users.SoftDelete(ctx, userID)
		hit = n > 0
		return err
	})
	if err != nil {
		return false, err
	}
	if hit {
		s.log.Info("user banned", zap.String("user_id", userID), zap.Bool("group_dissolved", dissolved))
	}
	if dissolved {
		// 解散的组可能释放了志愿计数
		s.groups.houses.Invalidate(ctx)
	}
	return hit, nil
}
