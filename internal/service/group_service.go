package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"orientation-api/internal/core/events"
	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
	"orientation-api/pkg/utils"
)

// 所有组相关的业务错误，用于指标分类
var groupRuleErrors = []error{
	domain.ErrUserNotFound, domain.ErrNoGroup, domain.ErrAlreadyOwner, domain.ErrInvalidCode,
	domain.ErrGroupConfirmed, domain.ErrGroupFull, domain.ErrAlreadyInGroup, domain.ErrSelfJoin,
	domain.ErrOwnerCannotLeave, domain.ErrNotOwner, domain.ErrNotAMember, domain.ErrCannotKickSelf,
	domain.ErrAlreadyConfirmed, domain.ErrInvalidHouseID, domain.ErrDuplicateRank,
}

type GroupService struct {
	store  *repo.Store
	codes  *InviteCodeGenerator
	houses *HouseService
	pub    events.Publisher
	log    *zap.Logger
}

func NewGroupService(store *repo.Store, codes *InviteCodeGenerator, houses *HouseService, pub events.Publisher, l *zap.Logger) *GroupService {
	if pub == nil {
		pub = events.Nop{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &GroupService{store: store, codes: codes, houses: houses, pub: pub, log: l}
}

// GroupDetail GET /group 的返回：组 + 成员公开资料 + 解析后的志愿
type GroupDetail struct {
	*domain.Group
	Owner   *domain.Member      `json:"owner"`
	Members []domain.Member     `json:"members"`
	Houses  ResolvedPreferences `json:"houses"`
}

func newGroupDetail(g *domain.Group, houses ResolvedPreferences) *GroupDetail {
	d := &GroupDetail{Members: make([]domain.Member, 0, len(g.Members)), Houses: houses}
	if g.Owner != nil {
		m := g.Owner.AsMember()
		d.Owner = &m
	}
	for i := range g.Members {
		d.Members = append(d.Members, g.Members[i].AsMember())
	}
	// 完整 User 行不随组一起输出
	g.Owner, g.Members = nil, nil
	d.Group = g
	return d
}

// ---------- 事务内的组合步骤 ----------

// attachSoloGroup 新建仅含 userID 的组并把用户挂上去
func (s *GroupService) attachSoloGroup(ctx context.Context, tx *repo.Store, userID string) (*domain.Group, error) {
	code, err := s.codes.Generate(ctx, tx.Groups)
	if err != nil {
		return nil, err
	}
	g := &domain.Group{
		ID:          utils.NewID(),
		OwnerID:     userID,
		InviteCode:  code,
		MemberCount: 1,
	}
	if err := tx.Groups.Create(ctx, g); err != nil {
		return nil, err
	}
	if err := tx.Users.SetGroup(ctx, userID, &g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// detach 清空成员的 group_id 并把原组人数减一
func detach(ctx context.Context, tx *repo.Store, userID, groupID string) error {
	if err := tx.Users.SetGroup(ctx, userID, nil); err != nil {
		return err
	}
	return tx.Groups.RemoveMember(ctx, groupID)
}

// dissolve 删除组：释放志愿计数、清空成员，再删行
func dissolve(ctx context.Context, tx *repo.Store, g *domain.Group) error {
	if delta := domain.ChosenCountDelta(g.Preferences(), domain.HousePreferences{}); len(delta) > 0 {
		if err := tx.Houses.AdjustChosenCounts(ctx, delta); err != nil {
			return err
		}
	}
	if err := tx.Users.DetachAll(ctx, g.ID); err != nil {
		return err
	}
	return tx.Groups.Delete(ctx, g.ID)
}

// releaseMembership 把 u 从所在组中移出且不再给他建新组（封禁用）。
// 组长被移出时组交给最早注册的成员；组里只剩他一人则解散。返回是否解散了组。
func releaseMembership(ctx context.Context, tx *repo.Store, u *domain.User) (bool, error) {
	if u.GroupID == nil {
		return false, nil
	}
	g, err := tx.Groups.FindByIDForUpdate(ctx, *u.GroupID)
	if err != nil || g == nil {
		return false, err
	}
	if g.OwnerID != u.ID {
		return false, detach(ctx, tx, u.ID, g.ID)
	}
	members, err := tx.Users.ListByGroup(ctx, g.ID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.ID == u.ID {
			continue
		}
		if err := tx.Groups.SetOwner(ctx, g.ID, m.ID); err != nil {
			return false, err
		}
		return false, detach(ctx, tx, u.ID, g.ID)
	}
	return true, dissolve(ctx, tx, g)
}

func mustUser(ctx context.Context, tx *repo.Store, userID string) (*domain.User, error) {
	u, err := tx.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// currentGroup 用户当前所在组；没有则 ErrNoGroup
func currentGroup(ctx context.Context, tx *repo.Store, u *domain.User) (*domain.Group, error) {
	if u.GroupID == nil {
		return nil, domain.ErrNoGroup
	}
	g, err := tx.Groups.FindByID(ctx, *u.GroupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNoGroup
	}
	return g, nil
}

// ownedGroup 用户作为组长的组；没有则 ErrNotOwner
func ownedGroup(ctx context.Context, tx *repo.Store, userID string) (*domain.Group, error) {
	g, err := tx.Groups.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotOwner
	}
	return g, nil
}

// ---------- 对外操作 ----------

func (s *GroupService) GetMyGroup(ctx context.Context, userID string) (*GroupDetail, error) {
	u, err := mustUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	if u.GroupID == nil {
		return nil, domain.ErrNoGroup
	}
	g, err := s.store.Groups.FindDetailed(ctx, *u.GroupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNoGroup
	}
	resolved, err := s.houses.Resolve(ctx, g.Preferences())
	if err != nil {
		return nil, err
	}
	return newGroupDetail(g, resolved), nil
}

func (s *GroupService) CreateGroupForUser(ctx context.Context, userID string) (g *domain.Group, err error) {
	defer func() { observe("create", err, groupRuleErrors...) }()

	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		u, err := mustUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		owned, err := tx.Groups.FindByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if owned != nil {
			return domain.ErrAlreadyOwner
		}
		if u.GroupID != nil {
			cur, err := tx.Groups.FindByID(ctx, *u.GroupID)
			if err != nil {
				return err
			}
			if cur != nil {
				if cur.IsConfirmed {
					return domain.ErrGroupConfirmed
				}
				if err := detach(ctx, tx, userID, cur.ID); err != nil {
					return err
				}
			}
		}
		g, err = s.attachSoloGroup(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("group created", zap.String("group_id", g.ID), zap.String("owner_id", userID))
	return g, nil
}

func (s *GroupService) JoinGroup(ctx context.Context, userID, inviteCode string) (joined *domain.Group, err error) {
	defer func() { observe("join", err, groupRuleErrors...) }()

	code := NormalizeInviteCode(inviteCode)
	if !IsValidInviteCode(code) {
		return nil, domain.ErrInvalidCode
	}

	dissolved := false
	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		u, err := mustUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		target, err := tx.Groups.FindByInviteCode(ctx, code)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrInvalidCode
		}
		if target.IsConfirmed {
			return domain.ErrGroupConfirmed
		}
		if target.IsFull() {
			return domain.ErrGroupFull
		}
		if target.OwnerID == userID {
			return domain.ErrSelfJoin
		}

		// 只有"自己一个人的未确认组"可以直接解散后加入；否则必须先退出
		var solo *domain.Group
		if u.GroupID != nil {
			if *u.GroupID == target.ID {
				return domain.ErrAlreadyInGroup
			}
			cur, err := tx.Groups.FindByID(ctx, *u.GroupID)
			if err != nil {
				return err
			}
			if cur != nil {
				if cur.OwnerID != userID || cur.MemberCount > 1 || cur.IsConfirmed {
					return domain.ErrAlreadyInGroup
				}
				solo = cur
			}
		}

		ok, err := tx.Groups.AddMember(ctx, target.ID)
		if err != nil {
			return err
		}
		if !ok {
			// 条件更新失败：并发下被确认或被占满
			latest, err := tx.Groups.FindByID(ctx, target.ID)
			if err != nil {
				return err
			}
			if latest != nil && latest.IsConfirmed {
				return domain.ErrGroupConfirmed
			}
			return domain.ErrGroupFull
		}
		if solo != nil {
			if err := dissolve(ctx, tx, solo); err != nil {
				return err
			}
			dissolved = true
		}
		if err := tx.Users.SetGroup(ctx, userID, &target.ID); err != nil {
			return err
		}
		joined, err = tx.Groups.FindByID(ctx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("group joined", zap.String("group_id", joined.ID), zap.String("user_id", userID))
	if dissolved {
		// 解散的单人组可能释放了志愿计数
		s.houses.Invalidate(ctx)
	}
	return joined, nil
}

// LeaveGroup 成员退出后立即获得一个新的单人组
func (s *GroupService) LeaveGroup(ctx context.Context, userID string) (solo *domain.Group, err error) {
	defer func() { observe("leave", err, groupRuleErrors...) }()

	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		u, err := mustUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		g, err := currentGroup(ctx, tx, u)
		if err != nil {
			return err
		}
		if g.IsConfirmed {
			return domain.ErrGroupConfirmed
		}
		if g.OwnerID == userID {
			return domain.ErrOwnerCannotLeave
		}
		if err := detach(ctx, tx, userID, g.ID); err != nil {
			return err
		}
		solo, err = s.attachSoloGroup(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("group left", zap.String("user_id", userID), zap.String("new_group_id", solo.ID))
	return solo, nil
}

func (s *GroupService) KickMember(ctx context.Context, ownerID, memberID string) (err error) {
	defer func() { observe("kick", err, groupRuleErrors...) }()

	var groupID string
	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		g, err := ownedGroup(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if g.IsConfirmed {
			return domain.ErrGroupConfirmed
		}
		if memberID == ownerID {
			return domain.ErrCannotKickSelf
		}
		m, err := tx.Users.FindByID(ctx, memberID)
		if err != nil {
			return err
		}
		if m == nil || m.GroupID == nil {
			return domain.ErrNotAMember
		}
		if *m.GroupID != g.ID {
			return domain.ErrNotOwner
		}
		if err := detach(ctx, tx, memberID, g.ID); err != nil {
			return err
		}
		groupID = g.ID
		_, err = s.attachSoloGroup(ctx, tx, memberID)
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("group member kicked", zap.String("group_id", groupID), zap.String("member_id", memberID))
	return nil
}

func (s *GroupService) ConfirmGroup(ctx context.Context, userID string) (g *domain.Group, err error) {
	defer func() { observe("confirm", err, groupRuleErrors...) }()

	var members []domain.User
	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		found, err := ownedGroup(ctx, tx, userID)
		if err != nil {
			return err
		}
		if found.IsConfirmed {
			return domain.ErrAlreadyConfirmed
		}
		ok, err := tx.Groups.Confirm(ctx, found.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyConfirmed
		}
		found.IsConfirmed = true
		g = found
		members, err = tx.Users.ListByGroup(ctx, found.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := events.GroupConfirmedEvent{
		GroupID:     g.ID,
		OwnerID:     g.OwnerID,
		HouseRanks:  g.Preferences().Slots(),
		ConfirmedAt: time.Now().UTC(),
	}
	for _, m := range members {
		ev.MemberIDs = append(ev.MemberIDs, m.ID)
	}
	// 已提交，发布失败只记日志
	if perr := s.pub.Publish(ctx, events.QueueGroupConfirmed, ev); perr != nil {
		s.log.Warn("publish group.confirmed failed", zap.String("group_id", g.ID), zap.Error(perr))
	}
	s.log.Info("group confirmed", zap.String("group_id", g.ID))
	return g, nil
}

func (s *GroupService) RegenerateInviteCode(ctx context.Context, userID string) (code string, err error) {
	defer func() { observe("regenerate_code", err, groupRuleErrors...) }()

	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		g, err := ownedGroup(ctx, tx, userID)
		if err != nil {
			return err
		}
		if g.IsConfirmed {
			return domain.ErrGroupConfirmed
		}
		code, err = s.codes.Generate(ctx, tx.Groups)
		if err != nil {
			return err
		}
		return tx.Groups.UpdateInviteCode(ctx, g.ID, code)
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *GroupService) GetInviteCode(ctx context.Context, userID string) (string, error) {
	u, err := mustUser(ctx, s.store, userID)
	if err != nil {
		return "", err
	}
	g, err := currentGroup(ctx, s.store, u)
	if err != nil {
		return "", err
	}
	return g.InviteCode, nil
}

// SetHousePreferences 旧志愿逐槽减、新志愿逐槽加，与写入槽位同一事务
func (s *GroupService) SetHousePreferences(ctx context.Context, userID string, prefs domain.HousePreferences) (out domain.HousePreferences, err error) {
	defer func() { observe("set_preferences", err, groupRuleErrors...) }()

	prefs = prefs.Normalize()
	// 格式校验在任何查询之前
	if err = prefs.Validate(); err != nil {
		return domain.HousePreferences{}, err
	}
	err = s.store.Tx(ctx, func(tx *repo.Store) error {
		owned, err := ownedGroup(ctx, tx, userID)
		if err != nil {
			return err
		}
		g, err := tx.Groups.FindByIDForUpdate(ctx, owned.ID)
		if err != nil {
			return err
		}
		if g == nil {
			return domain.ErrNotOwner
		}
		if g.IsConfirmed {
			return domain.ErrGroupConfirmed
		}
		ids := prefs.HouseIDs()
		n, err := tx.Houses.CountExisting(ctx, ids)
		if err != nil {
			return err
		}
		if int(n) != len(ids) {
			return domain.ErrInvalidHouseID
		}
		if err := tx.Houses.AdjustChosenCounts(ctx, domain.ChosenCountDelta(g.Preferences(), prefs)); err != nil {
			return err
		}
		return tx.Groups.UpdatePreferences(ctx, g.ID, prefs)
	})
	if err != nil {
		return domain.HousePreferences{}, err
	}
	s.houses.Invalidate(ctx)
	return prefs, nil
}

func (s *GroupService) GetHousePreferences(ctx context.Context, userID string) (ResolvedPreferences, error) {
	u, err := mustUser(ctx, s.store, userID)
	if err != nil {
		return ResolvedPreferences{}, err
	}
	g, err := currentGroup(ctx, s.store, u)
	if err != nil {
		return ResolvedPreferences{}, err
	}
	return s.houses.Resolve(ctx, g.Preferences())
}

// List 后台分页查看，confirmed 为空表示不过滤
func (s *GroupService) List(ctx context.Context, offset, limit int, confirmed *bool) ([]domain.Group, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Groups.List(ctx, offset, limit, confirmed)
}
