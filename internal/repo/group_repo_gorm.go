package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orientation-api/internal/domain"
)

type GroupRepo struct{ db *gorm.DB }

func NewGroupRepo(db *gorm.DB) *GroupRepo { return &GroupRepo{db: db} }

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(g).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *GroupRepo) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.findOne(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate 行锁读取（sqlite 下忽略锁子句）
func (r *GroupRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Group, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *GroupRepo) FindByOwner(ctx context.Context, ownerID string) (*domain.Group, error) {
	return r.findOne(r.db.WithContext(ctx), "owner_id = ?", ownerID)
}

func (r *GroupRepo) FindByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	return r.findOne(r.db.WithContext(ctx), "invite_code = ?", code)
}

func (r *GroupRepo) findOne(tx *gorm.DB, query string, arg any) (*domain.Group, error) {
	var g domain.Group
	err := tx.First(&g, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &g, nil
}

// FindDetailed 带组长与成员
func (r *GroupRepo) FindDetailed(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return &g, nil
}

func (r *GroupRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("invite_code = ?", code).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return n > 0, nil
}

// AddMember 条件更新：未满且未确认才加一；返回是否成功
func (r *GroupRepo) AddMember(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("id = ? AND member_count < ? AND is_confirmed = ?", id, domain.MaxGroupMembers, false).
		Update("member_count", gorm.Expr("member_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment member count: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GroupRepo) RemoveMember(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("id = ? AND member_count > 0", id).
		Update("member_count", gorm.Expr("member_count - 1")).Error
	if err != nil {
		return fmt.Errorf("failed to decrement member count: %w", err)
	}
	return nil
}

func (r *GroupRepo) SetMemberCount(ctx context.Context, id string, n int) error {
	if err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("id = ?", id).Update("member_count", n).Error; err != nil {
		return fmt.Errorf("failed to set member count: %w", err)
	}
	return nil
}

// Confirm 单向 false→true；返回是否真的发生了状态变化
func (r *GroupRepo) Confirm(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("id = ? AND is_confirmed = ?", id, false).
		Update("is_confirmed", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to confirm group: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GroupRepo) UpdateInviteCode(ctx context.Context, id, code string) error {
	if err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("id = ?", id).Update("invite_code", code).Error; err != nil {
		return fmt.Errorf("failed to update invite code: %w", err)
	}
	return nil
}

func (r *GroupRepo) UpdatePreferences(ctx context.Context, id string, p domain.HousePreferences) error {
	err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("id = ?", id).Updates(map[string]any{
		"house_rank1":    p.HouseRank1,
		"house_rank2":    p.HouseRank2,
		"house_rank3":    p.HouseRank3,
		"house_rank4":    p.HouseRank4,
		"house_rank5":    p.HouseRank5,
		"house_rank_sub": p.HouseRankSub,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update house preferences: %w", err)
	}
	return nil
}

// SetOwner 组长被移出时转交给其他成员
func (r *GroupRepo) SetOwner(ctx context.Context, id, ownerID string) error {
	if err := r.db.WithContext(ctx).Model(&domain.Group{}).Where("id = ?", id).Update("owner_id", ownerID).Error; err != nil {
		return fmt.Errorf("failed to set group owner: %w", err)
	}
	return nil
}

func (r *GroupRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Group{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func (r *GroupRepo) List(ctx context.Context, offset, limit int, confirmed *bool) ([]domain.Group, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Group{})
	if confirmed != nil {
		tx = tx.Where("is_confirmed = ?", *confirmed)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}
	var groups []domain.Group
	if err := tx.Order("created_at desc").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, total, nil
}

// All 对账用，全表读取
func (r *GroupRepo) All(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	return groups, nil
}
