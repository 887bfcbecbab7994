package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"orientation-api/internal/domain"
)

type CheckInRepo struct{ db *gorm.DB }

func NewCheckInRepo(db *gorm.DB) *CheckInRepo { return &CheckInRepo{db: db} }

func (r *CheckInRepo) Find(ctx context.Context, userID, event string) (*domain.CheckIn, error) {
	var ci domain.CheckIn
	err := r.db.WithContext(ctx).First(&ci, "user_id = ? AND event = ?", userID, event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find checkin: %w", err)
	}
	return &ci, nil
}

func (r *CheckInRepo) Create(ctx context.Context, ci *domain.CheckIn) error {
	if err := r.db.WithContext(ctx).Create(ci).Error; err != nil {
		return fmt.Errorf("failed to create checkin: %w", err)
	}
	return nil
}

// Promote PRE_REGISTER → EVENT_REGISTER；返回是否更新
func (r *CheckInRepo) Promote(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.CheckIn{}).
		Where("id = ? AND status = ?", id, domain.CheckInPreRegister).
		Update("status", domain.CheckInEventRegister)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update checkin: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *CheckInRepo) ListByUser(ctx context.Context, userID string) ([]domain.CheckIn, error) {
	var out []domain.CheckIn
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	return out, nil
}

type WorkshopRepo struct{ db *gorm.DB }

func NewWorkshopRepo(db *gorm.DB) *WorkshopRepo { return &WorkshopRepo{db: db} }

func (r *WorkshopRepo) HasWorkshop(ctx context.Context, userID, workshop string) (bool, error) {
	return r.exists(ctx, "user_id = ? AND workshop = ?", userID, workshop)
}

func (r *WorkshopRepo) HasSlot(ctx context.Context, userID, slot string) (bool, error) {
	return r.exists(ctx, "user_id = ? AND slot = ?", userID, slot)
}

func (r *WorkshopRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.WorkshopRegistration{}).Where(query, args...).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check workshop registration: %w", err)
	}
	return n > 0, nil
}

func (r *WorkshopRepo) Create(ctx context.Context, w *domain.WorkshopRegistration) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create workshop registration: %w", err)
	}
	return nil
}

func (r *WorkshopRepo) ListByUser(ctx context.Context, userID string) ([]domain.WorkshopRegistration, error) {
	var out []domain.WorkshopRegistration
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list workshop registrations: %w", err)
	}
	return out, nil
}
