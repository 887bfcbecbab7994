package repo

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orientation-api/internal/domain"
)

type HouseRepo struct{ db *gorm.DB }

func NewHouseRepo(db *gorm.DB) *HouseRepo { return &HouseRepo{db: db} }

func (r *HouseRepo) List(ctx context.Context) ([]domain.House, error) {
	var houses []domain.House
	if err := r.db.WithContext(ctx).Order("name_en asc").Find(&houses).Error; err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	return houses, nil
}

// CountExisting 一次 IN 查询统计存在的 id 数
func (r *HouseRepo) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.House{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to check houses: %w", err)
	}
	return n, nil
}

func (r *HouseRepo) FindByIDs(ctx context.Context, ids []string) (map[string]domain.House, error) {
	out := make(map[string]domain.House, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var houses []domain.House
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&houses).Error; err != nil {
		return nil, fmt.Errorf("failed to load houses: %w", err)
	}
	for _, h := range houses {
		out[h.ID] = h
	}
	return out, nil
}

// AdjustChosenCounts 按 id 顺序逐个加减，固定加锁顺序
func (r *HouseRepo) AdjustChosenCounts(ctx context.Context, delta map[string]int) error {
	ids := make([]string, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := delta[id]
		if d == 0 {
			continue
		}
		err := r.db.WithContext(ctx).Model(&domain.House{}).
			Where("id = ?", id).
			UpdateColumn("chosen_count", gorm.Expr("chosen_count + ?", d)).Error
		if err != nil {
			return fmt.Errorf("failed to adjust chosen count: %w", err)
		}
	}
	return nil
}

func (r *HouseRepo) SetChosenCount(ctx context.Context, id string, n int) error {
	if err := r.db.WithContext(ctx).Model(&domain.House{}).Where("id = ?", id).UpdateColumn("chosen_count", n).Error; err != nil {
		return fmt.Errorf("failed to set chosen count: %w", err)
	}
	return nil
}

// Upsert 目录数据导入；chosen_count 从不被覆盖
func (r *HouseRepo) Upsert(ctx context.Context, houses []domain.House) error {
	if len(houses) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name_th", "name_en", "description_th", "description_en", "size_class", "capacity",
		}),
	}).Create(&houses).Error
	if err != nil {
		return fmt.Errorf("failed to upsert houses: %w", err)
	}
	return nil
}
