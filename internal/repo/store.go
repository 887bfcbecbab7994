package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"orientation-api/internal/domain"
)

// Store 聚合各仓储，Tx 内部会重新绑定到同一个事务
type Store struct {
	db *gorm.DB

	Users     *UserRepo
	Groups    *GroupRepo
	Houses    *HouseRepo
	CheckIns  *CheckInRepo
	Workshops *WorkshopRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Users:     NewUserRepo(db),
		Groups:    NewGroupRepo(db),
		Houses:    NewHouseRepo(db),
		CheckIns:  NewCheckInRepo(db),
		Workshops: NewWorkshopRepo(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Tx 在单个数据库事务中执行 fn；返回错误即回滚
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Models 需要迁移的全部模型
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Group{},
		&domain.House{},
		&domain.CheckIn{},
		&domain.WorkshopRegistration{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }

// IsDuplicateKey 唯一约束冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 不同驱动报错文案不同，按关键字兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
