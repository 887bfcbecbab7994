// Package repotest 提供测试用的内存 SQLite 仓储
package repotest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
	"orientation-api/pkg/utils"
)

// Open 每次调用一个独立的内存库；单连接保证同一个 :memory: 实例
func Open(t testing.TB) *repo.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,

		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("failed automigrating: %v", err)
	}
	return repo.NewStore(db)
}

// SeedHouses 插入 n 个房屋，返回按插入顺序的 ID
func SeedHouses(t testing.TB, s *repo.Store, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	houses := make([]domain.House, 0, n)
	for i := 0; i < n; i++ {
		id := utils.NewID()
		ids = append(ids, id)
		houses = append(houses, domain.House{
			ID:        id,
			NameTh:    "บ้าน " + string(rune('A'+i)),
			NameEn:    "House " + string(rune('A'+i)),
			SizeClass: "M",
			Capacity:  100,
		})
	}
	if err := s.DB().Create(&houses).Error; err != nil {
		t.Fatalf("failed seeding houses: %v", err)
	}
	return ids
}
