package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"orientation-api/internal/core/cache"
	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
)

const housesCacheKey = "houses:all"

type HouseService struct {
	store *repo.Store
	cache *cache.Cache // 可为 nil，直接读库
	ttl   time.Duration
	log   *zap.Logger
}

func NewHouseService(store *repo.Store, c *cache.Cache, ttl time.Duration, l *zap.Logger) *HouseService {
	if l == nil {
		l = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &HouseService{store: store, cache: c, ttl: ttl, log: l}
}

// ResolvedPreferences 六个槽解析为完整 House，空槽为 null
type ResolvedPreferences struct {
	HouseRank1   *domain.House `json:"houseRank1"`
	HouseRank2   *domain.House `json:"houseRank2"`
	HouseRank3   *domain.House `json:"houseRank3"`
	HouseRank4   *domain.House `json:"houseRank4"`
	HouseRank5   *domain.House `json:"houseRank5"`
	HouseRankSub *domain.House `json:"houseRankSub"`
}

func (s *HouseService) List(ctx context.Context) ([]domain.House, error) {
	if s.cache == nil {
		return s.store.Houses.List(ctx)
	}
	out, err := cache.GetOrLoadJSON(s.cache, ctx, housesCacheKey, s.ttl, s.store.Houses.List)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.House{}, nil
	}
	return out, nil
}

// Invalidate chosenCount 变化后调用；失败只影响缓存新鲜度
func (s *HouseService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, housesCacheKey); err != nil {
		s.log.Warn("house cache invalidate failed", zap.Error(err))
	}
}

func (s *HouseService) Resolve(ctx context.Context, p domain.HousePreferences) (ResolvedPreferences, error) {
	byID, err := s.store.Houses.FindByIDs(ctx, p.HouseIDs())
	if err != nil {
		return ResolvedPreferences{}, err
	}
	pick := func(id *string) *domain.House {
		if id == nil {
			return nil
		}
		h, ok := byID[*id]
		if !ok {
			return nil
		}
		return &h
	}
	return ResolvedPreferences{
		HouseRank1:   pick(p.HouseRank1),
		HouseRank2:   pick(p.HouseRank2),
		HouseRank3:   pick(p.HouseRank3),
		HouseRank4:   pick(p.HouseRank4),
		HouseRank5:   pick(p.HouseRank5),
		HouseRankSub: pick(p.HouseRankSub),
	}, nil
}

// Upsert 后台导入目录；新建行的 chosenCount 固定从 0 开始
func (s *HouseService) Upsert(ctx context.Context, houses []domain.House) error {
	for i := range houses {
		houses[i].ChosenCount = 0
	}
	if err := s.store.Houses.Upsert(ctx, houses); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}
