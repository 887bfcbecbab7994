package service

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
	"orientation-api/pkg/utils"
)

type WorkshopCatalog struct {
	Workshops []string
	Slots     []string
}

type CheckInService struct {
	store     *repo.Store
	schedule  EventSchedule
	workshops WorkshopCatalog
	now       func() time.Time
	log       *zap.Logger
}

func NewCheckInService(store *repo.Store, schedule EventSchedule, workshops WorkshopCatalog, l *zap.Logger) *CheckInService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CheckInService{store: store, schedule: schedule, workshops: workshops, now: time.Now, log: l}
}

// WithClock 测试用
func (s *CheckInService) WithClock(now func() time.Time) *CheckInService {
	s.now = now
	return s
}

func (s *CheckInService) ActiveEvent() (EventWindow, bool) { return s.schedule.Active(s.now()) }

func (s *CheckInService) PreRegister(ctx context.Context, userID, event string) (*domain.CheckIn, error) {
	w, ok := s.schedule.Find(event)
	if !ok {
		return nil, domain.ErrUnknownEvent
	}
	if !s.now().Before(w.End) {
		return nil, domain.ErrEventEnded
	}
	existing, err := s.store.CheckIns.Find(ctx, userID, event)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyPreRegistered
	}
	ci := &domain.CheckIn{ID: utils.NewID(), UserID: userID, Event: event, Status: domain.CheckInPreRegister}
	if err := s.store.CheckIns.Create(ctx, ci); err != nil {
		if repo.IsDuplicateKey(err) {
			return nil, domain.ErrAlreadyPreRegistered
		}
		return nil, err
	}
	return ci, nil
}

// CheckIn 签到当前活动；没有预登记的按现场登记处理
func (s *CheckInService) CheckIn(ctx context.Context, userID string) (*domain.CheckIn, error) {
	w, ok := s.schedule.Active(s.now())
	if !ok {
		return nil, domain.ErrNoActiveEvent
	}
	existing, err := s.store.CheckIns.Find(ctx, userID, w.Event)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		ci := &domain.CheckIn{ID: utils.NewID(), UserID: userID, Event: w.Event, Status: domain.CheckInEventRegister}
		if err := s.store.CheckIns.Create(ctx, ci); err != nil {
			if repo.IsDuplicateKey(err) {
				return nil, domain.ErrAlreadyCheckedIn
			}
			return nil, err
		}
		return ci, nil
	}
	if existing.Status == domain.CheckInEventRegister {
		return nil, domain.ErrAlreadyCheckedIn
	}
	promoted, err := s.store.CheckIns.Promote(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if !promoted {
		return nil, domain.ErrAlreadyCheckedIn
	}
	existing.Status = domain.CheckInEventRegister
	s.log.Info("checked in", zap.String("user_id", userID), zap.String("event", w.Event))
	return existing, nil
}

func (s *CheckInService) MyCheckIns(ctx context.Context, userID string) ([]domain.CheckIn, error) {
	return s.store.CheckIns.ListByUser(ctx, userID)
}

// RegisterWorkshop 先查冲突再插入，唯一索引兜底
func (s *CheckInService) RegisterWorkshop(ctx context.Context, userID, workshop, slot string) (*domain.WorkshopRegistration, error) {
	if !slices.Contains(s.workshops.Workshops, workshop) {
		return nil, domain.ErrUnknownWorkshop
	}
	if !slices.Contains(s.workshops.Slots, slot) {
		return nil, domain.ErrUnknownSlot
	}

	if err := s.workshopConflict(ctx, userID, workshop, slot); err != nil {
		return nil, err
	}

	reg := &domain.WorkshopRegistration{ID: utils.NewID(), UserID: userID, Workshop: workshop, Slot: slot}
	if err := s.store.Workshops.Create(ctx, reg); err != nil {
		// 并发请求撞唯一索引：重查一次确定撞的是哪一个
		if repo.IsDuplicateKey(err) {
			if cerr := s.workshopConflict(ctx, userID, workshop, slot); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}
	return reg, nil
}

// workshopConflict 两个存在性查询并行执行；同一工作坊优先于同一时段
func (s *CheckInService) workshopConflict(ctx context.Context, userID, workshop, slot string) error {
	var hasWorkshop, hasSlot bool
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		hasWorkshop, err = s.store.Workshops.HasWorkshop(egCtx, userID, workshop)
		return err
	})
	eg.Go(func() error {
		var err error
		hasSlot, err = s.store.Workshops.HasSlot(egCtx, userID, slot)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	switch {
	case hasWorkshop:
		return domain.ErrWorkshopTaken
	case hasSlot:
		return domain.ErrSlotTaken
	}
	return nil
}

func (s *CheckInService) MyWorkshops(ctx context.Context, userID string) ([]domain.WorkshopRegistration, error) {
	return s.store.Workshops.ListByUser(ctx, userID)
}
