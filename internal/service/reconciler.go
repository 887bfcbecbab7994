package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"orientation-api/internal/repo"
)

type ReconcileReport struct {
	GroupsChecked int `json:"groupsChecked"`
	GroupsFixed   int `json:"groupsFixed"`
	HousesChecked int `json:"housesChecked"`
	HousesFixed   int `json:"housesFixed"`
}

// Reconciler 由真实数据重算 memberCount / chosenCount 并修正偏差
type Reconciler struct {
	store  *repo.Store
	houses *HouseService
	log    *zap.Logger
}

func NewReconciler(store *repo.Store, houses *HouseService, l *zap.Logger) *Reconciler {
	if l == nil {
		l = zap.NewNop()
	}
	return &Reconciler{store: store, houses: houses, log: l}
}

func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport
	err := r.store.Tx(ctx, func(tx *repo.Store) error {
		members, err := tx.Users.CountByGroup(ctx)
		if err != nil {
			return err
		}
		groups, err := tx.Groups.All(ctx)
		if err != nil {
			return err
		}
		slotRefs := map[string]int{}
		for _, g := range groups {
			rep.GroupsChecked++
			for id, n := range g.Preferences().SlotCounts() {
				slotRefs[id] += n
			}
			if actual := members[g.ID]; actual != g.MemberCount {
				r.log.Warn("member count drift",
					zap.String("group_id", g.ID), zap.Int("stored", g.MemberCount), zap.Int("actual", actual))
				if err := tx.Groups.SetMemberCount(ctx, g.ID, actual); err != nil {
					return err
				}
				rep.GroupsFixed++
			}
		}
		houses, err := tx.Houses.List(ctx)
		if err != nil {
			return err
		}
		for _, h := range houses {
			rep.HousesChecked++
			if actual := slotRefs[h.ID]; actual != h.ChosenCount {
				r.log.Warn("chosen count drift",
					zap.String("house_id", h.ID), zap.Int("stored", h.ChosenCount), zap.Int("actual", actual))
				if err := tx.Houses.SetChosenCount(ctx, h.ID, actual); err != nil {
					return err
				}
				rep.HousesFixed++
			}
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}
	reconcileFixes.WithLabelValues("group").Add(float64(rep.GroupsFixed))
	reconcileFixes.WithLabelValues("house").Add(float64(rep.HousesFixed))
	if rep.HousesFixed > 0 && r.houses != nil {
		r.houses.Invalidate(ctx)
	}
	return rep, nil
}

// Schedule 按 cron 表达式定期对账，返回已启动的 cron，调用方负责 Stop
func (r *Reconciler) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rep, err := r.Reconcile(ctx)
		if err != nil {
			r.log.Error("reconcile failed", zap.Error(err))
			return
		}
		r.log.Info("reconcile done",
			zap.Int("groups_fixed", rep.GroupsFixed), zap.Int("houses_fixed", rep.HousesFixed))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
