package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orientation-api/internal/domain"
	"orientation-api/internal/repo/repotest"
)

func TestReconcileRepairsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	h := repotest.SeedHouses(t, env.store, 2)
	a, b := env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)
	_, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)
	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{HouseRank1: ptr(h[0])})
	require.NoError(t, err)

	rec := NewReconciler(env.store, env.houses, nil)
	rep, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{GroupsChecked: 1, HousesChecked: 2}, rep)

	// 人为制造偏差
	require.NoError(t, env.store.Groups.SetMemberCount(ctx, ga.ID, 3))
	require.NoError(t, env.store.Houses.SetChosenCount(ctx, h[0], 7))
	require.NoError(t, env.store.Houses.SetChosenCount(ctx, h[1], 2))

	rep, err = rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.GroupsFixed)
	assert.Equal(t, 2, rep.HousesFixed)
	assert.Equal(t, 2, env.groupOf(t, a.ID).MemberCount)
	assert.Equal(t, 1, env.house(t, h[0]).ChosenCount)
	assert.Equal(t, 0, env.house(t, h[1]).ChosenCount)
	env.requireMemberCounts(t)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	env := newTestEnv(t)
	rec := NewReconciler(env.store, env.houses, nil)

	_, err := rec.Schedule("not a cron spec", 0)
	assert.Error(t, err)

	c, err := rec.Schedule("@every 1h", 0)
	require.NoError(t, err)
	c.Stop()
}
