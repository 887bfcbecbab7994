package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orientation-api/internal/domain"
	"orientation-api/internal/repo/repotest"
	"orientation-api/pkg/utils"
)

func TestSetHousePreferencesSyncsChosenCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	h := repotest.SeedHouses(t, env.store, 6)
	a := env.register(t)

	_, err := env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{
		HouseRank1:   ptr(h[0]),
		HouseRank2:   ptr(h[1]),
		HouseRank3:   ptr(h[2]),
		HouseRankSub: ptr(h[0]), // sub 可以与排名槽重复
	})
	require.NoError(t, err)
	assert.Equal(t, 2, env.house(t, h[0]).ChosenCount, "counted once per slot")
	assert.Equal(t, 1, env.house(t, h[1]).ChosenCount)
	assert.Equal(t, 1, env.house(t, h[2]).ChosenCount)

	// 旧的减、新的加、未变的不动
	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{
		HouseRank1: ptr(h[1]),
		HouseRank2: ptr(h[3]),
		HouseRank5: ptr(h[4]),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.house(t, h[0]).ChosenCount)
	assert.Equal(t, 1, env.house(t, h[1]).ChosenCount)
	assert.Equal(t, 0, env.house(t, h[2]).ChosenCount)
	assert.Equal(t, 1, env.house(t, h[3]).ChosenCount)
	assert.Equal(t, 1, env.house(t, h[4]).ChosenCount)

	got, err := env.groups.GetHousePreferences(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.HouseRank1)
	assert.Equal(t, h[1], got.HouseRank1.ID)
	assert.Nil(t, got.HouseRank3)
	require.NotNil(t, got.HouseRank5)
	assert.Nil(t, got.HouseRankSub)

	// 全部清空
	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{HouseRank1: ptr("  ")})
	require.NoError(t, err)
	houses, err := env.store.Houses.List(ctx)
	require.NoError(t, err)
	for _, x := range houses {
		assert.Zero(t, x.ChosenCount, x.NameEn)
	}
}

func TestSetHousePreferencesValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	h := repotest.SeedHouses(t, env.store, 2)
	a, b := env.register(t), env.register(t)
	_, err := env.groups.JoinGroup(ctx, b.ID, env.groupOf(t, a.ID).InviteCode)
	require.NoError(t, err)

	cases := []struct {
		name  string
		user  string
		prefs domain.HousePreferences
		want  error
	}{
		{"duplicate ranked", a.ID, domain.HousePreferences{HouseRank1: ptr(h[0]), HouseRank4: ptr(h[0])}, domain.ErrDuplicateRank},
		{"malformed id", a.ID, domain.HousePreferences{HouseRank1: ptr("house-5")}, domain.ErrInvalidHouseID},
		{"unknown house", a.ID, domain.HousePreferences{HouseRank2: ptr(utils.NewID())}, domain.ErrInvalidHouseID},
		{"unknown sub", a.ID, domain.HousePreferences{HouseRank1: ptr(h[0]), HouseRankSub: ptr(utils.NewID())}, domain.ErrInvalidHouseID},
		{"member not owner", b.ID, domain.HousePreferences{HouseRank1: ptr(h[0])}, domain.ErrNotOwner},
		// 格式错误先于身份查询报出
		{"malformed id from member", b.ID, domain.HousePreferences{HouseRank1: ptr("house-5")}, domain.ErrInvalidHouseID},
		{"malformed id unknown user", utils.NewID(), domain.HousePreferences{HouseRankSub: ptr("x")}, domain.ErrInvalidHouseID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.groups.SetHousePreferences(ctx, tc.user, tc.prefs)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// 失败的请求不留下任何计数
	assert.Zero(t, env.house(t, h[0]).ChosenCount)
	assert.Zero(t, env.house(t, h[1]).ChosenCount)
}

func TestDissolvedSoloGroupReleasesPreferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	h := repotest.SeedHouses(t, env.store, 2)
	a, c := env.register(t), env.register(t)

	_, err := env.groups.SetHousePreferences(ctx, c.ID, domain.HousePreferences{HouseRank1: ptr(h[0]), HouseRank2: ptr(h[1])})
	require.NoError(t, err)
	require.Equal(t, 1, env.house(t, h[0]).ChosenCount)

	_, err = env.groups.JoinGroup(ctx, c.ID, env.groupOf(t, a.ID).InviteCode)
	require.NoError(t, err)
	assert.Zero(t, env.house(t, h[0]).ChosenCount)
	assert.Zero(t, env.house(t, h[1]).ChosenCount)
}

func TestGetHousePreferencesEmpty(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t)

	got, err := env.groups.GetHousePreferences(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, ResolvedPreferences{}, got)
}
