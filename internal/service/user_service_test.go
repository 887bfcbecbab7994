package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orientation-api/internal/domain"
	"orientation-api/internal/repo/repotest"
)

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.register(t)

	_, err := env.users.Register(ctx, RegisterInput{
		StudentID: a.StudentID, CitizenID: "9999999999999", Password: "password123", FirstName: "X", LastName: "Y",
	})
	assert.ErrorIs(t, err, domain.ErrStudentIDTaken)

	_, err = env.users.Register(ctx, RegisterInput{
		StudentID: "6599999999", CitizenID: a.CitizenID, Password: "password123", FirstName: "X", LastName: "Y",
	})
	assert.ErrorIs(t, err, domain.ErrCitizenIDTaken)

	groups, err := env.store.Groups.All(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1, "failed registration leaves no group behind")
}

func TestLoginAndProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.register(t)

	res, err := env.users.Login(ctx, a.StudentID, "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, a.ID, res.User.ID)

	_, err = env.users.Login(ctx, a.StudentID, "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = env.users.Login(ctx, "0000000000", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	nick, year := "Bank", 1
	u, err := env.users.UpdateProfile(ctx, a.ID, domain.ProfilePatch{Nickname: &nick, Year: &year})
	require.NoError(t, err)
	assert.Equal(t, "Bank", u.Nickname)
	assert.Equal(t, 1, u.Year)
	assert.Equal(t, a.FirstName, u.FirstName)

	me, err := env.users.Me(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bank", me.Nickname)
}

func TestBanHidesUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)

	ok, err := env.users.Ban(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.users.Ban(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.users.Login(ctx, a.StudentID, "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	visible, total, err := env.users.List(ctx, 0, 0, "", false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, visible, 1)
	assert.Equal(t, b.ID, visible[0].ID)

	_, total, err = env.users.List(ctx, 0, 50, "", true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestBanMemberFreesSlot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b, c, d := env.register(t), env.register(t), env.register(t), env.register(t)
	code := env.groupOf(t, a.ID).InviteCode
	for _, u := range []*domain.User{b, c} {
		_, err := env.groups.JoinGroup(ctx, u.ID, code)
		require.NoError(t, err)
	}

	ok, err := env.users.Ban(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)

	g := env.groupOf(t, a.ID)
	assert.Equal(t, 2, g.MemberCount)
	env.requireMemberCounts(t)

	banned, _, err := env.store.Users.List(ctx, 0, 50, b.StudentID, true)
	require.NoError(t, err)
	require.Len(t, banned, 1)
	assert.Nil(t, banned[0].GroupID)

	// 名额释放后第三人可以加入
	joined, err := env.groups.JoinGroup(ctx, d.ID, code)
	require.NoError(t, err)
	assert.Equal(t, 3, joined.MemberCount)
	env.requireMemberCounts(t)
}

func TestBanOwnerHandsGroupOver(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	houses := repotest.SeedHouses(t, env.store, 1)
	a, b, c := env.register(t), env.register(t), env.register(t)
	code := env.groupOf(t, a.ID).InviteCode
	for _, u := range []*domain.User{b, c} {
		_, err := env.groups.JoinGroup(ctx, u.ID, code)
		require.NoError(t, err)
	}
	_, err := env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{HouseRank1: ptr(houses[0])})
	require.NoError(t, err)
	groupID := env.groupOf(t, a.ID).ID

	ok, err := env.users.Ban(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	g := env.groupOf(t, b.ID)
	assert.Equal(t, groupID, g.ID)
	assert.Equal(t, 2, g.MemberCount)
	assert.Contains(t, []string{b.ID, c.ID}, g.OwnerID)
	require.NotNil(t, g.HouseRank1)
	assert.Equal(t, 1, env.house(t, houses[0]).ChosenCount)
	env.requireMemberCounts(t)

	// 新组长可以正常踢人
	other := c.ID
	if g.OwnerID == c.ID {
		other = b.ID
	}
	require.NoError(t, env.groups.KickMember(ctx, g.OwnerID, other))
	assert.Equal(t, 1, env.groupOf(t, g.OwnerID).MemberCount)
	env.requireMemberCounts(t)
}

func TestBanSoloOwnerDissolvesGroup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	houses := repotest.SeedHouses(t, env.store, 2)
	a := env.register(t)
	_, err := env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{
		HouseRank1:   ptr(houses[0]),
		HouseRankSub: ptr(houses[1]),
	})
	require.NoError(t, err)
	groupID := env.groupOf(t, a.ID).ID

	ok, err := env.users.Ban(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	g, err := env.store.Groups.FindByID(ctx, groupID)
	require.NoError(t, err)
	assert.Nil(t, g)
	assert.Equal(t, 0, env.house(t, houses[0]).ChosenCount)
	assert.Equal(t, 0, env.house(t, houses[1]).ChosenCount)
	env.requireMemberCounts(t)
}

func TestRegisterConflictsIncludeBannedUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	ok, err := env.users.Ban(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// 封禁用户的号仍占着唯一索引
	_, err = env.users.Register(ctx, RegisterInput{
		StudentID: "6599999999", CitizenID: a.CitizenID, Password: "password123", FirstName: "X", LastName: "Y",
	})
	assert.ErrorIs(t, err, domain.ErrCitizenIDTaken)
	_, err = env.users.Register(ctx, RegisterInput{
		StudentID: a.StudentID, CitizenID: "9999999999999", Password: "password123", FirstName: "X", LastName: "Y",
	})
	assert.ErrorIs(t, err, domain.ErrStudentIDTaken)

	assert.ErrorIs(t, identityConflict(ctx, env.store, "6599999999", b.CitizenID), domain.ErrCitizenIDTaken)
	assert.ErrorIs(t, identityConflict(ctx, env.store, b.StudentID, b.CitizenID), domain.ErrStudentIDTaken)
	assert.NoError(t, identityConflict(ctx, env.store, "6599999999", "9999999999999"))
}
