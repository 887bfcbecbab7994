package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orientation-api/internal/core/events"
	"orientation-api/internal/domain"
	"orientation-api/internal/repo/repotest"
	"orientation-api/pkg/utils"
)

func TestRegisterCreatesSoloGroup(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t)

	g := env.groupOf(t, a.ID)
	assert.Equal(t, a.ID, g.OwnerID)
	assert.Equal(t, 1, g.MemberCount)
	assert.False(t, g.IsConfirmed)
	assert.True(t, IsValidInviteCode(g.InviteCode))
}

func TestJoinConfirmScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	houses := repotest.SeedHouses(t, env.store, 6)
	a, b, c := env.register(t), env.register(t), env.register(t)

	ga := env.groupOf(t, a.ID)
	bSolo := env.groupOf(t, b.ID)

	joined, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, ga.ID, joined.ID)
	assert.Equal(t, 2, joined.MemberCount)
	assert.Equal(t, ga.ID, *env.user(t, b.ID).GroupID)

	// B 的单人组被解散
	gone, err := env.store.Groups.FindByID(ctx, bSolo.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{HouseRank1: ptr(houses[4])})
	require.NoError(t, err)
	assert.Equal(t, 1, env.house(t, houses[4]).ChosenCount)

	confirmed, err := env.groups.ConfirmGroup(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed)

	_, err = env.groups.JoinGroup(ctx, c.ID, ga.InviteCode)
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)

	env.requireMemberCounts(t)
}

func TestJoinCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b, c, d := env.register(t), env.register(t), env.register(t), env.register(t)
	code := env.groupOf(t, a.ID).InviteCode

	_, err := env.groups.JoinGroup(ctx, b.ID, code)
	require.NoError(t, err)
	// memberCount == 2 时一定能加入
	g, err := env.groups.JoinGroup(ctx, c.ID, code)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxGroupMembers, g.MemberCount)

	_, err = env.groups.JoinGroup(ctx, d.ID, code)
	assert.ErrorIs(t, err, domain.ErrGroupFull)

	// 失败的加入不影响 D 原来的组
	dg := env.groupOf(t, d.ID)
	assert.Equal(t, d.ID, dg.OwnerID)
	assert.Equal(t, 1, dg.MemberCount)
	env.requireMemberCounts(t)
}

func TestJoinRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b, c := env.register(t), env.register(t), env.register(t)
	codeA := env.groupOf(t, a.ID).InviteCode
	codeC := env.groupOf(t, c.ID).InviteCode

	_, err := env.groups.JoinGroup(ctx, b.ID, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, err = env.groups.JoinGroup(ctx, b.ID, "AB-123")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	unknown := "ZZZZZZ"
	if unknown == codeA || unknown == codeC {
		unknown = "YYYYYY"
	}
	_, err = env.groups.JoinGroup(ctx, b.ID, unknown)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = env.groups.JoinGroup(ctx, a.ID, codeA)
	assert.ErrorIs(t, err, domain.ErrSelfJoin)

	// 大小写与空白不敏感
	_, err = env.groups.JoinGroup(ctx, b.ID, "  "+strings.ToLower(codeA)+" ")
	require.NoError(t, err)

	_, err = env.groups.JoinGroup(ctx, b.ID, codeA)
	assert.ErrorIs(t, err, domain.ErrAlreadyInGroup)

	// 已在别人组里的成员必须先退出
	_, err = env.groups.JoinGroup(ctx, b.ID, codeC)
	assert.ErrorIs(t, err, domain.ErrAlreadyInGroup)

	// 有成员的组长也不能直接加入别的组
	_, err = env.groups.JoinGroup(ctx, a.ID, codeC)
	assert.ErrorIs(t, err, domain.ErrAlreadyInGroup)

	env.requireMemberCounts(t)
}

func TestLeaveGroup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)
	_, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)

	_, err = env.groups.LeaveGroup(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrOwnerCannotLeave)

	solo, err := env.groups.LeaveGroup(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, solo.OwnerID)
	assert.Equal(t, 1, solo.MemberCount)
	assert.Equal(t, solo.ID, *env.user(t, b.ID).GroupID)
	assert.Equal(t, 1, env.groupOf(t, a.ID).MemberCount)

	// 离开后拥有单人组，不能再次离开
	_, err = env.groups.LeaveGroup(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrOwnerCannotLeave)

	env.requireMemberCounts(t)
}

func TestKickMember(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b, c := env.register(t), env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)
	_, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)

	assert.ErrorIs(t, env.groups.KickMember(ctx, a.ID, a.ID), domain.ErrCannotKickSelf)
	assert.ErrorIs(t, env.groups.KickMember(ctx, a.ID, c.ID), domain.ErrNotOwner)
	assert.ErrorIs(t, env.groups.KickMember(ctx, a.ID, utils.NewID()), domain.ErrNotAMember)
	// B 加入后不再拥有任何组
	assert.ErrorIs(t, env.groups.KickMember(ctx, b.ID, a.ID), domain.ErrNotOwner)

	require.NoError(t, env.groups.KickMember(ctx, a.ID, b.ID))
	assert.Equal(t, 1, env.groupOf(t, a.ID).MemberCount)
	bg := env.groupOf(t, b.ID)
	assert.Equal(t, b.ID, bg.OwnerID)
	assert.Equal(t, 1, bg.MemberCount)

	env.requireMemberCounts(t)
}

func TestCreateGroupForUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)

	_, err := env.groups.CreateGroupForUser(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyOwner)

	_, err = env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)

	g, err := env.groups.CreateGroupForUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, g.OwnerID)
	assert.NotEqual(t, ga.InviteCode, g.InviteCode)
	assert.Equal(t, 1, env.groupOf(t, a.ID).MemberCount)
	assert.Equal(t, g.ID, *env.user(t, b.ID).GroupID)

	env.requireMemberCounts(t)
}

func TestConfirmedGroupRejectsMutations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	houses := repotest.SeedHouses(t, env.store, 2)
	a, b, c := env.register(t), env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)
	_, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)
	_, err = env.groups.ConfirmGroup(ctx, a.ID)
	require.NoError(t, err)

	_, err = env.groups.JoinGroup(ctx, c.ID, ga.InviteCode)
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)
	_, err = env.groups.LeaveGroup(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)
	assert.ErrorIs(t, env.groups.KickMember(ctx, a.ID, b.ID), domain.ErrGroupConfirmed)
	_, err = env.groups.ConfirmGroup(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)
	_, err = env.groups.RegenerateInviteCode(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)
	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{HouseRank1: ptr(houses[0])})
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)
	_, err = env.groups.CreateGroupForUser(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrGroupConfirmed)

	assert.Equal(t, 0, env.house(t, houses[0]).ChosenCount)
	env.requireMemberCounts(t)
}

func TestConfirmPublishesEvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	ga := env.groupOf(t, a.ID)
	_, err := env.groups.JoinGroup(ctx, b.ID, ga.InviteCode)
	require.NoError(t, err)

	_, err = env.groups.ConfirmGroup(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Empty(t, env.pub.events)

	_, err = env.groups.ConfirmGroup(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, env.pub.events, 1)
	assert.Equal(t, events.QueueGroupConfirmed, env.pub.queues[0])
	ev, ok := env.pub.events[0].(events.GroupConfirmedEvent)
	require.True(t, ok)
	assert.Equal(t, ga.ID, ev.GroupID)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ev.MemberIDs)
	assert.Len(t, ev.HouseRanks, domain.RankedSlots+1)
}

func TestConfirmSucceedsWhenPublishFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.pub.err = assert.AnError
	a := env.register(t)

	g, err := env.groups.ConfirmGroup(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, env.groupOf(t, a.ID).IsConfirmed)
	assert.True(t, g.IsConfirmed)
}

func TestRegenerateInviteCode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	old := env.groupOf(t, a.ID).InviteCode

	code, err := env.groups.RegenerateInviteCode(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, IsValidInviteCode(code))
	assert.NotEqual(t, old, code)

	got, err := env.groups.GetInviteCode(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, code, got)

	_, err = env.groups.JoinGroup(ctx, b.ID, old)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, err = env.groups.JoinGroup(ctx, b.ID, code)
	require.NoError(t, err)

	// 成员可以查看邀请码，但不能重置
	got, err = env.groups.GetInviteCode(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, code, got)
	_, err = env.groups.RegenerateInviteCode(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestGetMyGroupResolvesHouses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	houses := repotest.SeedHouses(t, env.store, 3)
	a, b := env.register(t), env.register(t)
	_, err := env.groups.JoinGroup(ctx, b.ID, env.groupOf(t, a.ID).InviteCode)
	require.NoError(t, err)
	_, err = env.groups.SetHousePreferences(ctx, a.ID, domain.HousePreferences{
		HouseRank1:   ptr(houses[2]),
		HouseRankSub: ptr(houses[0]),
	})
	require.NoError(t, err)

	d, err := env.groups.GetMyGroup(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Owner)
	assert.Equal(t, a.ID, d.Owner.ID)
	assert.Len(t, d.Members, 2)
	require.NotNil(t, d.Houses.HouseRank1)
	assert.Equal(t, houses[2], d.Houses.HouseRank1.ID)
	assert.Nil(t, d.Houses.HouseRank2)
	require.NotNil(t, d.Houses.HouseRankSub)
	assert.Equal(t, houses[0], d.Houses.HouseRankSub.ID)

	_, err = env.groups.GetMyGroup(ctx, utils.NewID())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetMyGroupHidesPersonalData(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a, b := env.register(t), env.register(t)
	require.NoError(t, env.store.Users.UpdateProfile(ctx, a.ID, domain.ProfilePatch{Phone: ptr("0812345678")}))
	_, err := env.groups.JoinGroup(ctx, b.ID, env.groupOf(t, a.ID).InviteCode)
	require.NoError(t, err)

	d, err := env.groups.GetMyGroup(ctx, b.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	body := string(raw)

	assert.NotContains(t, body, "citizenId")
	assert.NotContains(t, body, a.CitizenID)
	assert.NotContains(t, body, b.CitizenID)
	assert.NotContains(t, body, "0812345678")
	assert.Contains(t, body, a.StudentID)
	assert.Contains(t, body, b.StudentID)
	require.NotNil(t, d.Owner)
	assert.Equal(t, a.StudentID, d.Owner.StudentID)
}
