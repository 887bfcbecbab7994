package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orientation-api/internal/core/auth"
	"orientation-api/internal/domain"
	"orientation-api/internal/repo"
	"orientation-api/internal/repo/repotest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	queues []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queue)
	p.events = append(p.events, v)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type testEnv struct {
	store  *repo.Store
	pub    *recordingPublisher
	houses *HouseService
	groups *GroupService
	users  *UserService
	seq    int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repotest.Open(t)
	pub := &recordingPublisher{}
	houses := NewHouseService(store, nil, time.Second, nil)
	groups := NewGroupService(store, NewInviteCodeGenerator(), houses, pub, nil)
	jwter := &auth.JWTer{Secret: []byte("test"), Issuer: "test", TTL: time.Hour}
	return &testEnv{
		store:  store,
		pub:    pub,
		houses: houses,
		groups: groups,
		users:  NewUserService(store, groups, jwter, nil),
	}
}

// register 新建一个已自动分配单人组的新生
func (e *testEnv) register(t *testing.T) *domain.User {
	t.Helper()
	e.seq++
	res, err := e.users.Register(context.Background(), RegisterInput{
		StudentID: fmt.Sprintf("65%08d", e.seq),
		CitizenID: fmt.Sprintf("11037%08d", e.seq),
		Password:  "password123",
		FirstName: "First",
		LastName:  fmt.Sprintf("Last%d", e.seq),
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) user(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := e.store.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func (e *testEnv) groupOf(t *testing.T, userID string) *domain.Group {
	t.Helper()
	u := e.user(t, userID)
	require.NotNil(t, u.GroupID)
	g, err := e.store.Groups.FindByID(context.Background(), *u.GroupID)
	require.NoError(t, err)
	require.NotNil(t, g)
	return g
}

func (e *testEnv) house(t *testing.T, id string) domain.House {
	t.Helper()
	m, err := e.store.Houses.FindByIDs(context.Background(), []string{id})
	require.NoError(t, err)
	h, ok := m[id]
	require.True(t, ok)
	return h
}

// requireMemberCounts 每个组的 memberCount 等于引用它的用户数
func (e *testEnv) requireMemberCounts(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	actual, err := e.store.Users.CountByGroup(ctx)
	require.NoError(t, err)
	groups, err := e.store.Groups.All(ctx)
	require.NoError(t, err)
	for _, g := range groups {
		require.Equal(t, actual[g.ID], g.MemberCount, "group %s", g.ID)
	}
}

func ptr(s string) *string { return &s }
