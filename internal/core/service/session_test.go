package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/port"
)

func newTestSession(t *testing.T) (*SessionManager, *mockStore) {
	t.Helper()
	store := newMockStore()
	return NewSessionManager(store, newTestLogger()), store
}

func TestRegister_SetsSession(t *testing.T) {
	sm, _ := newTestSession(t)
	ctx := context.Background()

	user, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "secret", user.Password)

	current, err := sm.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, "Ana", current.Name)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	sm, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = sm.Register(ctx, "Other", "ana@shop.io", "other")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	}

	users, err := sm.Users(ctx)
	require.NoError(t, err)
	count := 0
	for _, u := range users {
		if u.Email == "ana@shop.io" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRegister_EmailComparisonIsCaseSensitive(t *testing.T) {
	sm, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)
	_, err = sm.Register(ctx, "Ana Upper", "ANA@shop.io", "secret")
	assert.NoError(t, err)
}

func TestRegister_MissingFields(t *testing.T) {
	sm, store := newTestSession(t)

	_, err := sm.Register(context.Background(), "", "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, store.setCount(port.CollectionUsers))
}

func TestLogin(t *testing.T) {
	sm, _ := newTestSession(t)
	ctx := context.Background()

	registered, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)
	require.NoError(t, sm.Logout(ctx))

	_, err = sm.Login(ctx, "ana@shop.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = sm.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = sm.Login(ctx, "unknown@shop.io", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = sm.Login(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrValidation)

	user, err := sm.Login(ctx, "ana@shop.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	current, err := sm.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, current.ID)
}

func TestLogout_ClearsSession(t *testing.T) {
	sm, store := newTestSession(t)
	ctx := context.Background()

	_, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)
	require.NoError(t, sm.Logout(ctx))

	_, ok := store.data[port.CollectionCurrentUser]
	assert.False(t, ok)
	_, err = sm.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestGuardPage(t *testing.T) {
	sm, _ := newTestSession(t)
	ctx := context.Background()

	cases := []struct {
		page     string
		loggedIn bool
		want     GuardDecision
	}{
		{page: "home.html", loggedIn: false, want: GuardDecision{RedirectTo: domain.PageLogin}},
		{page: "sellproduct", loggedIn: false, want: GuardDecision{RedirectTo: domain.PageLogin}},
		{page: "login.html", loggedIn: false, want: GuardDecision{Allow: true}},
		{page: "Register.HTML", loggedIn: false, want: GuardDecision{Allow: true}},
		{page: "", loggedIn: false, want: GuardDecision{Allow: true}},
		{page: "dashboard", loggedIn: true, want: GuardDecision{Allow: true}},
		{page: "login", loggedIn: true, want: GuardDecision{RedirectTo: domain.PageHome}},
		{page: "register.html", loggedIn: true, want: GuardDecision{RedirectTo: domain.PageHome}},
	}

	_, err := sm.Register(ctx, "Ana", "ana@shop.io", "secret")
	require.NoError(t, err)

	for _, tc := range cases {
		if tc.loggedIn {
			_, err := sm.Login(ctx, "ana@shop.io", "secret")
			require.NoError(t, err)
		} else {
			require.NoError(t, sm.Logout(ctx))
		}

		got, err := sm.GuardPage(ctx, tc.page)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "page %q loggedIn=%v", tc.page, tc.loggedIn)
	}
}

func TestGuardPage_StoreError(t *testing.T) {
	sm, store := newTestSession(t)
	store.failGet = true

	_, err := sm.GuardPage(context.Background(), "home")
	assert.ErrorIs(t, err, errStoreDown)
}
