package session_test

import (
	"context"
	"testing"

	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/session"
	"github.com/Veraticus/finchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Load(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)

	sess := session.New(store)
	authenticated, err := sess.Load(ctx)
	require.NoError(t, err)
	assert.False(t, authenticated)
	assert.False(t, sess.Authenticated())

	require.NoError(t, store.SaveCredential(ctx, model.Credential{Token: "from-last-run"}))

	restarted := session.New(store)
	authenticated, err = restarted.Load(ctx)
	require.NoError(t, err)
	assert.True(t, authenticated)
	assert.True(t, restarted.Authenticated())
}

func TestSession_EstablishAndEnd(t *testing.T) {
	ctx := context.Background()
	sess := session.New(testutil.SetupTestStore(t))

	var events []session.Event
	unsubscribe := sess.Subscribe(func(e session.Event) { events = append(events, e) })

	require.NoError(t, sess.Establish(ctx, model.Credential{Token: "t"}, model.User{Email: "ana@x.com"}))
	assert.True(t, sess.IsAuthenticated(ctx))

	user, found, err := sess.User(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ana@x.com", user.Email)

	require.NoError(t, sess.End(ctx))
	assert.False(t, sess.IsAuthenticated(ctx))

	unsubscribe()
	require.NoError(t, sess.Invalidate(ctx))

	assert.Equal(t, []session.Event{
		{Reason: session.ReasonEstablished, Authenticated: true},
		{Reason: session.ReasonLoggedOut, Authenticated: false},
	}, events)
}

func TestSession_InvalidateClearsCredential(t *testing.T) {
	ctx := context.Background()
	sess := session.New(testutil.SetupTestStore(t))

	require.NoError(t, sess.Establish(ctx, model.Credential{Token: "t"}, model.User{}))

	var last session.Event
	sess.Subscribe(func(e session.Event) { last = e })

	require.NoError(t, sess.Invalidate(ctx))
	assert.Equal(t, session.ReasonExpired, last.Reason)
	assert.False(t, sess.Authenticated())

	cred, err := sess.Credential(ctx)
	require.NoError(t, err)
	assert.True(t, cred.IsZero())
}
