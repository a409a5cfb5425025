package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	ShopID int64
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager[payload]()
	k := Key{UserID: 100, ChatID: -200}

	require.Nil(t, m.Get(k))
	require.Equal(t, StateIdle, m.GetState(k))
	require.False(t, m.InProgress(100, -200))

	m.Begin(k, State("select_shop"), &payload{})
	require.True(t, m.InProgress(100, -200))
	require.Equal(t, State("select_shop"), m.GetState(k))

	sess := m.Get(k)
	require.NotNil(t, sess)
	sess.Data.ShopID = 42

	m.SetState(k, State("enter_description"))
	require.Equal(t, State("enter_description"), m.GetState(k))
	require.Equal(t, int64(42), m.Get(k).Data.ShopID)

	m.Clear(k)
	require.Nil(t, m.Get(k))
	require.False(t, m.InProgress(100, -200))
}

func TestManagerSessionsIndependentPerChat(t *testing.T) {
	m := NewManager[payload]()
	private := Key{UserID: 100, ChatID: 100}
	group := Key{UserID: 100, ChatID: -500}

	m.Begin(private, State("select_shop"), &payload{ShopID: 1})
	require.True(t, m.InProgress(100, 100))
	require.False(t, m.InProgress(100, -500))

	m.Begin(group, State("enter_description"), &payload{ShopID: 2})
	require.Equal(t, int64(1), m.Get(private).Data.ShopID)
	require.Equal(t, int64(2), m.Get(group).Data.ShopID)

	m.Clear(group)
	require.True(t, m.InProgress(100, 100))
}

func TestSetStateIgnoresMissingSession(t *testing.T) {
	m := NewManager[payload]()
	k := Key{UserID: 7, ChatID: 7}

	m.SetState(k, State("enter_description"))
	require.Nil(t, m.Get(k))
	require.Equal(t, StateIdle, m.GetState(k))
}
