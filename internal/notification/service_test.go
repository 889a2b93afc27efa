package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblisting/internal/database/dbtest"
	"joblisting/internal/errcode"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func TestCreateAndList(t *testing.T) {
	db := dbtest.New(t)
	pub := &recordingPublisher{}
	svc := NewService(db, pub, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", "Engineer", "first", "Pending")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "alice", "Engineer", "second", "Approved")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "Other", "not alice", "New")
	require.NoError(t, err)

	unread, err := svc.ListUnread(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, second.ID, unread[0].ID)
	assert.Equal(t, first.ID, unread[1].ID)
	assert.False(t, unread[0].IsRead)

	count, err := svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.Len(t, pub.events, 3)
	assert.Equal(t, "alice", pub.events[0].Username)
	assert.Equal(t, "first", pub.events[0].Message)
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db, nil, nil)
	ctx := context.Background()

	n, err := svc.Create(ctx, "alice", "Subject", "one", "New")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "Subject", "two", "New")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, n.ID))
	count, err := svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.MarkAllRead(ctx, "alice"))
		count, err = svc.UnreadCount(ctx, "alice")
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	all, err := svc.ListAll(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMarkReadMissing(t *testing.T) {
	svc := NewService(dbtest.New(t), nil, nil)

	err := svc.MarkRead(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))

	_, err = svc.Get(context.Background(), 42)
	assert.Equal(t, errcode.KindNotFound, errcode.KindOf(err))
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	db := dbtest.New(t)
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := NewService(db, pub, nil)

	_, err := svc.Create(context.Background(), "alice", "Subject", "msg", "New")
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCreateRequiresUsername(t *testing.T) {
	svc := NewService(dbtest.New(t), nil, nil)

	_, err := svc.Create(context.Background(), "  ", "Subject", "msg", "New")
	assert.Equal(t, errcode.KindValidation, errcode.KindOf(err))
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "user_notify:alice", Channel("alice"))
}
