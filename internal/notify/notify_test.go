package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/noc-desk/internal/dismissal"
	"github.com/nhle/noc-desk/internal/logger"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/notify"
	"github.com/nhle/noc-desk/internal/store"
)

var base = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func ticketEvent(id string, minutes int) model.NotificationItem {
	return model.NotificationItem{
		ID: id, CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		TicketID: "t-" + id, TicketType: "sms", EventType: "status_changed",
	}
}

func alertEvent(id string, minutes int) model.NotificationItem {
	return model.NotificationItem{
		ID: id, CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		AlertTicketNumber: "#20240614abc", NotificationType: "unassigned",
	}
}

func requestEvent(id string, minutes int) model.NotificationItem {
	return model.NotificationItem{
		ID: id, CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		RequestID: "r-" + id,
	}
}

func itemIDs(items []model.NotificationItem) []string {
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

func TestClassify(t *testing.T) {
	assert.Equal(t, model.CategoryAlert, alertEvent("a", 0).Category())
	assert.Equal(t, model.CategoryRequest, requestEvent("r", 0).Category())
	assert.Equal(t, model.CategoryRequest, model.NotificationItem{Type: model.TypeRequestUpdate}.Category())
	assert.Equal(t, model.CategoryTicket, ticketEvent("t", 0).Category())

	both := alertEvent("x", 0)
	both.RequestID = "r"
	assert.Equal(t, model.CategoryAlert, both.Category(), "alert number wins")
}

func TestMergeOrdersByCreatedAtAndDropsDismissed(t *testing.T) {
	tickets := []model.NotificationItem{ticketEvent("t1", 1), ticketEvent("t2", 5)}
	alerts := []model.NotificationItem{alertEvent("a1", 3), alertEvent("a2", 5)}
	requests := []model.NotificationItem{requestEvent("r1", 4), ticketEvent("t1", 9)}

	merged := notify.Merge(
		[][]model.NotificationItem{tickets, alerts, requests},
		map[string]time.Time{"a1": base},
	)

	assert.Equal(t, []string{"t2", "a2", "r1", "t1"}, itemIDs(merged),
		"ties keep source order, duplicate ids keep the first copy")
	assert.Equal(t, base.Add(time.Minute), merged[3].CreatedAt)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, notify.Merge(nil, nil))
	assert.Empty(t, notify.Merge([][]model.NotificationItem{nil, {}}, nil))
}

func TestBadgePrecedence(t *testing.T) {
	merged := []model.NotificationItem{
		ticketEvent("t1", 3),
		ticketEvent("t2", 2),
		alertEvent("a1", 1),
	}
	read := map[string]time.Time{"t1": base}

	assert.Equal(t, model.CategoryAlert, notify.BadgeCategory(merged, read))
	assert.Equal(t, 2, notify.UnreadCount(merged, read))

	read["a1"] = base
	assert.Equal(t, model.CategoryTicket, notify.BadgeCategory(merged, read))

	read["t2"] = base
	assert.Equal(t, model.CategoryNone, notify.BadgeCategory(merged, read))
	assert.Zero(t, notify.UnreadCount(merged, read))

	urgentRequest := requestEvent("r1", 9)
	urgentRequest.Priority = model.PriorityUrgent
	lowTicket := ticketEvent("t9", 8)
	lowTicket.Priority = model.PriorityLow
	assert.Equal(t, model.CategoryTicket,
		notify.BadgeCategory([]model.NotificationItem{urgentRequest, lowTicket}, nil),
		"item priority does not affect precedence")
}

type recordingAck struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingAck) MarkRead(_ context.Context, kind model.Category, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, string(kind)+":"+id)
	return r.err
}

type fixture struct {
	feed  *notify.Feed
	store *store.MemoryStore
	clock *clock.Mock
	ack   *recordingAck
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ms := store.NewMemoryStore()
	mock := clock.NewMock()
	mock.Add(time.Duration(base.UnixNano()))
	ack := &recordingAck{}

	feed := notify.NewFeed(notify.FeedConfig{
		Read:      dismissal.New(ms, dismissal.ReadBucket("u1"), logger.Discard()),
		Dismissed: dismissal.New(ms, dismissal.DismissedBucket("u1"), logger.Discard()),
		Ack:       ack,
		Clock:     mock,
		Log:       logger.Discard(),
	})
	return fixture{feed: feed, store: ms, clock: mock, ack: ack}
}

func TestFeedMarkReadKeepsItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.Replace(model.FeedTicketModifications, []model.NotificationItem{ticketEvent("t1", 1), ticketEvent("t2", 2)})

	require.NoError(t, f.feed.MarkRead(ctx, "t1"))
	require.NoError(t, f.feed.MarkRead(ctx, "t1"))

	assert.Len(t, f.feed.Items(), 2)
	assert.True(t, f.feed.IsRead("t1"))
	assert.Equal(t, 1, f.feed.UnreadCount())

	marks, err := f.store.LoadMarks(ctx, dismissal.ReadBucket("u1"))
	require.NoError(t, err)
	assert.Contains(t, marks, "t1")
	assert.Empty(t, f.ack.calls, "reading is local")
}

func TestFeedDismissIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.Replace(model.FeedAlertNotifications, []model.NotificationItem{alertEvent("a1", 1)})
	f.feed.Replace(model.FeedTicketModifications, []model.NotificationItem{ticketEvent("t1", 2)})

	require.NoError(t, f.feed.Dismiss(ctx, "a1"))
	assert.Equal(t, []string{"t1"}, itemIDs(f.feed.Items()))
	assert.True(t, f.feed.IsRead("a1"))
	assert.Equal(t, []string{"alert:a1"}, f.ack.calls)

	// The next poll still reports the alert; it must stay hidden.
	f.feed.Replace(model.FeedAlertNotifications, []model.NotificationItem{alertEvent("a1", 1)})
	assert.Equal(t, []string{"t1"}, itemIDs(f.feed.Items()))
	assert.Equal(t, model.CategoryTicket, f.feed.Badge())

	dismissed, err := f.store.LoadMarks(ctx, dismissal.DismissedBucket("u1"))
	require.NoError(t, err)
	assert.Equal(t, base.UnixMilli(), dismissed["a1"])
}

func TestFeedDismissSurvivesAckFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ack.err = errors.New("503")
	f.feed.Replace(model.FeedRequestNotifications, []model.NotificationItem{requestEvent("r1", 1)})

	require.NoError(t, f.feed.Dismiss(ctx, "r1"))
	assert.Empty(t, f.feed.Items())
	assert.Equal(t, []string{"request:r1"}, f.ack.calls)
}

// storeCheckingAck records whether the dismissal was already stored when
// the backend was told.
type storeCheckingAck struct {
	ms        *store.MemoryStore
	calls     int
	persisted bool
}

func (a *storeCheckingAck) MarkRead(ctx context.Context, _ model.Category, id string) error {
	a.calls++
	dismissed, _ := a.ms.LoadMarks(ctx, dismissal.DismissedBucket("u1"))
	read, _ := a.ms.LoadMarks(ctx, dismissal.ReadBucket("u1"))
	_, d := dismissed[id]
	_, r := read[id]
	a.persisted = d && r
	return errors.New("429")
}

func TestFeedDismissStoresMarksBeforeAck(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	ack := &storeCheckingAck{ms: ms}
	feed := notify.NewFeed(notify.FeedConfig{
		Read:      dismissal.New(ms, dismissal.ReadBucket("u1"), logger.Discard()),
		Dismissed: dismissal.New(ms, dismissal.DismissedBucket("u1"), logger.Discard()),
		Ack:       ack,
		Log:       logger.Discard(),
	})
	feed.Replace(model.FeedTicketModifications, []model.NotificationItem{ticketEvent("n1", 1)})

	require.NoError(t, feed.Dismiss(ctx, "n1"))
	assert.Equal(t, 1, ack.calls)
	assert.True(t, ack.persisted)
}

func TestFeedDismissAgainMovesStamp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.feed.Dismiss(ctx, "t1"))
	require.NoError(t, f.feed.Dismiss(ctx, "t1"))
	first, err := f.store.LoadMarks(ctx, dismissal.DismissedBucket("u1"))
	require.NoError(t, err)
	assert.Equal(t, base.UnixMilli(), first["t1"], "same moment, same stamp")

	f.clock.Add(10 * time.Minute)
	require.NoError(t, f.feed.Dismiss(ctx, "t1"))
	later, err := f.store.LoadMarks(ctx, dismissal.DismissedBucket("u1"))
	require.NoError(t, err)
	assert.Equal(t, base.Add(10*time.Minute).UnixMilli(), later["t1"])
}

func TestFeedLoadRestoresMarks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.UpsertMark(ctx, dismissal.DismissedBucket("u1"), "t1", 1))
	require.NoError(t, f.store.UpsertMark(ctx, dismissal.ReadBucket("u1"), "t2", 1))

	f.feed.Replace(model.FeedTicketModifications, []model.NotificationItem{
		ticketEvent("t1", 1), ticketEvent("t2", 2), ticketEvent("t3", 3),
	})
	assert.Len(t, f.feed.Items(), 3)

	f.feed.Load(ctx)
	assert.Equal(t, []string{"t3", "t2"}, itemIDs(f.feed.Items()))
	assert.Equal(t, 1, f.feed.UnreadCount())
}

func TestFeedSourceOutageKeepsOthers(t *testing.T) {
	f := newFixture(t)
	f.feed.Replace(model.FeedTicketModifications, []model.NotificationItem{ticketEvent("t1", 1)})
	f.feed.Replace(model.FeedAlertNotifications, []model.NotificationItem{alertEvent("a1", 2)})

	f.feed.Replace(model.FeedAlertNotifications, nil)
	assert.Equal(t, []string{"t1"}, itemIDs(f.feed.Items()))
}

func TestFeedMarkAllRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.feed.Replace(model.FeedTicketModifications, []model.NotificationItem{ticketEvent("t1", 1), ticketEvent("t2", 2)})

	require.NoError(t, f.feed.MarkAllRead(ctx))
	assert.Zero(t, f.feed.UnreadCount())
	assert.Equal(t, model.CategoryNone, f.feed.Badge())

	marks, err := f.store.LoadMarks(ctx, dismissal.ReadBucket("u1"))
	require.NoError(t, err)
	assert.Len(t, marks, 2)
}

func TestFeedConcurrentDismissalsAllPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var items []model.NotificationItem
	for i := 0; i < 30; i++ {
		items = append(items, ticketEvent(string(rune('A'+i)), i))
	}
	f.feed.Replace(model.FeedTicketModifications, items)

	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, f.feed.Dismiss(ctx, id))
		}(it.ID)
	}
	wg.Wait()

	assert.Empty(t, f.feed.Items())
	marks, err := f.store.LoadMarks(ctx, dismissal.DismissedBucket("u1"))
	require.NoError(t, err)
	assert.Len(t, marks, 30)
}
