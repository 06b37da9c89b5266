package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/noc-desk/internal/logger"
	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

func next(t *testing.T, p *Poller) ResultMsg {
	t.Helper()
	select {
	case msg := <-p.Results():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poll result")
		return ResultMsg{}
	}
}

func TestPollerTicksAndTriggers(t *testing.T) {
	mock := clock.NewMock()
	p := New(mock, logger.Discard())

	var calls atomic.Int32
	p.Register(Job{
		Feed:     model.FeedTicketModifications,
		Interval: 10 * time.Second,
		Fetch: func(context.Context) (Payload, error) {
			n := calls.Add(1)
			return Payload{Bell: []model.NotificationItem{{ID: string(rune('a' + n - 1))}}}, nil
		},
	})

	require.NotNil(t, p.Start())
	defer p.Stop()
	assert.Nil(t, p.Start(), "second start is a no-op")

	first := next(t, p)
	assert.Equal(t, model.FeedTicketModifications, first.Feed)
	assert.Equal(t, uint64(1), first.Seq)
	assert.NotEmpty(t, first.CycleID)
	assert.Equal(t, "a", first.Payload.Bell[0].ID)

	mock.Add(10 * time.Second)
	second := next(t, p)
	assert.Equal(t, uint64(2), second.Seq)

	p.Trigger(model.FeedTicketModifications)
	third := next(t, p)
	assert.Equal(t, uint64(3), third.Seq)
	assert.Equal(t, "c", third.Payload.Bell[0].ID)

	statuses := p.GetStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, SyncIdle, statuses[0].State)
}

func TestPollerReportsFetchErrors(t *testing.T) {
	p := New(clock.NewMock(), logger.Discard())
	p.Register(Job{
		Feed: model.FeedAlertNotifications,
		Fetch: func(context.Context) (Payload, error) {
			return Payload{}, &source.AuthError{Message: "expired"}
		},
	})
	p.Register(Job{
		Feed: model.FeedRequestNotifications,
		Fetch: func(context.Context) (Payload, error) {
			return Payload{}, errors.New("connection refused")
		},
	})

	results := p.RefreshAll(context.Background())
	require.Len(t, results, 2)

	assert.True(t, results[0].AuthError)
	assert.Error(t, results[0].Error)
	assert.False(t, results[1].AuthError)
	assert.EqualError(t, results[1].Error, "connection refused")

	for _, s := range p.GetStatuses() {
		assert.Equal(t, SyncError, s.State, s.Feed)
	}
}

func TestRefreshAllRunsFeedsConcurrently(t *testing.T) {
	p := New(clock.NewMock(), logger.Discard())

	release := make(chan struct{})
	var started atomic.Int32
	block := func(context.Context) (Payload, error) {
		started.Add(1)
		<-release
		return Payload{}, nil
	}
	for _, feed := range model.BellFeeds {
		p.Register(Job{Feed: feed, Fetch: block})
	}

	done := make(chan []ResultMsg)
	go func() { done <- p.RefreshAll(context.Background()) }()

	require.Eventually(t, func() bool { return started.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	close(release)

	results := <-done
	require.Len(t, results, 3)
	for i, feed := range model.BellFeeds {
		assert.Equal(t, feed, results[i].Feed)
		assert.Equal(t, uint64(1), results[i].Seq)
	}
}

func TestSeqIsPerFeedAndMonotonic(t *testing.T) {
	p := New(clock.NewMock(), logger.Discard())
	ok := func(context.Context) (Payload, error) { return Payload{}, nil }
	p.Register(Job{Feed: model.FeedUnassignedAlerts, Fetch: ok})
	p.Register(Job{Feed: model.FeedAssignedReminders, Fetch: ok})

	p.RefreshAll(context.Background())
	results := p.RefreshAll(context.Background())

	assert.Equal(t, uint64(2), results[0].Seq)
	assert.Equal(t, uint64(2), results[1].Seq)
}

func TestRegisterDefaultsInterval(t *testing.T) {
	p := New(nil, nil)
	p.Register(Job{Feed: model.FeedSMSTickets, Fetch: func(context.Context) (Payload, error) { return Payload{}, nil }})
	assert.Equal(t, defaultInterval, p.jobs[0].Interval)

	p.Trigger("unknown")
	p.Stop()
}

func TestPollerRestartsAfterStop(t *testing.T) {
	p := New(clock.NewMock(), logger.Discard())
	p.Register(Job{
		Feed:     model.FeedAssignedReminders,
		Interval: time.Minute,
		Fetch:    func(context.Context) (Payload, error) { return Payload{}, nil },
	})

	require.NotNil(t, p.Start())
	assert.Equal(t, uint64(1), next(t, p).Seq)
	p.Stop()

	require.NotNil(t, p.Start(), "stopped poller starts again")
	assert.Equal(t, uint64(2), next(t, p).Seq, "restarted feed fetches right away")

	assert.NotPanics(t, func() {
		p.Stop()
		p.Stop()
	})
}
