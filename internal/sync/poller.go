package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/source"
)

// SyncState represents the current state of a feed.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state for a single feed.
type SyncStatus struct {
	Feed     model.FeedName
	State    SyncState
	LastSync time.Time
	Error    error
}

// Payload is what one fetch produced. Only the field matching the feed's
// kind is set.
type Payload struct {
	Bell    []model.NotificationItem
	Banner  []model.BannerItem
	Tickets []model.Ticket
}

// ResultMsg is a tea.Msg sent when a fetch cycle completes. Seq increases
// with every cycle started for the same feed, so a consumer can drop a
// result that finished after a newer one was applied.
type ResultMsg struct {
	Feed    model.FeedName
	Seq     uint64
	CycleID string
	Payload Payload
	Error   error

	// AuthError is set when the backend rejected the token.
	AuthError bool
}

// Job is one polled feed.
type Job struct {
	Feed     model.FeedName
	Interval time.Duration
	Fetch    func(ctx context.Context) (Payload, error)
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// defaultInterval applies to jobs registered without an interval.
const defaultInterval = 30 * time.Second

// Poller runs one ticker per registered feed and publishes every cycle's
// result on a channel.
type Poller struct {
	clock clock.Clock
	log   *slog.Logger

	mu        gosync.Mutex
	jobs      []Job
	seq       map[model.FeedName]uint64
	statuses  map[model.FeedName]*SyncStatus
	running   bool
	stopCh    chan struct{}
	resultCh  chan ResultMsg
	triggerCh map[model.FeedName]chan struct{}
	wg        gosync.WaitGroup
}

// New creates a Poller. A nil clock uses the wall clock; a nil logger
// uses slog.Default.
func New(clk clock.Clock, log *slog.Logger) *Poller {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{
		clock:     clk,
		log:       log,
		seq:       make(map[model.FeedName]uint64),
		statuses:  make(map[model.FeedName]*SyncStatus),
		resultCh:  make(chan ResultMsg, 64),
		triggerCh: make(map[model.FeedName]chan struct{}),
	}
}

// Register adds a feed. Jobs registered after Start are not polled.
func (p *Poller) Register(job Job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if job.Interval <= 0 {
		job.Interval = defaultInterval
	}
	p.jobs = append(p.jobs, job)
	p.statuses[job.Feed] = &SyncStatus{Feed: job.Feed, State: SyncIdle}
	p.triggerCh[job.Feed] = make(chan struct{}, 1)
}

// Results exposes the result channel for consumers outside Bubble Tea.
func (p *Poller) Results() <-chan ResultMsg {
	return p.resultCh
}

// Start launches one polling goroutine per feed and returns a tea.Cmd
// that delivers the first result. A stopped poller can be started again.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	jobs := append([]Job(nil), p.jobs...)
	p.mu.Unlock()

	for _, job := range jobs {
		p.wg.Add(1)
		go p.pollFeed(job, stop)
	}

	return p.waitForResult()
}

// Stop halts all polling goroutines and waits for them to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// Trigger asks the feed's goroutine for an immediate cycle. A trigger that
// is already pending absorbs this one.
func (p *Poller) Trigger(feed model.FeedName) {
	p.mu.Lock()
	ch, ok := p.triggerCh[feed]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// RefreshAll runs one cycle of every feed concurrently and returns the
// results once all have finished. Failed fetches are reported in their
// ResultMsg, never as an error that cancels the others.
func (p *Poller) RefreshAll(ctx context.Context) []ResultMsg {
	p.mu.Lock()
	jobs := append([]Job(nil), p.jobs...)
	p.mu.Unlock()

	results := make([]ResultMsg, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = p.runCycle(gctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// GetStatuses returns the current sync status of all feeds.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.jobs))
	for _, job := range p.jobs {
		statuses = append(statuses, *p.statuses[job.Feed])
	}
	return statuses
}

// pollFeed runs the polling loop for a single feed.
func (p *Poller) pollFeed(job Job, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := p.clock.Ticker(job.Interval)
	defer ticker.Stop()

	p.mu.Lock()
	trigger := p.triggerCh[job.Feed]
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Do an initial fetch immediately
	p.publish(p.runCycle(ctx, job))

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.publish(p.runCycle(ctx, job))
		case <-trigger:
			p.publish(p.runCycle(ctx, job))
		}
	}
}

// runCycle performs one fetch. The sequence number is taken before the
// fetch starts so cycles are ordered by when they began.
func (p *Poller) runCycle(ctx context.Context, job Job) ResultMsg {
	msg := ResultMsg{
		Feed:    job.Feed,
		Seq:     p.nextSeq(job.Feed),
		CycleID: uuid.NewString(),
	}
	p.setStatus(job.Feed, SyncRunning, nil)

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	payload, err := job.Fetch(fetchCtx)
	if err != nil {
		p.setStatus(job.Feed, SyncError, err)
		p.log.Warn("fetch failed",
			"feed", job.Feed, "seq", msg.Seq, "cycle", msg.CycleID, "error", err)
		msg.Error = err
		msg.AuthError = source.IsAuthError(err)
		return msg
	}

	p.setStatus(job.Feed, SyncIdle, nil)
	msg.Payload = payload
	return msg
}

func (p *Poller) nextSeq(feed model.FeedName) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq[feed]++
	return p.seq[feed]
}

// setStatus updates the sync status for a feed.
func (p *Poller) setStatus(feed model.FeedName, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[feed]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = p.clock.Now()
	}
}

// publish sends a result without blocking. When the consumer falls behind
// the result is dropped; the next cycle supersedes it anyway.
func (p *Poller) publish(msg ResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		p.log.Debug("result dropped, consumer busy", "feed", msg.Feed, "seq", msg.Seq)
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling a ResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
