// Package dismissal keeps the per-user read and dismiss state that decides
// which bell and banner items are visible. State lives in a store.MarkStore
// and every write touches a single key.
package dismissal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/store"
)

// Bucket names. One bucket per (kind of mark, user).
func ReadBucket(userID string) string      { return "read:" + userID }
func DismissedBucket(userID string) string { return "dismissed:" + userID }

// BannerBucket holds the temporary dismissals of one banner feed.
func BannerBucket(feed, userID string) string { return "banner:" + feed + ":" + userID }

// Buckets lists every bucket holding userID's marks.
func Buckets(userID string) []string {
	out := []string{ReadBucket(userID), DismissedBucket(userID)}
	for _, feed := range model.BannerFeeds {
		out = append(out, BannerBucket(string(feed), userID))
	}
	return out
}

// ResetUser drops all of userID's marks, so every item the backend still
// reports shows again.
func ResetUser(ctx context.Context, ms store.MarkStore, userID string, log *slog.Logger) error {
	for _, b := range Buckets(userID) {
		if err := New(ms, b, log).Reset(ctx); err != nil {
			return fmt.Errorf("resetting %s: %w", b, err)
		}
	}
	return nil
}

// Marks is a typed view of one bucket: item id to the moment it was marked.
type Marks struct {
	store  store.MarkStore
	bucket string
	log    *slog.Logger
}

// New returns a view of bucket in ms. A nil logger uses slog.Default.
func New(ms store.MarkStore, bucket string, log *slog.Logger) *Marks {
	if log == nil {
		log = slog.Default()
	}
	return &Marks{store: ms, bucket: bucket, log: log}
}

// Bucket returns the bucket name.
func (m *Marks) Bucket() string { return m.bucket }

// Load returns every mark. A read failure is logged and yields an empty
// map; visibility decisions must never block on local storage.
func (m *Marks) Load(ctx context.Context) map[string]time.Time {
	raw, err := m.store.LoadMarks(ctx, m.bucket)
	if err != nil {
		m.log.Warn("loading marks failed, treating as empty",
			"bucket", m.bucket, "error", err)
		return map[string]time.Time{}
	}

	out := make(map[string]time.Time, len(raw))
	for id, ms := range raw {
		out[id] = time.UnixMilli(ms)
	}
	return out
}

// Set records id as marked at. An existing mark is overwritten.
func (m *Marks) Set(ctx context.Context, id string, at time.Time) error {
	return m.store.UpsertMark(ctx, m.bucket, id, at.UnixMilli())
}

// SetAll marks every id at the same moment, all or nothing.
func (m *Marks) SetAll(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ms := at.UnixMilli()
	batch := make(map[string]int64, len(ids))
	for _, id := range ids {
		batch[id] = ms
	}
	return m.store.UpsertMarks(ctx, m.bucket, batch)
}

// Reset drops every mark in the bucket.
func (m *Marks) Reset(ctx context.Context) error {
	return m.store.ResetMarks(ctx, m.bucket)
}
