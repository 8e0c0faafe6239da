// Package feed reconciles the paginated notification listing with live
// socket pushes into a single ordered view.
package feed

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

// Feed holds the merged notification list and its read-state bookkeeping.
// The TUI goroutine and the socket reader both call into it, so every
// method takes the internal mutex.
type Feed struct {
	client *client.Client
	log    *zap.Logger

	mu      sync.Mutex
	items   []domain.Notification
	seen    map[int64]bool
	unread  int
	total   int
	page    int
	hasMore bool
	filter  string
	epoch   int
}

// New creates an empty feed backed by the given client. A nil logger
// disables logging.
func New(c *client.Client, log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		client: c,
		log:    log,
		seen:   make(map[int64]bool),
	}
}

// Items returns a copy of the current list in display order.
func (f *Feed) Items() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Unread returns the current unread counter.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

// Total returns the server-reported total for the active filter.
func (f *Feed) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// Page returns the last page that was loaded.
func (f *Feed) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// HasMore reports whether another page can be loaded.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Filter returns the active type filter, empty for all types.
func (f *Feed) Filter() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// LoadPage fetches one page for the active filter and merges it in.
// With replace the whole list is swapped, otherwise results are appended
// with id dedup, keeping the first-seen position of anything already
// present. A response that comes back after the filter changed is
// discarded.
func (f *Feed) LoadPage(ctx context.Context, page int, replace bool) error {
	f.mu.Lock()
	epoch := f.epoch
	filter := f.filter
	f.mu.Unlock()

	res, err := f.client.Notifications(ctx, page, filter)
	if err != nil {
		return fmt.Errorf("feed.LoadPage: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		f.log.Debug("dropping stale page load",
			zap.Int("page", page), zap.String("filter", filter))
		return nil
	}
	if replace {
		f.resetLocked()
	}
	for _, n := range res.Results {
		if f.seen[n.ID] {
			continue
		}
		f.seen[n.ID] = true
		f.items = append(f.items, n)
		if !n.IsRead {
			f.unread++
		}
	}
	f.page = page
	f.total = res.Count
	f.hasMore = res.HasNext()
	return nil
}

// SetFilter switches the type filter and reloads the first page. In-flight
// loads started under the previous filter will be dropped on arrival.
func (f *Feed) SetFilter(ctx context.Context, typ string) error {
	f.mu.Lock()
	f.epoch++
	f.filter = typ
	f.resetLocked()
	f.mu.Unlock()
	return f.LoadPage(ctx, 1, true)
}

// Reload starts the current filter over from page one. Like SetFilter it
// bumps the epoch first, so an older in-flight page load cannot append
// after the fresh first page lands.
func (f *Feed) Reload(ctx context.Context) error {
	f.mu.Lock()
	f.epoch++
	f.resetLocked()
	f.mu.Unlock()
	return f.LoadPage(ctx, 1, true)
}

func (f *Feed) resetLocked() {
	f.items = f.items[:0]
	f.seen = make(map[int64]bool)
	f.unread = 0
	f.page = 0
	f.hasMore = false
}

// MarkRead flips a notification to read locally, then confirms with the
// server. On failure the local flip is rolled back and the error returned.
func (f *Feed) MarkRead(ctx context.Context, id int64) error {
	if !f.flip(id, true) {
		return nil
	}
	if err := f.client.MarkNotificationRead(ctx, id); err != nil {
		f.flip(id, false)
		return fmt.Errorf("feed.MarkRead: %w", err)
	}
	return nil
}

// MarkUnread is the inverse of MarkRead, with the same rollback contract.
func (f *Feed) MarkUnread(ctx context.Context, id int64) error {
	if !f.flip(id, false) {
		return nil
	}
	if err := f.client.MarkNotificationUnread(ctx, id); err != nil {
		f.flip(id, true)
		return fmt.Errorf("feed.MarkUnread: %w", err)
	}
	return nil
}

// flip applies a local read-state change and adjusts the unread counter.
// It reports false when the item is absent or already in the target state.
func (f *Feed) flip(id int64, read bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID != id || f.items[i].IsRead == read {
			continue
		}
		f.items[i].IsRead = read
		if read {
			if f.unread > 0 {
				f.unread--
			}
		} else {
			f.unread++
		}
		return true
	}
	return false
}

// MarkAllRead marks every notification read in one bulk call. Calling it
// again with nothing unread is harmless.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	if err := f.client.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("feed.MarkAllRead: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].IsRead = true
	}
	f.unread = 0
	return nil
}

// ApplyEvent folds one socket frame into the feed. Unknown frame types are
// logged and dropped.
func (f *Feed) ApplyEvent(ev domain.StreamEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ev.Type {
	case domain.EventSendNotification:
		if ev.Notification == nil {
			f.log.Warn("send_notification frame without payload")
			return
		}
		n := *ev.Notification
		if f.seen[n.ID] {
			return
		}
		f.seen[n.ID] = true
		f.items = append([]domain.Notification{n}, f.items...)
		f.total++
		if !n.IsRead {
			f.unread++
		}
	case domain.EventUnreadNotifications:
		f.resetLocked()
		unread := 0
		for _, n := range ev.Notifications {
			if f.seen[n.ID] {
				continue
			}
			f.seen[n.ID] = true
			f.items = append(f.items, n)
			if !n.IsRead {
				unread++
			}
		}
		f.total = len(f.items)
		f.unread = unread
	default:
		f.log.Warn("unknown stream frame", zap.String("type", ev.Type))
	}
}

// RefreshUnread replaces the local unread counter with the server's count.
func (f *Feed) RefreshUnread(ctx context.Context) error {
	n, err := f.client.UnreadNotifications(ctx)
	if err != nil {
		return fmt.Errorf("feed.RefreshUnread: %w", err)
	}
	f.mu.Lock()
	f.unread = n
	f.mu.Unlock()
	return nil
}
