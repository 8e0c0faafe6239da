package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/advancepark/parkterm/internal/creds"
	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

func notif(id int64, typ domain.NotificationType, read bool) domain.Notification {
	return domain.Notification{
		ID:     id,
		Title:  fmt.Sprintf("notification %d", id),
		Type:   typ,
		IsRead: read,
	}
}

// notifServer serves a canned page per (page, type) key and counts
// read-state mutations.
type notifServer struct {
	pages       map[string]domain.NotificationPage
	markAllHits int64
	failMarks   atomic.Bool
}

func (s *notifServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/notifications/notifications/":
			page := r.URL.Query().Get("page")
			if page == "" {
				page = "1"
			}
			key := page + "|" + r.URL.Query().Get("type")
			res, ok := s.pages[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"detail": "invalid page"}) //nolint:errcheck
				return
			}
			json.NewEncoder(w).Encode(res) //nolint:errcheck
		case r.URL.Path == "/notifications/notifications/mark_all_read/":
			atomic.AddInt64(&s.markAllHits, 1)
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/read/"):
			if s.failMarks.Load() {
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(map[string]string{"error": "upstream down"}) //nolint:errcheck
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestFeed(t *testing.T, s *notifServer) *Feed {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	c := client.New(srv.URL, creds.NewMemStore(domain.TokenPair{Access: "acc", Refresh: "ref"}), nil)
	return New(c, nil)
}

func ids(items []domain.Notification) []int64 {
	out := make([]int64, len(items))
	for i, n := range items {
		out[i] = n.ID
	}
	return out
}

func TestLoadPageMergeDedupsAndKeepsOrder(t *testing.T) {
	next := "next"
	s := &notifServer{pages: map[string]domain.NotificationPage{
		"1|": {
			Results: []domain.Notification{
				notif(1, domain.NotificationGeneral, false),
				notif(2, domain.NotificationGeneral, false),
				notif(3, domain.NotificationGeneral, false),
			},
			Count: 5,
			Next:  &next,
		},
		// Page 2 overlaps page 1: the backend shifted under us.
		"2|": {
			Results: []domain.Notification{
				notif(3, domain.NotificationGeneral, false),
				notif(4, domain.NotificationGeneral, false),
				notif(5, domain.NotificationGeneral, false),
			},
			Count: 5,
		},
	}}
	f := newTestFeed(t, s)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	if !f.HasMore() {
		t.Error("HasMore() = false after page 1")
	}
	if err := f.LoadPage(ctx, 2, false); err != nil {
		t.Fatal(err)
	}

	got := ids(f.Items())
	want := []int64{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
	if f.HasMore() {
		t.Error("HasMore() = true after last page")
	}
	if f.Total() != 5 {
		t.Errorf("Total() = %d, want 5", f.Total())
	}
}

func TestSetFilterLeavesOnlyMatchingItems(t *testing.T) {
	s := &notifServer{pages: map[string]domain.NotificationPage{
		"1|": {
			Results: []domain.Notification{
				notif(1, domain.NotificationGeneral, false),
				notif(2, domain.NotificationSpotAvailable, false),
				notif(3, domain.NotificationGeneral, false),
			},
			Count: 3,
		},
		"1|spot_available": {
			Results: []domain.Notification{
				notif(2, domain.NotificationSpotAvailable, false),
			},
			Count: 1,
		},
	}}
	f := newTestFeed(t, s)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	if err := f.SetFilter(ctx, "spot_available"); err != nil {
		t.Fatal(err)
	}

	items := f.Items()
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("items after filter = %v", ids(items))
	}
	for _, n := range items {
		if n.Type != domain.NotificationSpotAvailable {
			t.Errorf("stale cross-filter item %d of type %s", n.ID, n.Type)
		}
	}
	if f.Filter() != "spot_available" {
		t.Errorf("Filter() = %q", f.Filter())
	}
}

func TestStaleLoadDiscardedAfterFilterChange(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/notifications/", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		typ := r.URL.Query().Get("type")
		switch {
		case page == "2" && typ == "":
			// The slow unfiltered page-2 request: held until the
			// filter has already changed.
			<-release
			json.NewEncoder(w).Encode(domain.NotificationPage{ //nolint:errcheck
				Results: []domain.Notification{notif(9, domain.NotificationGeneral, false)},
				Count:   2,
			})
		case typ == "general":
			json.NewEncoder(w).Encode(domain.NotificationPage{ //nolint:errcheck
				Results: []domain.Notification{notif(1, domain.NotificationGeneral, false)},
				Count:   1,
			})
		default:
			json.NewEncoder(w).Encode(domain.NotificationPage{ //nolint:errcheck
				Results: []domain.Notification{notif(1, domain.NotificationGeneral, false)},
				Count:   2,
			})
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(client.New(srv.URL, creds.NewMemStore(domain.TokenPair{Access: "a", Refresh: "r"}), nil), nil)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}

	staleDone := make(chan error, 1)
	go func() { staleDone <- f.LoadPage(ctx, 2, false) }()

	if err := f.SetFilter(ctx, "general"); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-staleDone; err != nil {
		t.Fatalf("stale load: %v", err)
	}

	got := ids(f.Items())
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("items = %v, want [1] (stale page merged in)", got)
	}
	if f.Unread() != 1 {
		t.Errorf("Unread() = %d, want 1", f.Unread())
	}
}

func TestReloadDiscardsInFlightOlderPage(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/notifications/notifications/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			// Page 2 under the same filter: held until the reload's fresh
			// first page has already landed.
			close(started)
			<-release
			json.NewEncoder(w).Encode(domain.NotificationPage{ //nolint:errcheck
				Results: []domain.Notification{notif(9, domain.NotificationGeneral, false)},
				Count:   2,
			})
			return
		}
		json.NewEncoder(w).Encode(domain.NotificationPage{ //nolint:errcheck
			Results: []domain.Notification{notif(1, domain.NotificationGeneral, false)},
			Count:   2,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(client.New(srv.URL, creds.NewMemStore(domain.TokenPair{Access: "a", Refresh: "r"}), nil), nil)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}

	staleDone := make(chan error, 1)
	go func() { staleDone <- f.LoadPage(ctx, 2, false) }()
	<-started

	if err := f.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-staleDone; err != nil {
		t.Fatalf("stale load: %v", err)
	}

	got := ids(f.Items())
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("items = %v, want [1] (older page appended after reload)", got)
	}
	if f.Page() != 1 {
		t.Errorf("Page() = %d, want 1", f.Page())
	}
}

func TestMarkAllReadIdempotent(t *testing.T) {
	s := &notifServer{pages: map[string]domain.NotificationPage{
		"1|": {
			Results: []domain.Notification{
				notif(1, domain.NotificationGeneral, false),
				notif(2, domain.NotificationGeneral, false),
			},
			Count: 2,
		},
	}}
	f := newTestFeed(t, s)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	if f.Unread() != 2 {
		t.Fatalf("Unread() = %d, want 2", f.Unread())
	}

	for i := 0; i < 2; i++ {
		if err := f.MarkAllRead(ctx); err != nil {
			t.Fatalf("MarkAllRead() call %d: %v", i+1, err)
		}
		if f.Unread() != 0 {
			t.Errorf("Unread() = %d after call %d, want 0", f.Unread(), i+1)
		}
	}
	for _, n := range f.Items() {
		if !n.IsRead {
			t.Errorf("notification %d still unread", n.ID)
		}
	}
	if got := atomic.LoadInt64(&s.markAllHits); got != 2 {
		t.Errorf("mark_all_read hits = %d, want 2", got)
	}
}

func TestPushMergesAtHeadAndCountsUnread(t *testing.T) {
	s := &notifServer{pages: map[string]domain.NotificationPage{
		"1|": {
			Results: []domain.Notification{
				notif(1, domain.NotificationGeneral, false),
				notif(2, domain.NotificationGeneral, false),
				notif(3, domain.NotificationGeneral, false),
				notif(4, domain.NotificationGeneral, false),
				notif(5, domain.NotificationGeneral, false),
			},
			Count: 5,
		},
	}}
	f := newTestFeed(t, s)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	pushed := notif(6, domain.NotificationBookingReminder, false)
	f.ApplyEvent(domain.StreamEvent{
		Type:         domain.EventSendNotification,
		Notification: &pushed,
	})

	if f.Unread() != 6 {
		t.Errorf("Unread() = %d, want 6", f.Unread())
	}
	got := ids(f.Items())
	want := []int64{6, 1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}

	// A duplicate push is a no-op.
	f.ApplyEvent(domain.StreamEvent{
		Type:         domain.EventSendNotification,
		Notification: &pushed,
	})
	if len(f.Items()) != 6 || f.Unread() != 6 {
		t.Errorf("after duplicate push: %d items, %d unread", len(f.Items()), f.Unread())
	}

	if err := f.MarkRead(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if f.Unread() != 5 {
		t.Errorf("Unread() = %d after MarkRead, want 5", f.Unread())
	}
}

func TestUnreadSnapshotReplacesList(t *testing.T) {
	f := New(client.New("http://unused", creds.NewMemStore(domain.TokenPair{}), nil), nil)
	f.ApplyEvent(domain.StreamEvent{
		Type:         domain.EventSendNotification,
		Notification: &domain.Notification{ID: 99, Title: "old"},
	})
	f.ApplyEvent(domain.StreamEvent{
		Type: domain.EventUnreadNotifications,
		Notifications: []domain.Notification{
			notif(10, domain.NotificationGeneral, false),
			notif(11, domain.NotificationGeneral, false),
		},
	})

	got := ids(f.Items())
	if len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Fatalf("items = %v, want [10 11]", got)
	}
	if f.Unread() != 2 {
		t.Errorf("Unread() = %d, want 2", f.Unread())
	}
}

func TestMarkReadRollsBackOnFailure(t *testing.T) {
	s := &notifServer{pages: map[string]domain.NotificationPage{
		"1|": {
			Results: []domain.Notification{
				notif(1, domain.NotificationGeneral, false),
				notif(2, domain.NotificationGeneral, true),
			},
			Count: 2,
		},
	}}
	f := newTestFeed(t, s)
	ctx := context.Background()

	if err := f.LoadPage(ctx, 1, true); err != nil {
		t.Fatal(err)
	}
	s.failMarks.Store(true)

	if err := f.MarkRead(ctx, 1); err == nil {
		t.Fatal("expected MarkRead error")
	}
	items := f.Items()
	if items[0].IsRead {
		t.Error("rollback failed: notification 1 left read")
	}
	if f.Unread() != 1 {
		t.Errorf("Unread() = %d after rollback, want 1", f.Unread())
	}

	if err := f.MarkUnread(ctx, 2); err == nil {
		t.Fatal("expected MarkUnread error")
	}
	if !f.Items()[1].IsRead {
		t.Error("rollback failed: notification 2 left unread")
	}
	if f.Unread() != 1 {
		t.Errorf("Unread() = %d after unread rollback, want 1", f.Unread())
	}
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	f := New(client.New("http://unused", creds.NewMemStore(domain.TokenPair{}), nil), nil)
	if err := f.MarkRead(context.Background(), 42); err != nil {
		t.Fatalf("MarkRead on absent id: %v", err)
	}
}

func TestMalformedEventDropped(t *testing.T) {
	f := New(client.New("http://unused", creds.NewMemStore(domain.TokenPair{}), nil), nil)
	f.ApplyEvent(domain.StreamEvent{Type: "mystery_frame"})
	f.ApplyEvent(domain.StreamEvent{Type: domain.EventSendNotification}) // no payload
	if len(f.Items()) != 0 || f.Unread() != 0 {
		t.Errorf("malformed events mutated the feed: %d items, %d unread",
			len(f.Items()), f.Unread())
	}
}

func TestRefreshUnreadSyncsCounter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications/notifications/unread_count/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"unread": ` + strconv.Itoa(7) + `}`)) //nolint:errcheck
	}))
	defer srv.Close()

	f := New(client.New(srv.URL, creds.NewMemStore(domain.TokenPair{Access: "a", Refresh: "r"}), nil), nil)
	if err := f.RefreshUnread(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.Unread() != 7 {
		t.Errorf("Unread() = %d, want 7", f.Unread())
	}
}
