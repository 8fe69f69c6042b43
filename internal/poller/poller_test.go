package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/dvr"
	"github.com/technosupport/ts-dvr-gateway/internal/event"
	"github.com/technosupport/ts-dvr-gateway/internal/live"
	"github.com/technosupport/ts-dvr-gateway/internal/registry"
)

type mockLister struct {
	servers []*data.Server
}

func (m *mockLister) List(ctx context.Context, enabledOnly bool) ([]*data.Server, error) {
	return m.servers, nil
}

type mockEventStore struct {
	mu     sync.Mutex
	stored []*data.Event
	err    error
}

func (m *mockEventStore) Upsert(ctx context.Context, e *data.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	e.Seq = int64(len(m.stored) + 1)
	e.ReceivedAt = time.Now()
	m.stored = append(m.stored, e)
	return nil
}

type mockStateStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]*data.PollState
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{states: make(map[uuid.UUID]*data.PollState)}
}

func (m *mockStateStore) Get(ctx context.Context, serverID uuid.UUID) (*data.PollState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[serverID], nil
}

func (m *mockStateStore) Upsert(ctx context.Context, s *data.PollState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.states[s.ServerID] = s
	return nil
}

type mockFetcher struct {
	events []*event.Event
	err    error
	calls  int
}

func (m *mockFetcher) FetchEvents(ctx context.Context, server *data.Server, since time.Time, limit int) ([]*event.Event, int, error) {
	m.calls++
	return m.events, 0, m.err
}

type mockPub struct {
	mu   sync.Mutex
	msgs []*live.EventMessage
}

func (m *mockPub) Publish(msg *live.EventMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

type mockHub struct {
	mu   sync.Mutex
	msgs []*live.EventMessage
}

func (m *mockHub) Broadcast(msg *live.EventMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

type staticServerStore struct {
	server *data.Server
}

func (s *staticServerStore) GetByID(ctx context.Context, id uuid.UUID) (*data.Server, error) {
	if s.server != nil && s.server.ID == id {
		return s.server, nil
	}
	return nil, data.ErrRecordNotFound
}

type staticCameraLister struct {
	cams []dvr.Camera
}

func (s *staticCameraLister) ListCameras(ctx context.Context, server *data.Server) ([]dvr.Camera, error) {
	return s.cams, nil
}

func feedEvent(serverID uuid.UUID, id int64, location string, start time.Time) *event.Event {
	e := event.New(serverID)
	e.ID = id
	e.Level = event.LevelInfo
	e.Type = event.TypeCameraMotion
	e.SetLocation(location)
	e.SetUTCStart(start)
	e.SetDurationSeconds(10)
	return e
}

func newTestPoller(server *data.Server, fetcher FeedFetcher, events EventStore, state StateStore, pub Publisher, hub Broadcaster) *Poller {
	resolver := registry.NewResolver(
		&staticServerStore{server: server},
		&staticCameraLister{cams: []dvr.Camera{{ID: 3, Name: "Front Door"}}},
		time.Minute,
	)
	return New(&mockLister{servers: []*data.Server{server}}, events, state, fetcher,
		pub, hub, resolver, NewDedup(64, time.Minute), Config{Enabled: true})
}

func TestPollServerStoresAndEmits(t *testing.T) {
	serverID := uuid.New()
	server := &data.Server{ID: serverID, Name: "Main DVR", IsEnabled: true}
	start := time.Now().Add(-time.Minute).Truncate(time.Second)

	fetcher := &mockFetcher{events: []*event.Event{
		feedEvent(serverID, 1001, "camera-3", start),
		feedEvent(serverID, 1002, "system", start.Add(time.Second)),
	}}
	events := &mockEventStore{}
	state := newMockStateStore()
	pub := &mockPub{}
	hub := &mockHub{}

	p := newTestPoller(server, fetcher, events, state, pub, hub)
	p.pollServer(context.Background(), server)

	if len(events.stored) != 2 {
		t.Fatalf("stored = %d, want 2", len(events.stored))
	}
	if len(pub.msgs) != 2 || len(hub.msgs) != 2 {
		t.Fatalf("published = %d, broadcast = %d, want 2/2", len(pub.msgs), len(hub.msgs))
	}

	first := pub.msgs[0]
	if first.ServerName != "Main DVR" {
		t.Errorf("server name = %q", first.ServerName)
	}
	if first.UILocation != "Front Door" {
		t.Errorf("ui location = %q", first.UILocation)
	}

	st := state.states[serverID]
	if st == nil || st.ConsecutiveFailures != 0 || st.SinceTS == nil {
		t.Fatalf("state = %+v", st)
	}
	if !st.SinceTS.Equal(start.Add(time.Second)) {
		t.Errorf("since cursor = %v, want newest start", st.SinceTS)
	}
}

func TestPollServerDedupsRedelivery(t *testing.T) {
	serverID := uuid.New()
	server := &data.Server{ID: serverID, Name: "Main DVR", IsEnabled: true}
	start := time.Now().Add(-time.Minute)

	fetcher := &mockFetcher{events: []*event.Event{feedEvent(serverID, 1001, "camera-3", start)}}
	events := &mockEventStore{}
	state := newMockStateStore()

	p := newTestPoller(server, fetcher, events, state, &mockPub{}, &mockHub{})
	p.pollServer(context.Background(), server)
	p.pollServer(context.Background(), server)

	if len(events.stored) != 1 {
		t.Errorf("stored = %d, want 1 after redelivery", len(events.stored))
	}
}

func TestPollServerFailureAndBackoff(t *testing.T) {
	serverID := uuid.New()
	server := &data.Server{ID: serverID, Name: "Main DVR", IsEnabled: true}

	fetcher := &mockFetcher{err: errors.New("connection refused")}
	state := newMockStateStore()

	p := newTestPoller(server, fetcher, &mockEventStore{}, state, &mockPub{}, &mockHub{})
	p.pollServer(context.Background(), server)

	st := state.states[serverID]
	if st == nil || st.ConsecutiveFailures != 1 || st.LastError == nil {
		t.Fatalf("state after failure = %+v", st)
	}

	// Inside the backoff window the server is skipped entirely.
	p.pollServer(context.Background(), server)
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (backoff skip)", fetcher.calls)
	}

	// Second failure after the window increments the streak.
	st.UpdatedAt = time.Now().Add(-time.Minute)
	p.pollServer(context.Background(), server)
	if got := state.states[serverID].ConsecutiveFailures; got != 2 {
		t.Errorf("failures = %d, want 2", got)
	}
}
