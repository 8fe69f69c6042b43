// Package poller drives event ingestion: it walks the enabled DVR
// servers on a ticker, pulls each server's feed under a time budget,
// normalizes and stores what survives dedup, and hands the result to
// NATS and the live stream.
package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/dvr"
	"github.com/technosupport/ts-dvr-gateway/internal/event"
	"github.com/technosupport/ts-dvr-gateway/internal/live"
	"github.com/technosupport/ts-dvr-gateway/internal/metrics"
	"github.com/technosupport/ts-dvr-gateway/internal/registry"
)

type Config struct {
	Enabled          bool
	PollInterval     time.Duration
	MaxInflight      int
	MaxEventsPerPoll int
	TimeBudget       time.Duration
	Backoff          time.Duration
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.MaxInflight <= 0 {
		c.MaxInflight = 10
	}
	if c.MaxEventsPerPoll <= 0 {
		c.MaxEventsPerPoll = 200
	}
	if c.TimeBudget <= 0 {
		c.TimeBudget = 8 * time.Second
	}
	if c.Backoff <= 0 {
		c.Backoff = 30 * time.Second
	}
}

type ServerLister interface {
	List(ctx context.Context, enabledOnly bool) ([]*data.Server, error)
}

type EventStore interface {
	Upsert(ctx context.Context, e *data.Event) error
}

type StateStore interface {
	Get(ctx context.Context, serverID uuid.UUID) (*data.PollState, error)
	Upsert(ctx context.Context, s *data.PollState) error
}

type FeedFetcher interface {
	FetchEvents(ctx context.Context, server *data.Server, since time.Time, limit int) ([]*event.Event, int, error)
}

type Publisher interface {
	Publish(msg *live.EventMessage) error
}

type Broadcaster interface {
	Broadcast(msg *live.EventMessage)
}

// ClientFetcher fetches over each server's own HTTP client.
type ClientFetcher struct{}

func (ClientFetcher) FetchEvents(ctx context.Context, server *data.Server, since time.Time, limit int) ([]*event.Event, int, error) {
	client := dvr.NewClient(server.BaseURL, dvr.Credentials{Username: server.Username, Password: server.Password})
	return client.FetchEvents(ctx, server.ID, since, limit)
}

type Poller struct {
	servers  ServerLister
	events   EventStore
	state    StateStore
	fetcher  FeedFetcher
	pub      Publisher
	hub      Broadcaster
	resolver *registry.Resolver
	dedup    *Dedup

	cfgMu sync.RWMutex
	cfg   Config

	sem      chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(servers ServerLister, events EventStore, state StateStore, fetcher FeedFetcher,
	pub Publisher, hub Broadcaster, resolver *registry.Resolver, dedup *Dedup, cfg Config) *Poller {

	cfg.applyDefaults()
	return &Poller{
		servers:  servers,
		events:   events,
		state:    state,
		fetcher:  fetcher,
		pub:      pub,
		hub:      hub,
		resolver: resolver,
		dedup:    dedup,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.MaxInflight),
		stopChan: make(chan struct{}),
	}
}

func (p *Poller) config() Config {
	p.cfgMu.RLock()
	defer p.cfgMu.RUnlock()
	return p.cfg
}

// UpdateConfig swaps the tunables on a config reload. The inflight
// semaphore keeps its original size; everything else takes effect on
// the next round.
func (p *Poller) UpdateConfig(cfg Config) {
	cfg.applyDefaults()
	p.cfgMu.Lock()
	cfg.MaxInflight = p.cfg.MaxInflight
	p.cfg = cfg
	p.cfgMu.Unlock()
}

func (p *Poller) Start() {
	if !p.config().Enabled {
		return
	}
	p.wg.Add(1)
	go p.runLoop()
}

func (p *Poller) Stop() {
	if !p.config().Enabled {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Poller) runLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.config().PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			if cfg := p.config(); cfg.Enabled {
				ticker.Reset(cfg.PollInterval)
				p.pollAll()
			}
		}
	}
}

func (p *Poller) pollAll() {
	ctx := context.Background()
	servers, err := p.servers.List(ctx, true)
	if err != nil {
		log.Printf("[ERROR] poller: listing servers: %v", err)
		return
	}

	for _, server := range servers {
		select {
		case p.sem <- struct{}{}:
			p.wg.Add(1)
			metrics.PollInflight.Inc()
			go func(s *data.Server) {
				defer p.wg.Done()
				defer func() {
					<-p.sem
					metrics.PollInflight.Dec()
				}()
				p.pollServer(ctx, s)
			}(server)
		default:
			metrics.FeedPollsTotal.WithLabelValues("fail", "capacity_full").Inc()
		}
	}
}

func (p *Poller) pollServer(ctx context.Context, server *data.Server) {
	cfg := p.config()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.TimeBudget)
	defer cancel()

	state, err := p.state.Get(fetchCtx, server.ID)
	if err != nil {
		if err != context.DeadlineExceeded && err != context.Canceled {
			log.Printf("[ERROR] poller (%s): fetching state: %v", server.Name, err)
		}
		return
	}

	// A failing server is retried on the backoff cadence, not every tick.
	if state != nil && state.ConsecutiveFailures > 0 {
		if time.Since(state.UpdatedAt) < cfg.Backoff {
			return
		}
	}

	since := time.Now().Add(-1 * time.Hour) // lookback window on first poll
	if state != nil && state.SinceTS != nil {
		since = *state.SinceTS
	}

	events, skipped, err := p.fetcher.FetchEvents(fetchCtx, server, since, cfg.MaxEventsPerPoll)
	if err != nil {
		metrics.FeedPollsTotal.WithLabelValues("fail", "fetch_error").Inc()
		p.recordFailure(server.ID, err.Error(), state)
		return
	}
	if skipped > 0 {
		metrics.EventsMalformedTotal.Add(float64(skipped))
	}

	var lastTime time.Time
	for _, e := range events {
		key := BuildDedupKey(server.ID, e.LocationID(), e.Type.Code(), e.UTCStart())
		if p.dedup.IsDuplicate(key) {
			metrics.EventsDuplicateTotal.Inc()
			continue
		}

		stored := &data.Event{
			ServerID:        server.ID,
			EventID:         e.ID,
			MediaID:         e.MediaID,
			Level:           e.Level.Code(),
			Type:            e.Type.Code(),
			LocationID:      e.LocationID(),
			StartUTC:        e.UTCStart(),
			DurationSeconds: e.DurationSeconds(),
			TzOffsetMins:    e.ServerTzOffsetMins(),
		}
		if err := p.events.Upsert(fetchCtx, stored); err != nil {
			metrics.FeedPollsTotal.WithLabelValues("fail", "store_error").Inc()
			p.recordFailure(server.ID, fmt.Sprintf("store_fail: %v", err), state)
			return
		}
		metrics.EventsIngestedTotal.Inc()

		cameraName := p.resolver.CameraName(fetchCtx, server.ID, e.LocationID())
		msg := live.NewEventMessage(e, stored.Seq, server.Name, cameraName, stored.ReceivedAt)

		if p.pub != nil {
			if err := p.pub.Publish(msg); err != nil {
				metrics.PublishFailuresTotal.Inc()
				log.Printf("[ERROR] poller (%s): publish: %v", server.Name, err)
			}
		}
		if p.hub != nil {
			p.hub.Broadcast(msg)
		}

		if e.UTCStart().After(lastTime) {
			lastTime = e.UTCStart()
		}
	}

	metrics.FeedPollsTotal.WithLabelValues("ok", "").Inc()
	if lastTime.IsZero() {
		lastTime = time.Now()
	}
	p.recordSuccess(server.ID, lastTime, state)
}

func (p *Poller) recordFailure(serverID uuid.UUID, errStr string, oldState *data.PollState) {
	failures := 1
	if oldState != nil {
		failures = oldState.ConsecutiveFailures + 1
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := &data.PollState{
		ServerID:            serverID,
		LastError:           &errStr,
		ConsecutiveFailures: failures,
	}
	if oldState != nil {
		s.LastSuccessAt = oldState.LastSuccessAt
		s.SinceTS = oldState.SinceTS
	}

	if err := p.state.Upsert(dbCtx, s); err != nil {
		log.Printf("[ERROR] poller (%s): saving failure state: %v", serverID, err)
	}
}

func (p *Poller) recordSuccess(serverID uuid.UUID, since time.Time, oldState *data.PollState) {
	now := time.Now()

	dbCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s := &data.PollState{
		ServerID:            serverID,
		LastSuccessAt:       &now,
		SinceTS:             &since,
		ConsecutiveFailures: 0,
	}
	if err := p.state.Upsert(dbCtx, s); err != nil {
		log.Printf("[ERROR] poller (%s): saving success state: %v", serverID, err)
	}
}
