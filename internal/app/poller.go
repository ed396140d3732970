package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/bodega/internal/probe"
	"github.com/five82/bodega/internal/state"
)

const defaultPollInterval = 30 * time.Second

// Prober is what the poller runs on every tick.
type Prober interface {
	Probe(ctx context.Context) probe.Result
}

// Poller probes connectivity immediately on Start and then on a fixed
// interval, writing every result to the store. Each probe runs in its own
// goroutine so a slow probe never delays the next tick or a manual refresh.
type Poller struct {
	prober   Prober
	store    *state.Store
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewPoller builds a stopped poller.
func NewPoller(prober Prober, store *state.Store, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		prober:   prober,
		store:    store,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

// Start launches the loop and returns immediately. It is a no-op when the
// poller is already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.launchLocked()
	p.wg.Add(1)
	go p.loop(p.ctx)
	p.log.Debug().Dur("interval", p.interval).Msg("poller started")
}

// RefreshNow runs one extra probe. The ticker keeps its phase. It reports
// false when the poller is not running.
func (p *Poller) RefreshNow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.ctx.Err() != nil {
		return false
	}
	p.launchLocked()
	return true
}

// Stop cancels the loop and any probe in flight, then waits for every
// goroutine the poller started.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug().Msg("poller stopped")
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			if ctx.Err() == nil {
				p.launchLocked()
			}
			p.mu.Unlock()
		}
	}
}

// launchLocked starts one probe. Callers hold p.mu so Stop cannot slip in
// between the running check and wg.Add.
func (p *Poller) launchLocked() {
	ctx := p.ctx
	p.store.Begin()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		res := p.prober.Probe(ctx)
		if ctx.Err() != nil {
			// Cancelled by Stop; the outcome says nothing about the server.
			p.store.Abandon()
			return
		}
		p.store.Complete(res)
		if !res.Connected {
			p.log.Warn().Str("detail", res.Detail).Msg("api unreachable")
		}
	}()
}
