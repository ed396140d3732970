package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/bodega/internal/api"
)

// Outcome classifies a single check.
type Outcome int

const (
	// Reachable: the server answered with a status in [200,500).
	Reachable Outcome = iota
	// Rejected: the server answered with a 5xx.
	Rejected
	// TimedOut: the check hit its own deadline.
	TimedOut
	// Unreachable: no answer at all (DNS, refused, reset).
	Unreachable
	// Skipped: the check had no target configured.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Reachable:
		return "reachable"
	case Rejected:
		return "rejected"
	case TimedOut:
		return "timed-out"
	case Unreachable:
		return "unreachable"
	default:
		return "skipped"
	}
}

// Check is the result of probing one target.
type Check struct {
	Name    string
	URL     string
	Outcome Outcome
	Status  int
	Elapsed time.Duration
	Err     error
}

// Result is one completed probe.
type Result struct {
	Connected  bool
	Detail     string
	Checks     []Check
	StartedAt  time.Time
	FinishedAt time.Time
}

// Targets names what to probe. Empty targets are skipped.
type Targets struct {
	// Primary is the real listing endpoint, e.g. https://host/api/clientes.
	Primary string
	// Alternate is the bare domain.
	Alternate string
	// Diagnostic is probed like the others and reported with its timing;
	// usually the primary endpoint again.
	Diagnostic string
}

// Prober runs the checks. It holds no mutable state and may be called
// concurrently with itself.
type Prober struct {
	pinger  api.Pinger
	targets Targets
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

const defaultTimeout = 5 * time.Second

// New builds a prober. timeout bounds each check individually.
func New(pinger api.Pinger, targets Targets, timeout time.Duration, log zerolog.Logger) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Prober{
		pinger:  pinger,
		targets: targets,
		timeout: timeout,
		log:     log.With().Str("component", "probe").Logger(),
		now:     time.Now,
	}
}

// Targets returns what the prober checks.
func (p *Prober) Targets() Targets { return p.targets }

// Probe runs every check concurrently and reports connected when any of them
// reached the server. A 404 on the primary endpoint still counts as reached.
func (p *Prober) Probe(ctx context.Context) Result {
	started := p.now()
	named := []struct{ name, url string }{
		{"primary", p.targets.Primary},
		{"alternate", p.targets.Alternate},
		{"diagnostic", p.targets.Diagnostic},
	}
	checks := make([]Check, len(named))

	var g errgroup.Group
	for i, n := range named {
		i, n := i, n
		g.Go(func() error {
			checks[i] = p.check(ctx, n.name, n.url)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Checks: checks, StartedAt: started, FinishedAt: p.now()}
	for _, c := range checks {
		if c.Outcome == Reachable {
			res.Connected = true
			break
		}
	}
	res.Detail = describe(res)

	ev := p.log.Debug()
	if !res.Connected {
		ev = p.log.Warn()
	}
	for _, c := range checks {
		ev = ev.Str(c.Name, fmt.Sprintf("%s %d %s", c.Outcome, c.Status, c.Elapsed.Round(time.Millisecond)))
	}
	ev.Bool("connected", res.Connected).Msg("probe finished")
	return res
}

func (p *Prober) check(ctx context.Context, name, target string) Check {
	c := Check{Name: name, URL: target, Outcome: Skipped}
	if strings.TrimSpace(target) == "" {
		return c
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.now()
	status, err := p.pinger.Ping(cctx, target)
	c.Elapsed = p.now().Sub(start)
	c.Status = status

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded)):
		c.Outcome, c.Err = TimedOut, err
	case err != nil:
		c.Outcome, c.Err = Unreachable, err
	case status >= 200 && status < 500:
		c.Outcome = Reachable
	case status >= 500:
		c.Outcome = Rejected
	default:
		// 1xx/3xx that were not followed; the server is there but the
		// answer is not a usable one.
		c.Outcome = Rejected
	}
	return c
}

func describe(r Result) string {
	if r.Connected {
		for _, c := range r.Checks {
			if c.Outcome == Reachable {
				return fmt.Sprintf("Conectado (%s respondió HTTP %d en %s)", c.Name, c.Status, c.Elapsed.Round(time.Millisecond))
			}
		}
	}

	var rejected, timedOut, ran int
	status := 0
	for _, c := range r.Checks {
		switch c.Outcome {
		case Rejected:
			rejected++
			status = c.Status
			ran++
		case TimedOut:
			timedOut++
			ran++
		case Unreachable:
			ran++
		}
	}
	switch {
	case ran == 0:
		return "Sin destinos de verificación configurados"
	case rejected > 0:
		return fmt.Sprintf("El servidor rechazó la conexión (HTTP %d)", status)
	case timedOut == ran:
		return "El servidor no responde"
	default:
		return "Sin conexión con el servidor"
	}
}
