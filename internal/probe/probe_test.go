package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bodega/internal/api"
)

type pingFunc func(ctx context.Context, url string) (int, error)

func (f pingFunc) Ping(ctx context.Context, url string) (int, error) { return f(ctx, url) }

func byURL(answers map[string]func(ctx context.Context) (int, error)) pingFunc {
	return func(ctx context.Context, url string) (int, error) {
		if fn, ok := answers[url]; ok {
			return fn(ctx)
		}
		return 0, errors.New("dial tcp: connection refused")
	}
}

func status(code int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return code, nil }
}

func hang(ctx context.Context) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

var targets = Targets{Primary: "p", Alternate: "a", Diagnostic: "d"}

func outcomes(r Result) map[string]Outcome {
	out := map[string]Outcome{}
	for _, c := range r.Checks {
		out[c.Name] = c.Outcome
	}
	return out
}

func TestProbe_PrimaryTimesOutAlternateAnswers(t *testing.T) {
	release := make(chan struct{})
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	alternate := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(func() {
		close(release)
		primary.Close()
		alternate.Close()
	})

	client, err := api.NewClient(primary.URL + "/api")
	require.NoError(t, err)

	p := New(client, Targets{Primary: primary.URL + "/api/clientes", Alternate: alternate.URL}, 200*time.Millisecond, zerolog.Nop())
	res := p.Probe(context.Background())

	assert.True(t, res.Connected)
	got := outcomes(res)
	assert.Equal(t, TimedOut, got["primary"])
	assert.Equal(t, Reachable, got["alternate"])
	assert.Equal(t, Skipped, got["diagnostic"])
	assert.Contains(t, res.Detail, "alternate")
	assert.Less(t, res.FinishedAt.Sub(res.StartedAt), 2*time.Second)
}

func TestProbe_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		outcome   Outcome
		connected bool
	}{
		{"ok", 200, Reachable, true},
		{"not found still reachable", 404, Reachable, true},
		{"unprocessable still reachable", 422, Reachable, true},
		{"unauthorized still reachable", 401, Reachable, true},
		{"server error", 500, Rejected, false},
		{"bad gateway", 502, Rejected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(byURL(map[string]func(context.Context) (int, error){"p": status(tt.code)}), Targets{Primary: "p"}, time.Second, zerolog.Nop())
			res := p.Probe(context.Background())
			assert.Equal(t, tt.outcome, outcomes(res)["primary"])
			assert.Equal(t, tt.connected, res.Connected)
		})
	}
}

func TestProbe_DetailDistinguishesFailures(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]func(context.Context) (int, error)
		detail  string
	}{
		{"all time out", map[string]func(context.Context) (int, error){"p": hang, "a": hang, "d": hang}, "El servidor no responde"},
		{"rejected", map[string]func(context.Context) (int, error){"p": status(503), "a": hang}, "El servidor rechazó la conexión (HTTP 503)"},
		{"nothing answers", map[string]func(context.Context) (int, error){}, "Sin conexión con el servidor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(byURL(tt.answers), targets, 50*time.Millisecond, zerolog.Nop())
			res := p.Probe(context.Background())
			assert.False(t, res.Connected)
			assert.Equal(t, tt.detail, res.Detail)
		})
	}
}

func TestProbe_ChecksRunConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	slow := func(ctx context.Context) (int, error) {
		n := inflight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inflight.Add(-1)
		return 200, nil
	}
	p := New(byURL(map[string]func(context.Context) (int, error){"p": slow, "a": slow, "d": slow}), targets, time.Second, zerolog.Nop())

	res := p.Probe(context.Background())
	assert.True(t, res.Connected)
	assert.Equal(t, int32(3), peak.Load())
}

func TestProbe_NoTargets(t *testing.T) {
	res := New(byURL(nil), Targets{}, time.Second, zerolog.Nop()).Probe(context.Background())
	assert.False(t, res.Connected)
	assert.Equal(t, "Sin destinos de verificación configurados", res.Detail)
}

func TestProbe_ConcurrentWithItself(t *testing.T) {
	p := New(byURL(map[string]func(context.Context) (int, error){"p": status(200)}), targets, time.Second, zerolog.Nop())
	done := make(chan Result, 4)
	for i := 0; i < 4; i++ {
		go func() { done <- p.Probe(context.Background()) }()
	}
	for i := 0; i < 4; i++ {
		assert.True(t, (<-done).Connected)
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "timed-out", TimedOut.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unreachable", Unreachable.String())
}
