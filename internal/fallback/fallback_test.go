package fallback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
	"github.com/five82/bodega/internal/service"
)

func clientesOver(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*service.Clientes, []domain.Cliente) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, api.WithTimeout(timeout))
	require.NoError(t, err)
	svc := service.NewClientes(client, zerolog.Nop())
	return svc, svc.FromDataset(Bundled().Records("clientes"))
}

func listPage(svc *service.Clientes) Fetch[domain.Cliente] {
	return func(ctx context.Context) (api.Paginated[domain.Cliente], error) { return svc.List(ctx, 1) }
}

func TestRead_TimeoutReturnsStaticDatasetExactly(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	svc, static := clientesOver(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	require.NotEmpty(t, static)

	res := Read(context.Background(), listPage(svc), static)
	assert.Equal(t, SourceFallback, res.Decision.Source)
	assert.Equal(t, "timeout", res.Decision.Reason)
	assert.NoError(t, res.Err)
	if diff := cmp.Diff(static, res.Page.Data); diff != "" {
		t.Fatalf("fallback rows differ from the bundled dataset (-want +got):\n%s", diff)
	}
	assert.Equal(t, len(static), res.Page.Meta.Total)
}

func TestRead_EmptyButLiveIsNotFallback(t *testing.T) {
	svc, static := clientesOver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"links":{"first":null,"last":null,"prev":null,"next":null},"meta":{"current_page":1,"last_page":1,"per_page":15,"total":0}}`))
	}, time.Second)

	res := Read(context.Background(), listPage(svc), static)
	assert.Equal(t, SourceLive, res.Decision.Source)
	assert.NotNil(t, res.Page.Data)
	assert.Empty(t, res.Page.Data)
	assert.Empty(t, res.Warning)
}

func TestRead_UnexpectedFormatIsLiveWithWarning(t *testing.T) {
	svc, static := clientesOver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":1}]}`))
	}, time.Second)

	res := Read(context.Background(), listPage(svc), static)
	assert.Equal(t, SourceLive, res.Decision.Source)
	assert.Empty(t, res.Page.Data)
	assert.Equal(t, WarningFormato, res.Warning)
}

func TestRead_FailureKinds(t *testing.T) {
	static := []domain.Cliente{{ID: 1, Nombre: "Estático"}}
	tests := []struct {
		name   string
		err    error
		source Source
		rows   int
		hasErr bool
	}{
		{"network", &api.Error{Kind: api.KindNetworkUnavailable}, SourceFallback, 1, false},
		{"server", &api.Error{Kind: api.KindServerError, Status: 500}, SourceFallback, 1, false},
		{"not found", &api.Error{Kind: api.KindNotFound, Status: 404}, SourceFallback, 1, false},
		{"bad request", &api.Error{Kind: api.KindValidationFailed, Status: 400}, SourceFallback, 1, false},
		{"foreign error", errors.New("boom"), SourceFallback, 1, false},
		{"unauthenticated", &api.Error{Kind: api.KindUnauthenticated, Status: 401}, SourceLive, 0, true},
		{"forbidden", &api.Error{Kind: api.KindForbidden, Status: 403}, SourceLive, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Read(context.Background(), func(context.Context) (api.Paginated[domain.Cliente], error) {
				return api.Paginated[domain.Cliente]{}, tt.err
			}, static)
			assert.Equal(t, tt.source, res.Decision.Source)
			assert.Len(t, res.Page.Data, tt.rows)
			assert.Equal(t, tt.hasErr, res.Err != nil)
		})
	}
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "live", SourceLive.String())
	assert.Equal(t, "local-fallback", SourceFallback.String())
}

func TestSyncState_Pending(t *testing.T) {
	for state, pending := range map[SyncState]bool{
		Synced:        false,
		Static:        false,
		PendingCreate: true,
		PendingUpdate: true,
		PendingDelete: true,
	} {
		assert.Equal(t, pending, state.Pending(), state.String())
	}
}

func TestBundledDataset(t *testing.T) {
	ds := Bundled()
	assert.NotEmpty(t, ds.Version)
	for _, plural := range []string{"clientes", "productos", "usuarios"} {
		assert.NotEmpty(t, ds.Records(plural), plural)
	}
	assert.NotNil(t, ds.Records("ventas"))
	assert.Empty(t, ds.Records("ventas"))

	for _, raw := range []string{`{`, `[]`, `{"clientes":[]}`} {
		_, err := ParseDataset([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestBundledDataset_MapsAndValidates(t *testing.T) {
	svc := service.NewClientes(nil, zerolog.Nop())
	for _, c := range svc.FromDataset(Bundled().Records("clientes")) {
		assert.NotZero(t, c.ID)
		assert.NotEmpty(t, c.DisplayName())
		assert.NotEmpty(t, c.Telefonos)
	}
	productos := service.NewProductos(nil, zerolog.Nop()).FromDataset(Bundled().Records("productos"))
	for _, p := range productos {
		assert.True(t, p.Precio.IsPositive(), p.Codigo)
	}
}
