package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

func mayorista() domain.Cliente {
	return domain.Cliente{
		Tipo:        domain.ClienteMayorista,
		RazonSocial: "Distribuidora Norte SAC",
		RUC:         "20123456789",
		Email:       "ventas@norte.pe",
		Direccion:   "Av. Industrial 123",
		Distrito:    "Ate",
		Telefonos:   []domain.Telefono{{Numero: "987654321", Tipo: "celular"}},
		Activo:      true,
	}
}

func TestClientes_CreateShortRUCNeverCallsExecutor(t *testing.T) {
	exec := &countingExecutor{}
	svc := NewClientes(exec, zerolog.Nop())

	c := mayorista()
	c.RUC = "2012345678"
	res := svc.Create(context.Background(), c)

	assert.False(t, res.Success)
	assert.Equal(t, "El RUC debe tener 11 dígitos", res.Message)
	assert.Nil(t, res.Data)
	assert.Equal(t, api.KindValidationFailed, api.KindOf(res.Err))
	assert.Equal(t, 0, exec.count())
}

func TestClientes_InvalidDTOsShortCircuit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Cliente)
		message string
	}{
		{"missing razon social", func(c *domain.Cliente) { c.RazonSocial = " " }, "La razón social es obligatoria"},
		{"short razon social", func(c *domain.Cliente) { c.RazonSocial = "AB" }, "La razón social debe tener al menos 3 caracteres"},
		{"missing ruc", func(c *domain.Cliente) { c.RUC = "" }, "El RUC es obligatorio"},
		{"ruc with letters", func(c *domain.Cliente) { c.RUC = "2012345678X" }, "El RUC debe tener 11 dígitos"},
		{"no phones", func(c *domain.Cliente) { c.Telefonos = nil }, "Debe registrar al menos un teléfono"},
		{"blank phone only", func(c *domain.Cliente) { c.Telefonos = []domain.Telefono{{Numero: " "}} }, "Debe registrar al menos un teléfono"},
		{"bad phone", func(c *domain.Cliente) { c.Telefonos = []domain.Telefono{{Numero: "12ab"}} }, "El teléfono 12ab no es válido"},
		{"bad email", func(c *domain.Cliente) { c.Email = "ventas@" }, "El email no es válido"},
		{"no tipo", func(c *domain.Cliente) { c.Tipo = "" }, "El tipo de cliente es obligatorio"},
		{"minorista without dni", func(c *domain.Cliente) {
			c.Tipo = domain.ClienteMinorista
			c.Nombre = "Lucía Quispe"
		}, "El DNI es obligatorio"},
		{"minorista short dni", func(c *domain.Cliente) {
			c.Tipo = domain.ClienteMinorista
			c.Nombre = "Lucía Quispe"
			c.DNI = "1234567"
		}, "El DNI debe tener 8 dígitos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &countingExecutor{}
			svc := NewClientes(exec, zerolog.Nop())
			c := mayorista()
			tt.mutate(&c)

			res := svc.Create(context.Background(), c)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)

			res = svc.Update(context.Background(), 5, c)
			assert.False(t, res.Success)
			assert.Equal(t, 0, exec.count())
		})
	}
}

func TestClientes_CreateDuplicateRUCMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"ruc":["El RUC ya existe"]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)

	res := NewClientes(client, zerolog.Nop()).Create(context.Background(), mayorista())
	require.False(t, res.Success)
	assert.Equal(t, "Errores de validación: ruc: El RUC ya existe", res.Message)
	require.Error(t, res.Err)
	assert.Equal(t, "Errores de validación: ruc: El RUC ya existe", res.Err.Error())
	assert.Equal(t, api.KindValidationFailed, api.KindOf(res.Err))
}

func TestClientes_ListNormalizesEveryEnvelope(t *testing.T) {
	records := `[{"id":1,"tipo_cliente":"mayorista","razon_social":"Norte SAC","ruc":"20123456789","telefonos":[{"numero":"987654321","tipo":"celular"}]},{"id":2,"tipo_cliente":"minorista","nombre":"Ana Ríos","dni":"12345678","telefonos":[{"number":"912345678"}]}]`
	bodies := map[string]string{
		"array":     records,
		"keyed":     `{"clientes":` + records + `}`,
		"paginated": `{"data":` + records + `,"links":{"first":null,"last":null,"prev":null,"next":null},"meta":{"current_page":1,"last_page":1,"per_page":2,"total":2,"from":1,"to":2}}`,
	}

	var want *api.Paginated[domain.Cliente]
	for name, body := range bodies {
		exec := (&countingExecutor{}).push(body, nil)
		page, err := NewClientes(exec, zerolog.Nop()).List(context.Background(), 1)
		require.NoError(t, err, name)
		require.Len(t, page.Data, 2, name)
		if want == nil {
			want = &page
			continue
		}
		if diff := cmp.Diff(*want, page); diff != "" {
			t.Fatalf("%s normalized differently (-want +got):\n%s", name, diff)
		}
	}
	assert.Equal(t, "Norte SAC", want.Data[0].DisplayName())
	assert.Equal(t, "912345678", want.Data[1].Telefonos[0].Numero)
}

func TestClienteMapping_VariantsCollapse(t *testing.T) {
	snake := gjson.Parse(`{"id":3,"tipo_cliente":"mayorista","razon_social":"Norte SAC","ruc":"20123456789","email":"VENTAS@norte.pe","telefonos":[{"numero":"987654321","tipo":"Fijo"}],"activo":1}`)
	camel := gjson.Parse(`{"id":3,"tipoCliente":"mayorista","razonSocial":"Norte SAC","ruc":"20123456789","correo":"ventas@norte.pe","phones":[{"number":"987654321","type":"fijo"}],"estado":"activo"}`)

	a, b := clienteFromAPI(snake), clienteFromAPI(camel)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("variants map differently (-snake +camel):\n%s", diff)
	}
	assert.Equal(t, "fijo", a.Telefonos[0].Tipo)
	assert.True(t, a.Activo)
}

func TestClienteMapping_Defaults(t *testing.T) {
	c := clienteFromAPI(gjson.Parse(`{"id":8,"ruc":"20123456789","telefono":"987654321"}`))
	assert.Equal(t, domain.ClienteMayorista, c.Tipo)
	assert.Equal(t, []domain.Telefono{{Numero: "987654321", Tipo: "celular"}}, c.Telefonos)
	assert.True(t, c.Activo)

	empty := clienteFromAPI(gjson.Parse(`{}`))
	assert.NotNil(t, empty.Telefonos)
	assert.Equal(t, domain.ClienteMinorista, empty.Tipo)
}

func TestClienteMapping_RoundTrip(t *testing.T) {
	for _, c := range []domain.Cliente{mayorista(), {
		Tipo:      domain.ClienteMinorista,
		Nombre:    "Ana Ríos",
		DNI:       "12345678",
		Telefonos: []domain.Telefono{{Numero: "912345678", Tipo: "celular"}, {Numero: "014567890", Tipo: "fijo"}},
	}} {
		first := clienteToAPI(c)
		raw, err := json.Marshal(first)
		require.NoError(t, err)

		second := clienteToAPI(clienteFromAPI(gjson.ParseBytes(raw)))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("round trip lost data (-first +second):\n%s", diff)
		}
	}
}

func TestClientes_ListAllWalksPages(t *testing.T) {
	exec := (&countingExecutor{}).
		push(`{"data":[{"id":1},{"id":2}],"meta":{"current_page":1,"last_page":2,"per_page":2,"total":3}}`, nil).
		push(`{"data":[{"id":3}],"meta":{"current_page":2,"last_page":2,"per_page":2,"total":3}}`, nil)

	all, err := NewClientes(exec, zerolog.Nop()).ListAll(context.Background())
	require.NoError(t, err)

	got := make([]int64, 0, len(all))
	for _, c := range all {
		got = append(got, c.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
	require.Len(t, exec.calls, 2)
	assert.Equal(t, "/clientes", exec.calls[0].Endpoint)
	assert.Equal(t, "/clientes?page=2", exec.calls[1].Endpoint)
}

func TestClientes_ListAllStopsWhenPageDoesNotAdvance(t *testing.T) {
	stuck := `{"data":[{"id":1}],"meta":{"current_page":1,"last_page":3,"per_page":1,"total":3}}`
	exec := (&countingExecutor{}).push(stuck, nil).push(stuck, nil).push(stuck, nil)

	all, err := NewClientes(exec, zerolog.Nop()).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Len(t, exec.calls, 2)
}

func TestClientes_ListAllCapsAtFirstLastPage(t *testing.T) {
	exec := (&countingExecutor{}).
		push(`{"data":[{"id":1}],"meta":{"current_page":1,"last_page":2}}`, nil).
		push(`{"data":[{"id":2}],"meta":{"current_page":2,"last_page":9}}`, nil).
		push(`{"data":[{"id":3}],"meta":{"current_page":3,"last_page":9}}`, nil)

	all, err := NewClientes(exec, zerolog.Nop()).ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, exec.calls, 2)
}

func TestClientes_ReadErrorsAreReclassified(t *testing.T) {
	exec := (&countingExecutor{}).push("", &api.Error{Kind: api.KindTimeout, Message: "context deadline exceeded"})

	_, err := NewClientes(exec, zerolog.Nop()).List(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, api.KindTimeout, api.KindOf(err))
	assert.Equal(t, MsgSinConexion, err.Error())
}

func TestClientes_WriteReplies(t *testing.T) {
	exec := (&countingExecutor{}).
		push(`{"success":true,"message":"Cliente creado","data":{"id":41,"tipo_cliente":"mayorista","razon_social":"Distribuidora Norte SAC","ruc":"20123456789"}}`, nil).
		push(`{"id":41,"tipo_cliente":"mayorista","razon_social":"Norte Renombrada SAC","ruc":"20123456789"}`, nil).
		push(``, nil)
	svc := NewClientes(exec, zerolog.Nop())

	created := svc.Create(context.Background(), mayorista())
	require.True(t, created.Success)
	assert.Equal(t, "Cliente creado", created.Message)
	assert.Equal(t, int64(41), created.Data.ID)

	updated := svc.Update(context.Background(), 41, mayorista())
	require.True(t, updated.Success)
	assert.Equal(t, "Cliente actualizado correctamente", updated.Message)
	assert.Equal(t, "Norte Renombrada SAC", updated.Data.RazonSocial)

	deleted := svc.Delete(context.Background(), 41)
	require.True(t, deleted.Success)
	assert.Equal(t, "Cliente eliminado correctamente", deleted.Message)

	require.Len(t, exec.calls, 3)
	assert.Equal(t, http.MethodPost, exec.calls[0].Method)
	assert.Equal(t, "/clientes/41", exec.calls[1].Endpoint)
	assert.Equal(t, http.MethodDelete, exec.calls[2].Method)

	bad := svc.Delete(context.Background(), 0)
	assert.False(t, bad.Success)
	assert.Len(t, exec.calls, 3)
}

func TestClientes_ExplicitFailureReply(t *testing.T) {
	exec := (&countingExecutor{}).push(`{"success":false,"message":"El cliente tiene pedidos"}`, nil)
	res := NewClientes(exec, zerolog.Nop()).Delete(context.Background(), 3)
	assert.False(t, res.Success)
	assert.Equal(t, "El cliente tiene pedidos", res.Message)
}
