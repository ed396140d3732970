package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/domain"
)

func vendedora() domain.Usuario {
	return domain.Usuario{Nombre: "Rosa Huamán", Email: "rosa@bodega.pe", Rol: domain.RolVendedor, Activo: true, Password: "secreto1"}
}

func TestUsuarioMapping_Variants(t *testing.T) {
	a := usuarioFromAPI(gjson.Parse(`{"id":2,"nombre":"Rosa Huamán","email":"rosa@bodega.pe","rol":"vendedor","activo":true,"password":"hash"}`))
	b := usuarioFromAPI(gjson.Parse(`{"id":2,"name":"Rosa Huamán","correo":"ROSA@bodega.pe","role":{"id":3,"nombre":"Vendedor"},"is_active":1}`))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("variants map differently (-a +b):\n%s", diff)
	}
	assert.Empty(t, a.Password)
	assert.Equal(t, domain.RolDespachador, rolFrom("Logística"))
}

func TestUsuarioMapping_RoundTripOmitsPassword(t *testing.T) {
	u := vendedora()
	u.Password = ""
	first := usuarioToAPI(u)
	raw, err := json.Marshal(first)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")

	second := usuarioToAPI(usuarioFromAPI(gjson.ParseBytes(raw)))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round trip lost data (-first +second):\n%s", diff)
	}
}

func TestUsuarios_Validation(t *testing.T) {
	exec := &countingExecutor{}
	svc := NewUsuarios(exec, zerolog.Nop())

	u := vendedora()
	u.Password = ""
	assert.Equal(t, "La contraseña es obligatoria", svc.Create(context.Background(), u).Message)

	u.Password = "123"
	assert.Equal(t, "La contraseña debe tener al menos 6 caracteres", svc.Update(context.Background(), 2, u).Message)

	u = vendedora()
	u.Rol = "gerente"
	assert.Equal(t, "El rol no es válido", svc.Create(context.Background(), u).Message)

	u = vendedora()
	u.Email = ""
	assert.Equal(t, "El email es obligatorio", svc.Create(context.Background(), u).Message)
	assert.Equal(t, 0, exec.count())

	// Updates may leave the password untouched.
	u = vendedora()
	u.Password = ""
	res := svc.Update(context.Background(), 2, u)
	assert.True(t, res.Success)
	assert.Equal(t, 1, exec.count())
}
