package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/five82/bodega/internal/api"
)

func TestUserMessage_PerKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&api.Error{Kind: api.KindTimeout}, MsgSinConexion},
		{&api.Error{Kind: api.KindNetworkUnavailable}, MsgSinConexion},
		{&api.Error{Kind: api.KindServerError, Message: "SQLSTATE[23000]"}, MsgErrorServidor},
		{&api.Error{Kind: api.KindValidationFailed, Message: "El RUC ya existe"}, "El RUC ya existe"},
		{&api.Error{Kind: api.KindUnauthenticated}, MsgSesion},
		{&api.Error{Kind: api.KindForbidden}, MsgPermisos},
		{&api.Error{Kind: api.KindNotFound}, MsgNoExiste},
		{&api.Error{Kind: api.KindUnexpectedFormat}, MsgFormato},
		{errors.New("dial tcp: refused"), MsgErrorServidor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
	assert.Empty(t, UserMessage(nil))
}

func TestReclassify_KeepsKindAndCause(t *testing.T) {
	cause := &api.Error{Kind: api.KindTimeout, Message: "context deadline exceeded"}
	err := reclassify("listar clientes", cause)

	assert.Equal(t, MsgSinConexion, err.Error())
	assert.Equal(t, api.KindTimeout, api.KindOf(err))
	assert.True(t, errors.Is(err, cause))
}
