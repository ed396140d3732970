package service

import (
	"errors"

	"github.com/five82/bodega/internal/api"
)

// User-facing copy for each failure kind. Connectivity problems share one
// message; validation errors are shown verbatim.
const (
	MsgSinConexion   = "No se pudo conectar con el servidor. Verifique su conexión e intente nuevamente."
	MsgErrorServidor = "El servidor tuvo un problema. Intente más tarde."
	MsgSesion        = "Su sesión expiró. Inicie sesión nuevamente."
	MsgPermisos      = "No tiene permisos para realizar esta acción."
	MsgNoExiste      = "El registro no existe."
	MsgFormato       = "El servidor respondió en un formato inesperado."
)

// UserMessage turns any error into copy that can be shown as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return MsgErrorServidor
	}
	switch apiErr.Kind {
	case api.KindTimeout, api.KindNetworkUnavailable:
		return MsgSinConexion
	case api.KindServerError:
		return MsgErrorServidor
	case api.KindValidationFailed:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Los datos enviados no son válidos."
	case api.KindUnauthenticated:
		return MsgSesion
	case api.KindForbidden:
		return MsgPermisos
	case api.KindNotFound:
		return MsgNoExiste
	case api.KindUnexpectedFormat:
		return MsgFormato
	default:
		return MsgErrorServidor
	}
}

// reclassify wraps err as an *api.Error whose message is user-facing while
// keeping the kind and the original cause.
func reclassify(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return &api.Error{Kind: api.KindUnknown, Op: op, Message: MsgErrorServidor, Err: err}
	}
	return &api.Error{
		Kind:    apiErr.Kind,
		Op:      op,
		Status:  apiErr.Status,
		Message: UserMessage(apiErr),
		Fields:  apiErr.Fields,
		Err:     err,
	}
}

// validationError is a local pre-submission failure.
func validationError(msg string) error {
	return &api.Error{Kind: api.KindValidationFailed, Op: "validate", Message: msg}
}
