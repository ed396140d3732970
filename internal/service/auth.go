package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
	"github.com/five82/bodega/internal/session"
)

// SessionStore is the persisted session collaborator.
type SessionStore interface {
	Save(token string, user session.User) error
	Clear() error
}

// Auth signs operators in and out.
type Auth struct {
	exec     api.Executor
	sessions SessionStore
	log      zerolog.Logger
}

// NewAuth builds the authentication facade.
func NewAuth(exec api.Executor, sessions SessionStore, log zerolog.Logger) *Auth {
	return &Auth{exec: exec, sessions: sessions, log: log.With().Str("component", "auth").Logger()}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts the credentials to /login and stores the returned token and
// user. The token is accepted at the top level or under "data".
func (a *Auth) Login(ctx context.Context, email, password string) domain.SubmissionResult[domain.Usuario] {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email, true); err != nil {
		return domain.Failed[domain.Usuario](err.Error(), err)
	}
	if password == "" {
		err := validationError("La contraseña es obligatoria")
		return domain.Failed[domain.Usuario](err.Error(), err)
	}

	resp, err := a.exec.Do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password})
	if err != nil {
		a.log.Warn().Str("kind", api.KindOf(err).String()).Msg("login failed")
		classified := reclassify("iniciar sesión", err)
		if api.IsKind(err, api.KindUnauthenticated) {
			classified = &api.Error{Kind: api.KindUnauthenticated, Op: "iniciar sesión", Status: http.StatusUnauthorized, Message: "Credenciales incorrectas", Err: err}
		}
		return domain.Failed[domain.Usuario](classified.Error(), classified)
	}

	root := gjson.ParseBytes(resp.Body)
	if d := root.Get("data"); d.IsObject() {
		root = d
	}
	token := firstString(root, "token", "access_token", "accessToken")
	if token == "" {
		err := &api.Error{Kind: api.KindUnexpectedFormat, Op: "iniciar sesión", Message: MsgFormato}
		return domain.Failed[domain.Usuario](err.Error(), err)
	}
	var user domain.Usuario
	for _, key := range []string{"user", "usuario"} {
		if v := root.Get(key); v.IsObject() {
			user = usuarioFromAPI(v)
			break
		}
	}
	if user.Email == "" {
		user.Email = email
	}

	if err := a.sessions.Save(token, session.UserFrom(user)); err != nil {
		a.log.Error().Err(err).Msg("save session")
		return domain.Failed[domain.Usuario]("No se pudo guardar la sesión", err)
	}
	a.log.Info().Int64("user_id", user.ID).Str("rol", string(user.Rol)).Msg("signed in")
	return domain.Succeeded("Bienvenido, "+displayName(user), user)
}

// Logout clears the stored session. The remote /logout call is best effort;
// the local record is removed regardless.
func (a *Auth) Logout(ctx context.Context) error {
	if _, err := a.exec.Do(ctx, http.MethodPost, "/logout", nil); err != nil {
		a.log.Debug().Str("kind", api.KindOf(err).String()).Msg("remote logout failed")
	}
	return a.sessions.Clear()
}

func displayName(u domain.Usuario) string {
	if u.Nombre != "" {
		return u.Nombre
	}
	return u.Email
}
