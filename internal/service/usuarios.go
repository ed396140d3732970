package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

// Usuarios is the facade over the /usuarios resource.
type Usuarios struct {
	res resource[domain.Usuario]
}

// NewUsuarios builds the users facade.
func NewUsuarios(exec api.Executor, log zerolog.Logger) *Usuarios {
	return &Usuarios{res: resource[domain.Usuario]{
		exec:     exec,
		path:     "/usuarios",
		plural:   "usuarios",
		noun:     "Usuario",
		fromAPI:  usuarioFromAPI,
		toAPI:    func(u domain.Usuario) any { return usuarioToAPI(u) },
		validate: validateUsuario,
		log:      log.With().Str("component", "usuarios").Logger(),
	}}
}

// List fetches one page of users.
func (s *Usuarios) List(ctx context.Context, page int) (api.Paginated[domain.Usuario], error) {
	return s.res.list(ctx, page)
}

// ListAll fetches every page of users.
func (s *Usuarios) ListAll(ctx context.Context) ([]domain.Usuario, error) {
	return s.res.listAll(ctx)
}

// Get fetches one user.
func (s *Usuarios) Get(ctx context.Context, id int64) (domain.Usuario, error) {
	return s.res.get(ctx, id)
}

// Create validates and submits a new user. A password is required.
func (s *Usuarios) Create(ctx context.Context, u domain.Usuario) domain.SubmissionResult[domain.Usuario] {
	return s.res.create(ctx, u)
}

// Update validates and submits an edited user. An empty password keeps the
// current one.
func (s *Usuarios) Update(ctx context.Context, id int64, u domain.Usuario) domain.SubmissionResult[domain.Usuario] {
	return s.res.update(ctx, id, u)
}

// Delete removes a user.
func (s *Usuarios) Delete(ctx context.Context, id int64) domain.SubmissionResult[domain.Usuario] {
	return s.res.remove(ctx, id)
}

// FromDataset maps bundled fallback records.
func (s *Usuarios) FromDataset(records []gjson.Result) []domain.Usuario {
	return s.res.fromDataset(records)
}

type usuarioAPI struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Activo   bool   `json:"activo"`
	Password string `json:"password,omitempty"`
}

func usuarioFromAPI(r gjson.Result) domain.Usuario {
	return domain.Usuario{
		ID:     firstInt(r, "id", "id_usuario", "userId"),
		Nombre: firstString(r, "nombre", "name", "nombres"),
		Email:  strings.ToLower(firstString(r, "email", "correo")),
		Rol:    rolFrom(nameOf(r, "rol", "role")),
		Activo: firstBool(r, true, "activo", "estado", "is_active"),
	}
}

func rolFrom(raw string) domain.Rol {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrador", "administrator":
		return domain.RolAdmin
	case "vendedor", "ventas", "seller":
		return domain.RolVendedor
	case "despachador", "despacho", "logistica", "logística", "dispatcher":
		return domain.RolDespachador
	}
	return domain.Rol(strings.ToLower(strings.TrimSpace(raw)))
}

func validRol(r domain.Rol) bool {
	switch r {
	case domain.RolAdmin, domain.RolVendedor, domain.RolDespachador:
		return true
	}
	return false
}

func usuarioToAPI(u domain.Usuario) usuarioAPI {
	return usuarioAPI{
		Nombre:   strings.TrimSpace(u.Nombre),
		Email:    strings.ToLower(strings.TrimSpace(u.Email)),
		Rol:      string(u.Rol),
		Activo:   u.Activo,
		Password: u.Password,
	}
}

func validateUsuario(u domain.Usuario, creating bool) error {
	if strings.TrimSpace(u.Nombre) == "" {
		return validationError("El nombre es obligatorio")
	}
	if !minRunes(u.Nombre, 2) {
		return validationError("El nombre debe tener al menos 2 caracteres")
	}
	if err := validateEmail(u.Email, true); err != nil {
		return err
	}
	if !validRol(u.Rol) {
		return validationError("El rol no es válido")
	}
	switch {
	case creating && u.Password == "":
		return validationError("La contraseña es obligatoria")
	case u.Password != "" && len([]rune(u.Password)) < 6:
		return validationError("La contraseña debe tener al menos 6 caracteres")
	}
	return nil
}
