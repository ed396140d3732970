package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

// Clientes is the facade over the /clientes resource.
type Clientes struct {
	res resource[domain.Cliente]
}

// NewClientes builds the clients facade.
func NewClientes(exec api.Executor, log zerolog.Logger) *Clientes {
	return &Clientes{res: resource[domain.Cliente]{
		exec:     exec,
		path:     "/clientes",
		plural:   "clientes",
		noun:     "Cliente",
		fromAPI:  clienteFromAPI,
		toAPI:    func(c domain.Cliente) any { return clienteToAPI(c) },
		validate: validateCliente,
		log:      log.With().Str("component", "clientes").Logger(),
	}}
}

// List fetches one page of clients.
func (s *Clientes) List(ctx context.Context, page int) (api.Paginated[domain.Cliente], error) {
	return s.res.list(ctx, page)
}

// ListAll fetches every page of clients.
func (s *Clientes) ListAll(ctx context.Context) ([]domain.Cliente, error) {
	return s.res.listAll(ctx)
}

// Get fetches one client.
func (s *Clientes) Get(ctx context.Context, id int64) (domain.Cliente, error) {
	return s.res.get(ctx, id)
}

// Create validates and submits a new client.
func (s *Clientes) Create(ctx context.Context, c domain.Cliente) domain.SubmissionResult[domain.Cliente] {
	return s.res.create(ctx, c)
}

// Update validates and submits an edited client.
func (s *Clientes) Update(ctx context.Context, id int64, c domain.Cliente) domain.SubmissionResult[domain.Cliente] {
	return s.res.update(ctx, id, c)
}

// Delete removes a client.
func (s *Clientes) Delete(ctx context.Context, id int64) domain.SubmissionResult[domain.Cliente] {
	return s.res.remove(ctx, id)
}

// FromDataset maps bundled fallback records.
func (s *Clientes) FromDataset(records []gjson.Result) []domain.Cliente {
	return s.res.fromDataset(records)
}

// clienteAPI is the remote contract for writes.
type clienteAPI struct {
	TipoCliente string        `json:"tipo_cliente"`
	RazonSocial string        `json:"razon_social,omitempty"`
	RUC         string        `json:"ruc,omitempty"`
	Nombre      string        `json:"nombre,omitempty"`
	DNI         string        `json:"dni,omitempty"`
	Email       string        `json:"email,omitempty"`
	Direccion   string        `json:"direccion,omitempty"`
	Distrito    string        `json:"distrito,omitempty"`
	Telefonos   []telefonoAPI `json:"telefonos"`
	Activo      bool          `json:"activo"`
}

type telefonoAPI struct {
	Numero string `json:"numero"`
	Tipo   string `json:"tipo"`
}

func clienteFromAPI(r gjson.Result) domain.Cliente {
	c := domain.Cliente{
		ID:          firstInt(r, "id", "id_cliente", "clienteId"),
		RazonSocial: firstString(r, "razon_social", "razonSocial"),
		RUC:         digitsOnly(firstString(r, "ruc")),
		Nombre:      firstString(r, "nombre", "nombres", "name"),
		DNI:         digitsOnly(firstString(r, "dni")),
		Email:       strings.ToLower(firstString(r, "email", "correo")),
		Direccion:   firstString(r, "direccion", "address"),
		Distrito:    firstString(r, "distrito", "district"),
		Activo:      firstBool(r, true, "activo", "estado", "is_active"),
		CreadoEn:    firstTime(r, "created_at", "createdAt"),
	}
	c.Tipo = tipoClienteFrom(firstString(r, "tipo_cliente", "tipoCliente", "tipo"), c.RUC)

	c.Telefonos = []domain.Telefono{}
	for _, key := range []string{"telefonos", "phones"} {
		if list := r.Get(key); list.IsArray() {
			for _, t := range list.Array() {
				if tel := telefonoFromAPI(t); tel.Numero != "" {
					c.Telefonos = append(c.Telefonos, tel)
				}
			}
			break
		}
	}
	if len(c.Telefonos) == 0 {
		if single := firstString(r, "telefono", "phone"); single != "" {
			c.Telefonos = append(c.Telefonos, domain.Telefono{Numero: single, Tipo: "celular"})
		}
	}
	return c
}

// telefonoFromAPI accepts {"numero"}, {"number"}, {"telefono"} or a bare string.
func telefonoFromAPI(r gjson.Result) domain.Telefono {
	if r.Type == gjson.String || r.Type == gjson.Number {
		return domain.Telefono{Numero: strings.TrimSpace(r.String()), Tipo: "celular"}
	}
	tipo := strings.ToLower(firstString(r, "tipo", "type"))
	if tipo == "" {
		tipo = "celular"
	}
	return domain.Telefono{
		Numero: firstString(r, "numero", "number", "telefono"),
		Tipo:   tipo,
	}
}

func tipoClienteFrom(raw, ruc string) domain.TipoCliente {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mayorista", "wholesale", "empresa":
		return domain.ClienteMayorista
	case "minorista", "retail", "persona":
		return domain.ClienteMinorista
	}
	if ruc != "" {
		return domain.ClienteMayorista
	}
	return domain.ClienteMinorista
}

func clienteToAPI(c domain.Cliente) clienteAPI {
	out := clienteAPI{
		TipoCliente: string(c.Tipo),
		RazonSocial: strings.TrimSpace(c.RazonSocial),
		RUC:         strings.TrimSpace(c.RUC),
		Nombre:      strings.TrimSpace(c.Nombre),
		DNI:         strings.TrimSpace(c.DNI),
		Email:       strings.ToLower(strings.TrimSpace(c.Email)),
		Direccion:   strings.TrimSpace(c.Direccion),
		Distrito:    strings.TrimSpace(c.Distrito),
		Telefonos:   make([]telefonoAPI, 0, len(c.Telefonos)),
		Activo:      c.Activo,
	}
	for _, t := range c.Telefonos {
		n := strings.TrimSpace(t.Numero)
		if n == "" {
			continue
		}
		tipo := strings.ToLower(strings.TrimSpace(t.Tipo))
		if tipo == "" {
			tipo = "celular"
		}
		out.Telefonos = append(out.Telefonos, telefonoAPI{Numero: n, Tipo: tipo})
	}
	return out
}

func validateCliente(c domain.Cliente, _ bool) error {
	switch c.Tipo {
	case domain.ClienteMayorista:
		if strings.TrimSpace(c.RazonSocial) == "" {
			return validationError("La razón social es obligatoria")
		}
		if !minRunes(c.RazonSocial, 3) {
			return validationError("La razón social debe tener al menos 3 caracteres")
		}
		if strings.TrimSpace(c.RUC) == "" {
			return validationError("El RUC es obligatorio")
		}
		if !fixedDigits(c.RUC, 11) {
			return validationError("El RUC debe tener 11 dígitos")
		}
	case domain.ClienteMinorista:
		if strings.TrimSpace(c.Nombre) == "" {
			return validationError("El nombre es obligatorio")
		}
		if !minRunes(c.Nombre, 2) {
			return validationError("El nombre debe tener al menos 2 caracteres")
		}
		if strings.TrimSpace(c.DNI) == "" {
			return validationError("El DNI es obligatorio")
		}
		if !fixedDigits(c.DNI, 8) {
			return validationError("El DNI debe tener 8 dígitos")
		}
	default:
		return validationError("El tipo de cliente es obligatorio")
	}

	if err := validateEmail(c.Email, false); err != nil {
		return err
	}

	phones := 0
	for _, t := range c.Telefonos {
		n := strings.TrimSpace(t.Numero)
		if n == "" {
			continue
		}
		if !phoneLike(n) {
			return validationError("El teléfono " + n + " no es válido")
		}
		phones++
	}
	if phones == 0 {
		return validationError("Debe registrar al menos un teléfono")
	}
	return nil
}
