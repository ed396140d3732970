// Package domain holds the canonical local shapes of the records Bodega
// administers. Every field has exactly one name here, whatever variant the
// remote API used.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoCliente distinguishes wholesale (RUC) from retail (DNI) clients.
type TipoCliente string

const (
	ClienteMayorista TipoCliente = "mayorista"
	ClienteMinorista TipoCliente = "minorista"
)

// Telefono is one contact phone of a client.
type Telefono struct {
	Numero string
	Tipo   string // celular, fijo, whatsapp
}

// Cliente is a customer of the distributor.
type Cliente struct {
	ID          int64
	Tipo        TipoCliente
	RazonSocial string // mayorista
	RUC         string // mayorista, 11 digits
	Nombre      string // minorista / contact name
	DNI         string // minorista, 8 digits
	Email       string
	Direccion   string
	Distrito    string
	Telefonos   []Telefono
	Activo      bool
	CreadoEn    time.Time
}

// DisplayName returns the name shown in lists.
func (c Cliente) DisplayName() string {
	if c.RazonSocial != "" {
		return c.RazonSocial
	}
	return c.Nombre
}

// Documento returns the tax or national ID, whichever applies.
func (c Cliente) Documento() string {
	if c.RUC != "" {
		return c.RUC
	}
	return c.DNI
}

// Producto is a beverage SKU.
type Producto struct {
	ID           int64
	Codigo       string
	Nombre       string
	Marca        string
	Categoria    string
	Presentacion string // "625 ml", "Caja x 12"
	Precio       decimal.Decimal
	Stock        int
	ImagenURL    string
	Activo       bool
}

// Rol is the permission profile of a user.
type Rol string

const (
	RolAdmin       Rol = "admin"
	RolVendedor    Rol = "vendedor"
	RolDespachador Rol = "despachador"
)

// Usuario is an operator of the dashboard.
type Usuario struct {
	ID       int64
	Nombre   string
	Email    string
	Rol      Rol
	Activo   bool
	Password string // only sent on create/update, never mapped from the API
}

// Key returns the remote identifier.
func (c Cliente) Key() int64 { return c.ID }

// Key returns the remote identifier.
func (p Producto) Key() int64 { return p.ID }

// Key returns the remote identifier.
func (u Usuario) Key() int64 { return u.ID }
