package ui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/five82/bodega/internal/domain"
	"github.com/five82/bodega/internal/fallback"
)

// Resource is one dashboard tab backed by a fallback controller. The write
// functions are optional; a nil one disables its key.
type Resource struct {
	Name    string // "clientes", also the preference value
	Title   string
	Columns []table.Column
	Load    func(ctx context.Context) Loaded
	Sync    func(ctx context.Context) fallback.SyncReport

	// Snapshot renders the local list again without a remote read.
	Snapshot  func() Loaded
	Delete    func(ctx context.Context, key string) Written
	Rename    func(ctx context.Context, key, name string) Written
	Duplicate func(ctx context.Context, key, name string) Written
}

// Loaded is one resolved read of a resource, already flattened to rows.
// Keys and Names run parallel to Rows.
type Loaded struct {
	Rows     []table.Row
	Keys     []string
	Names    []string
	Pending  int
	Decision fallback.Decision
	Warning  string
	Err      error
}

// Written is the outcome of one write from the dashboard.
type Written struct {
	Message string
	Success bool
	// Pending means the change only exists locally.
	Pending bool
}

// editor tells the generic resource how to rename a record and how to make
// a new one from it.
type editor[T any] struct {
	name     func(T) string
	withName func(T, string) T
	fresh    func(T) T
}

// pendingMark is shown in the first column of rows not yet on the remote.
const pendingMark = "●"

// ClientesResource builds the clients tab.
func ClientesResource(ctrl *fallback.Controller[domain.Cliente]) Resource {
	return newResource("clientes", "Clientes", ClienteColumns(), ctrl, ClienteCells, editor[domain.Cliente]{
		name: domain.Cliente.DisplayName,
		withName: func(c domain.Cliente, name string) domain.Cliente {
			if c.RazonSocial != "" {
				c.RazonSocial = name
			} else {
				c.Nombre = name
			}
			return c
		},
		fresh: func(c domain.Cliente) domain.Cliente {
			c.ID = 0
			return c
		},
	})
}

// ProductosResource builds the products tab.
func ProductosResource(ctrl *fallback.Controller[domain.Producto]) Resource {
	return newResource("productos", "Productos", ProductoColumns(), ctrl, ProductoCells, editor[domain.Producto]{
		name:     func(p domain.Producto) string { return p.Nombre },
		withName: func(p domain.Producto, name string) domain.Producto {
			p.Nombre = name
			return p
		},
		fresh: func(p domain.Producto) domain.Producto {
			p.ID = 0
			return p
		},
	})
}

// UsuariosResource builds the users tab.
func UsuariosResource(ctrl *fallback.Controller[domain.Usuario]) Resource {
	return newResource("usuarios", "Usuarios", UsuarioColumns(), ctrl, UsuarioCells, editor[domain.Usuario]{
		name:     func(u domain.Usuario) string { return u.Nombre },
		withName: func(u domain.Usuario, name string) domain.Usuario {
			u.Nombre = name
			return u
		},
		fresh: func(u domain.Usuario) domain.Usuario {
			u.ID = 0
			u.Password = ""
			return u
		},
	})
}

// ClienteColumns lists the client columns after the pending mark.
func ClienteColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Tipo", Width: 10},
		{Title: "Nombre", Width: 30},
		{Title: "Documento", Width: 12},
		{Title: "Teléfono", Width: 12},
		{Title: "Distrito", Width: 16},
	}
}

// ClienteCells renders one client row.
func ClienteCells(c domain.Cliente) []string {
	phone := ""
	if len(c.Telefonos) > 0 {
		phone = c.Telefonos[0].Numero
	}
	return []string{idCell(c.ID), string(c.Tipo), c.DisplayName(), c.Documento(), phone, c.Distrito}
}

// ProductoColumns lists the product columns after the pending mark.
func ProductoColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Código", Width: 10},
		{Title: "Nombre", Width: 28},
		{Title: "Presentación", Width: 12},
		{Title: "Precio", Width: 10},
		{Title: "Stock", Width: 7},
	}
}

// ProductoCells renders one product row.
func ProductoCells(p domain.Producto) []string {
	return []string{idCell(p.ID), p.Codigo, p.Nombre, p.Presentacion, "S/ " + p.Precio.StringFixed(2), strconv.Itoa(p.Stock)}
}

// UsuarioColumns lists the user columns after the pending mark.
func UsuarioColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Nombre", Width: 26},
		{Title: "Email", Width: 30},
		{Title: "Rol", Width: 12},
		{Title: "Estado", Width: 8},
	}
}

// UsuarioCells renders one user row.
func UsuarioCells(u domain.Usuario) []string {
	estado := "activo"
	if !u.Activo {
		estado = "inactivo"
	}
	return []string{idCell(u.ID), u.Nombre, u.Email, string(u.Rol), estado}
}

func newResource[T fallback.Keyed](name, title string, cols []table.Column, ctrl *fallback.Controller[T], cells func(T) []string, ed editor[T]) Resource {
	snapshot := func(res fallback.ReadResult[T]) Loaded {
		out := Loaded{Decision: res.Decision, Warning: res.Warning, Err: res.Err}
		if res.Err != nil {
			return out
		}
		for _, e := range ctrl.List().Visible() {
			mark := ""
			if e.State.Pending() {
				mark = pendingMark
			}
			out.Rows = append(out.Rows, append(table.Row{mark}, cells(e.Value)...))
			out.Keys = append(out.Keys, e.Key)
			out.Names = append(out.Names, ed.name(e.Value))
		}
		// Pending deletes are hidden from the rows but still counted.
		out.Pending = len(ctrl.List().Pending())
		return out
	}
	withEntry := func(key string, fn func(T) fallback.WriteResult[T]) Written {
		e, ok := ctrl.List().Get(key)
		if !ok {
			return Written{Message: "El registro ya no está en la lista."}
		}
		return written(fn(e.Value))
	}

	return Resource{
		Name:     name,
		Title:    title,
		Columns:  append([]table.Column{{Title: " ", Width: 2}}, cols...),
		Load:     func(ctx context.Context) Loaded { return snapshot(ctrl.Load(ctx, 1)) },
		Sync:     ctrl.Sync,
		Snapshot: func() Loaded { return snapshot(ctrl.Last()) },
		Delete: func(ctx context.Context, key string) Written {
			return written(ctrl.Delete(ctx, key))
		},
		Rename: func(ctx context.Context, key, newName string) Written {
			return withEntry(key, func(v T) fallback.WriteResult[T] {
				return ctrl.Update(ctx, key, ed.withName(v, newName))
			})
		},
		Duplicate: func(ctx context.Context, key, newName string) Written {
			return withEntry(key, func(v T) fallback.WriteResult[T] {
				return ctrl.Create(ctx, ed.withName(ed.fresh(v), newName))
			})
		},
	}
}

func written[T fallback.Keyed](w fallback.WriteResult[T]) Written {
	return Written{Message: w.Result.Message, Success: w.Result.Success, Pending: w.Pending}
}

func idCell(id int64) string {
	if id <= 0 {
		return "nuevo"
	}
	return strconv.FormatInt(id, 10)
}
