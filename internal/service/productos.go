package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/five82/bodega/internal/api"
	"github.com/five82/bodega/internal/domain"
)

// Productos is the facade over the /productos resource.
type Productos struct {
	res resource[domain.Producto]
}

// NewProductos builds the products facade.
func NewProductos(exec api.Executor, log zerolog.Logger) *Productos {
	return &Productos{res: resource[domain.Producto]{
		exec:     exec,
		path:     "/productos",
		plural:   "productos",
		noun:     "Producto",
		fromAPI:  productoFromAPI,
		toAPI:    func(p domain.Producto) any { return productoToAPI(p) },
		validate: validateProducto,
		log:      log.With().Str("component", "productos").Logger(),
	}}
}

// List fetches one page of products.
func (s *Productos) List(ctx context.Context, page int) (api.Paginated[domain.Producto], error) {
	return s.res.list(ctx, page)
}

// ListAll fetches every page of products.
func (s *Productos) ListAll(ctx context.Context) ([]domain.Producto, error) {
	return s.res.listAll(ctx)
}

// Get fetches one product.
func (s *Productos) Get(ctx context.Context, id int64) (domain.Producto, error) {
	return s.res.get(ctx, id)
}

// Create validates and submits a new product.
func (s *Productos) Create(ctx context.Context, p domain.Producto) domain.SubmissionResult[domain.Producto] {
	return s.res.create(ctx, p)
}

// Update validates and submits an edited product.
func (s *Productos) Update(ctx context.Context, id int64, p domain.Producto) domain.SubmissionResult[domain.Producto] {
	return s.res.update(ctx, id, p)
}

// Delete removes a product.
func (s *Productos) Delete(ctx context.Context, id int64) domain.SubmissionResult[domain.Producto] {
	return s.res.remove(ctx, id)
}

// FromDataset maps bundled fallback records.
func (s *Productos) FromDataset(records []gjson.Result) []domain.Producto {
	return s.res.fromDataset(records)
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadImage attaches an image to an existing product as multipart form data.
func (s *Productos) UploadImage(ctx context.Context, id int64, filename string, content io.Reader) domain.SubmissionResult[domain.Producto] {
	if id <= 0 {
		err := validationError("El identificador no es válido")
		return domain.Failed[domain.Producto](err.Error(), err)
	}
	name := strings.ToLower(strings.TrimSpace(filename))
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i:]
	}
	if !imageExtensions[ext] {
		err := validationError("La imagen debe ser JPG, PNG o WEBP")
		return domain.Failed[domain.Producto](err.Error(), err)
	}

	resp, err := s.res.exec.Upload(ctx, http.MethodPost, fmt.Sprintf("%s/%d/imagen", s.res.path, id), api.Form{
		Files: []api.FormFile{{Field: "imagen", Filename: filename, Content: content}},
	})
	return s.res.writeResult("subir imagen de", resp, err, domain.Producto{ID: id}, "Imagen actualizada correctamente", true)
}

// productoAPI is the remote contract for writes. Prices travel as fixed
// two-decimal strings.
type productoAPI struct {
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Marca        string `json:"marca,omitempty"`
	Categoria    string `json:"categoria,omitempty"`
	Presentacion string `json:"presentacion,omitempty"`
	Precio       string `json:"precio"`
	Stock        int    `json:"stock"`
	Activo       bool   `json:"activo"`
}

func productoFromAPI(r gjson.Result) domain.Producto {
	return domain.Producto{
		ID:           firstInt(r, "id", "id_producto", "productoId"),
		Codigo:       strings.ToUpper(firstString(r, "codigo", "sku", "code")),
		Nombre:       firstString(r, "nombre", "name", "descripcion"),
		Marca:        nameOf(r, "marca", "brand"),
		Categoria:    nameOf(r, "categoria", "category"),
		Presentacion: firstString(r, "presentacion", "presentation", "unidad_medida"),
		Precio:       firstDecimal(r, "precio", "price", "precio_venta").Round(2),
		Stock:        int(firstInt(r, "stock", "cantidad", "stock_actual")),
		ImagenURL:    firstString(r, "imagen_url", "imagenUrl", "image_url", "imagen"),
		Activo:       firstBool(r, true, "activo", "estado", "is_active"),
	}
}

func productoToAPI(p domain.Producto) productoAPI {
	return productoAPI{
		Codigo:       strings.ToUpper(strings.TrimSpace(p.Codigo)),
		Nombre:       strings.TrimSpace(p.Nombre),
		Marca:        strings.TrimSpace(p.Marca),
		Categoria:    strings.TrimSpace(p.Categoria),
		Presentacion: strings.TrimSpace(p.Presentacion),
		Precio:       p.Precio.StringFixed(2),
		Stock:        p.Stock,
		Activo:       p.Activo,
	}
}

func validateProducto(p domain.Producto, _ bool) error {
	if strings.TrimSpace(p.Codigo) == "" {
		return validationError("El código es obligatorio")
	}
	if strings.TrimSpace(p.Nombre) == "" {
		return validationError("El nombre es obligatorio")
	}
	if !minRunes(p.Nombre, 2) {
		return validationError("El nombre debe tener al menos 2 caracteres")
	}
	if !p.Precio.GreaterThan(decimal.Zero) {
		return validationError("El precio debe ser mayor a 0")
	}
	if p.Stock < 0 {
		return validationError("El stock no puede ser negativo")
	}
	return nil
}
