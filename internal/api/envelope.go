package api

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Links mirrors the pagination links of the collection envelope.
type Links struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
}

// Meta mirrors the pagination metadata of the collection envelope.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Paginated is the single canonical shape every collection read returns.
type Paginated[T any] struct {
	Data  []T
	Links Links
	Meta  Meta
}

// HasNext reports whether the remote reports pages after the current one.
func (p Paginated[T]) HasNext() bool {
	return p.Meta.CurrentPage < p.Meta.LastPage
}

// MapPage converts a page of T into a page of U, keeping links and meta.
func MapPage[T, U any](p Paginated[T], fn func(T) U) Paginated[U] {
	out := Paginated[U]{Links: p.Links, Meta: p.Meta, Data: make([]U, 0, len(p.Data))}
	for _, v := range p.Data {
		out.Data = append(out.Data, fn(v))
	}
	return out
}

// Shape names the collection envelope variant that was detected.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeArray         // [ {...}, ... ]
	ShapeKeyed         // { "<plural>": [ ... ] }
	ShapeData          // { "data": [ ... ] } without meta
	ShapePaginated     // { "data": [...], "links": {...}, "meta": {...} }
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeKeyed:
		return "keyed"
	case ShapeData:
		return "data"
	case ShapePaginated:
		return "paginated"
	default:
		return "unknown"
	}
}

// Collection normalizes any known collection envelope into Paginated records.
// plural is the entity key used by the keyed variant ("clientes").
// A body matching none of the variants yields KindUnexpectedFormat.
func Collection(body []byte, plural string) (Paginated[gjson.Result], Shape, error) {
	if !gjson.ValidBytes(body) {
		return Paginated[gjson.Result]{}, ShapeUnknown, &Error{Kind: KindUnexpectedFormat, Message: "Respuesta inesperada del servidor"}
	}
	root := gjson.ParseBytes(body)

	switch {
	case root.IsArray():
		return flatPage(root.Array()), ShapeArray, nil

	case root.IsObject():
		data := root.Get("data")
		if data.IsArray() {
			meta := root.Get("meta")
			if meta.IsObject() {
				page := Paginated[gjson.Result]{
					Data:  data.Array(),
					Links: linksFrom(root.Get("links")),
					Meta:  metaFrom(meta),
				}
				if page.Data == nil {
					page.Data = []gjson.Result{}
				}
				return page, ShapePaginated, nil
			}
			return flatPage(data.Array()), ShapeData, nil
		}
		if key := strings.TrimSpace(plural); key != "" {
			if keyed := root.Get(key); keyed.IsArray() {
				return flatPage(keyed.Array()), ShapeKeyed, nil
			}
		}
	}

	return Paginated[gjson.Result]{}, ShapeUnknown, &Error{Kind: KindUnexpectedFormat, Message: "Respuesta inesperada del servidor"}
}

// flatPage wraps a complete, unpaginated list as a single page.
func flatPage(items []gjson.Result) Paginated[gjson.Result] {
	if items == nil {
		items = []gjson.Result{}
	}
	n := len(items)
	meta := Meta{CurrentPage: 1, LastPage: 1, PerPage: n, Total: n, To: n}
	if n > 0 {
		meta.From = 1
	}
	return Paginated[gjson.Result]{Data: items, Meta: meta}
}

func linksFrom(v gjson.Result) Links {
	return Links{
		First: v.Get("first").String(),
		Last:  v.Get("last").String(),
		Prev:  v.Get("prev").String(),
		Next:  v.Get("next").String(),
	}
}

func metaFrom(v gjson.Result) Meta {
	m := Meta{
		CurrentPage: int(v.Get("current_page").Int()),
		LastPage:    int(v.Get("last_page").Int()),
		PerPage:     int(v.Get("per_page").Int()),
		Total:       int(v.Get("total").Int()),
		From:        int(v.Get("from").Int()),
		To:          int(v.Get("to").Int()),
	}
	if m.CurrentPage <= 0 {
		m.CurrentPage = 1
	}
	if m.LastPage < m.CurrentPage {
		m.LastPage = m.CurrentPage
	}
	return m
}

// WriteReply is the normalized reply of a single-record write.
type WriteReply struct {
	Success bool
	Message string
	Record  gjson.Result // zero Result when the server sent no record
}

// Single normalizes `{success, message, data}` or a bare record.
// An explicit success=false becomes a KindValidationFailed error carrying the
// server's message.
func Single(body []byte) (WriteReply, error) {
	if len(body) == 0 {
		return WriteReply{Success: true}, nil
	}
	if !gjson.ValidBytes(body) {
		return WriteReply{}, &Error{Kind: KindUnexpectedFormat, Message: "Respuesta inesperada del servidor"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return WriteReply{}, &Error{Kind: KindUnexpectedFormat, Message: "Respuesta inesperada del servidor"}
	}

	if success := root.Get("success"); success.Exists() {
		reply := WriteReply{Success: success.Bool(), Message: strings.TrimSpace(root.Get("message").String())}
		if data := root.Get("data"); data.IsObject() {
			reply.Record = data
		}
		if !reply.Success {
			msg := reply.Message
			if msg == "" {
				msg = "El servidor rechazó la operación"
			}
			return WriteReply{}, &Error{Kind: KindValidationFailed, Message: msg}
		}
		return reply, nil
	}

	if data := root.Get("data"); data.IsObject() {
		return WriteReply{Success: true, Message: strings.TrimSpace(root.Get("message").String()), Record: data}, nil
	}
	return WriteReply{Success: true, Record: root}, nil
}
