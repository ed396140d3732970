package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// The remote API has shipped several spellings of the same field over time.
// These adapters pick the first variant that is present, so mapping code
// names every accepted spelling in one place.

func firstString(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstInt(r gjson.Result, keys ...string) int64 {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v.Int()
		}
	}
	return 0
}

// firstBool understands true/false, 1/0 and "activo"/"inactivo" style values.
func firstBool(r gjson.Result, fallback bool, keys ...string) bool {
	for _, k := range keys {
		v := r.Get(k)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		switch v.Type {
		case gjson.True:
			return true
		case gjson.False:
			return false
		case gjson.Number:
			return v.Int() != 0
		case gjson.String:
			switch strings.ToLower(strings.TrimSpace(v.Str)) {
			case "1", "true", "si", "sí", "activo", "activa", "active", "habilitado":
				return true
			case "0", "false", "no", "inactivo", "inactiva", "inactive", "deshabilitado":
				return false
			}
		}
	}
	return fallback
}

func firstDecimal(r gjson.Result, keys ...string) decimal.Decimal {
	for _, k := range keys {
		v := r.Get(k)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(v.String())); err == nil {
			return d
		}
	}
	return decimal.Zero
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func firstTime(r gjson.Result, keys ...string) time.Time {
	raw := firstString(r, keys...)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nameOf reads a field that is either a plain string or an object with a
// name ("categoria": "Gaseosas" vs "categoria": {"nombre": "Gaseosas"}).
func nameOf(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := r.Get(k)
		if v.IsObject() {
			if s := firstString(v, "nombre", "name", "descripcion"); s != "" {
				return s
			}
			continue
		}
		if s := strings.TrimSpace(v.String()); v.Exists() && v.Type != gjson.Null && s != "" {
			return s
		}
	}
	return ""
}
