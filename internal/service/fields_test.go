package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestFirstString_PicksFirstPresentVariant(t *testing.T) {
	r := gjson.Parse(`{"numero":"  ","number":"987654321","telefono":"111"}`)
	assert.Equal(t, "987654321", firstString(r, "numero", "number", "telefono"))
	assert.Equal(t, "", firstString(r, "missing"))
	assert.Equal(t, "", firstString(gjson.Parse(`{"a":null}`), "a"))
}

func TestFirstBool(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"activo":true}`, true},
		{`{"activo":false}`, false},
		{`{"activo":0}`, false},
		{`{"estado":"Inactivo"}`, false},
		{`{"estado":"activo"}`, true},
		{`{"estado":"quizás"}`, true},
		{`{}`, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, firstBool(gjson.Parse(tt.body), true, "activo", "estado"), tt.body)
	}
}

func TestFirstDecimal(t *testing.T) {
	assert.Equal(t, "18.5", firstDecimal(gjson.Parse(`{"precio":"18.50"}`), "precio").String())
	assert.Equal(t, "3.25", firstDecimal(gjson.Parse(`{"precio":"x","price":3.25}`), "precio", "price").String())
	assert.True(t, firstDecimal(gjson.Parse(`{}`), "precio").IsZero())
}

func TestFirstTime(t *testing.T) {
	want := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	assert.True(t, want.Equal(firstTime(gjson.Parse(`{"created_at":"2026-03-04T10:30:00Z"}`), "created_at")))
	assert.True(t, want.Equal(firstTime(gjson.Parse(`{"createdAt":"2026-03-04 10:30:00"}`), "created_at", "createdAt")))
	assert.True(t, firstTime(gjson.Parse(`{"created_at":"ayer"}`), "created_at").IsZero())
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "Aguas", nameOf(gjson.Parse(`{"categoria":{"id":1,"nombre":"Aguas"}}`), "categoria"))
	assert.Equal(t, "Gaseosas", nameOf(gjson.Parse(`{"category":"Gaseosas"}`), "categoria", "category"))
	assert.Equal(t, "", nameOf(gjson.Parse(`{"categoria":null}`), "categoria"))
}

func TestValidationHelpers(t *testing.T) {
	assert.True(t, fixedDigits("20123456789", 11))
	assert.False(t, fixedDigits("2012345678", 11))
	assert.True(t, phoneLike("+51 987-654-321"))
	assert.False(t, phoneLike("98765"))
	assert.False(t, phoneLike("98+7654321"))
	assert.Equal(t, "20123456789", digitsOnly("20-1234 5678 9"))
	assert.NoError(t, validateEmail("", false))
	assert.Error(t, validateEmail("Rosa <rosa@bodega.pe>", true))
	assert.Error(t, validateEmail("rosa@bodega", true))
}
