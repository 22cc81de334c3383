package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tributa-api/pkg/rut"
)

// Normalizar debe aceptar cualquier formato de entrada y converger a la forma canónica.
func TestNormalize_FormatosEquivalentes(t *testing.T) {
	cases := []string{"77.794.858-K", "77794858-K", "77794858k", " 77.794.858-k "}
	for _, in := range cases {
		assert.Equal(t, "77794858k", rut.Normalize(in), "entrada %q", in)
	}
}

// Normalizar un RUT ya normalizado debe devolver el mismo valor (idempotencia).
func TestNormalize_Idempotente(t *testing.T) {
	once := rut.Normalize("77.794.858-K")
	assert.Equal(t, once, rut.Normalize(once))
}

func TestSplit_SeparaCuerpoYDV(t *testing.T) {
	body, dv, err := rut.Split("77.794.858-K")
	require.NoError(t, err)
	assert.Equal(t, "77794858", body)
	assert.Equal(t, "k", dv)
}

func TestSplit_EntradasInvalidas(t *testing.T) {
	for _, in := range []string{"", "k", "77a94858-5", "77794858-x"} {
		_, _, err := rut.Split(in)
		assert.Error(t, err, "entrada %q", in)
	}
}

// Módulo 11 del SII: DV numérico, DV "k" y DV incorrecto.
func TestIsValid(t *testing.T) {
	assert.True(t, rut.IsValid("12.345.678-5"))
	assert.True(t, rut.IsValid("77794858-K"))
	assert.False(t, rut.IsValid("77794858-1"))
	assert.False(t, rut.IsValid("no-es-rut"))
}

func TestFormat_RepresentacionHumana(t *testing.T) {
	assert.Equal(t, "77.794.858-K", rut.Format("77794858k"))
	assert.Equal(t, "12.345.678-5", rut.Format("12.345.678-5"))
	assert.Equal(t, "1.234-3", rut.Format("12343"))
	// entrada no separable: se devuelve normalizada
	assert.Equal(t, "k", rut.Format("K"))
}
