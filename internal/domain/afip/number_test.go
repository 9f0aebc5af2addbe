package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdmestudio/contable-api/internal/domain/afip"
)

func TestParseNumber_Vacio(t *testing.T) {
	pos, _, explicit := afip.ParseNumber("", 7)
	assert.Equal(t, 7, pos, "sin número debe usarse el punto de venta por defecto")
	assert.False(t, explicit, "sin número no hay secuencia explícita")

	pos, _, explicit = afip.ParseNumber("   ", 3)
	assert.Equal(t, 3, pos)
	assert.False(t, explicit)
}

func TestParseNumber_Canonico(t *testing.T) {
	pos, seq, explicit := afip.ParseNumber("0001-00000042", 7)
	assert.True(t, explicit)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 42, seq)

	// El formato acepta 1..5 y 1..8 dígitos
	pos, seq, explicit = afip.ParseNumber("3-9", 7)
	assert.True(t, explicit)
	assert.Equal(t, 3, pos)
	assert.Equal(t, 9, seq)
}

func TestParseNumber_SoloDigitos(t *testing.T) {
	// Exactamente 5 dígitos: 4 de punto de venta y 1 de secuencia
	pos, seq, explicit := afip.ParseNumber("00012", 7)
	assert.True(t, explicit)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, seq)

	// 6 dígitos
	pos, seq, explicit = afip.ParseNumber("000123", 7)
	assert.True(t, explicit)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 23, seq)

	// 4 dígitos no alcanzan: cae al punto de venta por defecto
	pos, _, explicit = afip.ParseNumber("0001", 7)
	assert.False(t, explicit)
	assert.Equal(t, 7, pos)
}

func TestParseNumber_ConRuido(t *testing.T) {
	// Se descartan los caracteres no numéricos antes de decidir
	pos, seq, explicit := afip.ParseNumber("PV 0002 / Nº 00000015", 7)
	assert.True(t, explicit)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 15, seq)
}

func TestFormatNumber_RoundTrip(t *testing.T) {
	// format(parse(s)) conserva la forma canónica
	for _, s := range []string{"0001-00000042", "0010-00000123", "4000-99999999"} {
		pos, seq, explicit := afip.ParseNumber(s, 1)
		assert.True(t, explicit)
		assert.Equal(t, s, afip.FormatNumber(pos, seq), "round-trip de %q", s)
	}
}

func TestFormatNumber_Padding(t *testing.T) {
	assert.Equal(t, "0001-00000099", afip.FormatNumber(1, 99))
	assert.Equal(t, "0100-00000001", afip.FormatNumber(100, 1))
}
