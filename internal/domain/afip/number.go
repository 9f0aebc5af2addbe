// Package afip contiene la lógica de dominio del numerador de comprobantes:
// parseo del número cargado a mano ("punto de venta - secuencia") y su
// representación canónica con ceros a la izquierda.
package afip

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var canonicalNumber = regexp.MustCompile(`^\d{1,5}-\d{1,8}$`)

// ParseNumber interpreta el número de comprobante ingresado por el usuario.
//
// Devuelve el punto de venta y, si el texto lo trae, la secuencia explícita
// (explicit=true). Sin secuencia explícita el llamador debe pedirle al WSFE
// el último número autorizado.
//
//   - Vacío → (defaultPos, 0, false).
//   - "NNNN-NNNNNNNN" (1..5 y 1..8 dígitos) → ambos campos parseados.
//   - Cualquier otra cosa: se descartan los no-dígitos; con 5 o más dígitos
//     los primeros 4 son el punto de venta y el resto la secuencia. Con menos
//     de 5 se cae al punto de venta por defecto.
func ParseNumber(raw string, defaultPos int) (pos int, seq int, explicit bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return defaultPos, 0, false
	}

	if canonicalNumber.MatchString(s) {
		parts := strings.SplitN(s, "-", 2)
		pos, _ = strconv.Atoi(parts[0])
		seq, _ = strconv.Atoi(parts[1])
		return pos, seq, true
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 5 {
		return defaultPos, 0, false
	}
	pos, _ = strconv.Atoi(digits[:4])
	seq, _ = strconv.Atoi(digits[4:])
	return pos, seq, true
}

// FormatNumber devuelve la representación canónica "0001-00000042".
func FormatNumber(pos, seq int) string {
	return fmt.Sprintf("%04d-%08d", pos, seq)
}
