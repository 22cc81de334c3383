// Package rut normaliza y valida RUT chilenos (Rol Único Tributario).
//
// Forma canónica: cuerpo numérico seguido del dígito verificador en minúscula,
// sin puntos ni guión. "77.794.858-K" y "77794858-K" normalizan a "77794858k".
package rut

import (
	"fmt"
	"strings"
)

// Normalize lleva un RUT a su forma canónica: sin puntos, sin guión y con el
// dígito verificador en minúscula. Es idempotente.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToLower(s)
}

// Split separa un RUT (en cualquier formato aceptado por Normalize) en cuerpo
// y dígito verificador. Retorna error si el RUT es demasiado corto o si el
// cuerpo contiene caracteres no numéricos.
func Split(raw string) (body, dv string, err error) {
	s := Normalize(raw)
	if len(s) < 2 {
		return "", "", fmt.Errorf("rut %q demasiado corto", raw)
	}
	body, dv = s[:len(s)-1], s[len(s)-1:]
	for _, r := range body {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("rut %q: cuerpo no numérico", raw)
		}
	}
	if !(dv == "k" || (dv[0] >= '0' && dv[0] <= '9')) {
		return "", "", fmt.Errorf("rut %q: dígito verificador inválido", raw)
	}
	return body, dv, nil
}

// IsValid verifica el dígito verificador con el algoritmo módulo 11 del SII.
func IsValid(raw string) bool {
	body, dv, err := Split(raw)
	if err != nil {
		return false
	}
	return computeDV(body) == dv
}

// Format produce la representación para humanos: puntos de miles, guión y
// dígito verificador en mayúscula. "77794858k" → "77.794.858-K". Si la entrada
// no es separable devuelve el string normalizado tal cual.
func Format(raw string) string {
	body, dv, err := Split(raw)
	if err != nil {
		return Normalize(raw)
	}
	n := len(body)
	buf := make([]byte, 0, n+n/3+2)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, body[i])
	}
	buf = append(buf, '-')
	return string(buf) + strings.ToUpper(dv)
}

// computeDV calcula el dígito verificador módulo 11 de un cuerpo numérico.
// Serie de factores 2..7 aplicada de derecha a izquierda.
func computeDV(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rest := 11 - sum%11; rest {
	case 11:
		return "0"
	case 10:
		return "k"
	default:
		return fmt.Sprintf("%d", rest)
	}
}
