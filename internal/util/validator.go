package util

import (
	"strings"
	"unicode/utf8"
)

// RequireString indica se o valor tem conteúdo além de espaços.
func RequireString(value string) bool {
	return strings.TrimSpace(value) != ""
}

// OnlyDigits remove tudo que não for dígito ASCII.
func OnlyDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidUTF8 descarta sequências de bytes inválidas.
func ValidUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
