package participante

import (
	"errors"
	"strings"

	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

// ErrInvalidCPF rejeita registros sem linha CPF ou sem nenhum dígito nela.
var ErrInvalidCPF = errors.New("participante: cpf ausente ou sem dígitos")

// Parse lê o dados.txt no formato "Rótulo: valor" gerado pelo app iOS:
//
//	Nome: Fulano
//	CPF: 123.456.789-01
//	Email: x@y.com
//	Telefone: —
//
// Rótulos são comparados sem diferenciar maiúsculas e a última ocorrência vence.
// O CPF mantém só os dígitos, truncado (nunca completado) em 11.
func Parse(text string) (Participante, error) {
	var (
		name, cpf, email, phone string
		hasCPF, hasEmail        bool
		hasPhone                bool
	)

	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(label)) {
		case "nome":
			name = value
		case "cpf":
			cpf = util.OnlyDigits(value)
			hasCPF = true
		case "email":
			email, hasEmail = value, value != emptyPlaceholder
		case "telefone":
			phone, hasPhone = value, value != emptyPlaceholder
		}
	}

	if !hasCPF || cpf == "" {
		return Participante{}, ErrInvalidCPF
	}
	if len(cpf) > cpfLength {
		cpf = cpf[:cpfLength]
	}

	p := Participante{Name: name, CPF: cpf}
	if hasEmail {
		p.Email = &email
	}
	if hasPhone {
		p.Phone = &phone
	}
	return p, nil
}

// Quebras aceitas: \n, \r isolado ou em \r\n, e os separadores Unicode de linha.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
