package participante

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Participante
	}{
		{
			"em-dash-email",
			"Nome: Ana\nCPF: 123.456.789-00\nEmail: —\n",
			Participante{Name: "Ana", CPF: "12345678900"},
		},
		{
			"all-fields",
			"Nome: Bruno Lima\nCPF: 98765432100\nEmail: bruno@exemplo.com\nTelefone: (51) 99999-0000\n",
			Participante{Name: "Bruno Lima", CPF: "98765432100", Email: strPtr("bruno@exemplo.com"), Phone: strPtr("(51) 99999-0000")},
		},
		{
			"case-insensitive-and-trimmed",
			"  NOME: Carla  \r\n\r\n cpf:111.222.333-44\r\nTELEFONE: —\r\nemail: c@x.org\r\n",
			Participante{Name: "Carla", CPF: "11122233344", Email: strPtr("c@x.org")},
		},
		{
			"truncates-cpf",
			"Nome: Davi\nCPF: 123456789012345\n",
			Participante{Name: "Davi", CPF: "12345678901"},
		},
		{
			"short-cpf-not-padded",
			"Nome: Eva\nCPF: 12-3\n",
			Participante{Name: "Eva", CPF: "123"},
		},
		{
			"last-occurrence-wins",
			"Nome: Primeiro\nCPF: 11111111111\nNome: Segundo\nCPF: 22222222222\n",
			Participante{Name: "Segundo", CPF: "22222222222"},
		},
		{
			"missing-name",
			"CPF: 55566677788\n",
			Participante{Name: "", CPF: "55566677788"},
		},
		{
			"value-with-colon",
			"Nome: Fabio\nCPF: 12345678900\nEmail: mailto:f@x.com\n",
			Participante{Name: "Fabio", CPF: "12345678900", Email: strPtr("mailto:f@x.com")},
		},
		{
			"empty-email-kept",
			"Nome: Gil\nCPF: 12345678900\nEmail:\n",
			Participante{Name: "Gil", CPF: "12345678900", Email: strPtr("")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tc.want.Name || got.CPF != tc.want.CPF {
				t.Fatalf("expected %+v got %+v", tc.want, got)
			}
			assertOptional(t, "email", tc.want.Email, got.Email)
			assertOptional(t, "phone", tc.want.Phone, got.Phone)
		})
	}
}

// Registros sem CPF utilizável são rejeitados; não existe CPF sentinela.
func TestParseRejectsMissingOrEmptyCPF(t *testing.T) {
	texts := []string{
		"Nome: Sem CPF\nEmail: a@b.com\n",
		"Nome: CPF vazio\nCPF:\n",
		"Nome: CPF sem dígitos\nCPF: ---.---\n",
		"Nome: Placeholder\nCPF: —\n",
		"Nome: Último vazio\nCPF: 12345678900\nCPF: n/a\n",
		"",
	}

	for _, text := range texts {
		if _, err := Parse(text); !errors.Is(err, ErrInvalidCPF) {
			t.Fatalf("%q: expected ErrInvalidCPF got %v", text, err)
		}
	}
}

func TestParseAcceptsAnyLineBreak(t *testing.T) {
	texts := map[string]string{
		"cr":        "Nome: Ana\rCPF: 12345678900\r",
		"crlf":      "Nome: Ana\r\nCPF: 12345678900\r\n",
		"u2028":     "Nome: Ana\u2028CPF: 12345678900",
		"next line": "Nome: Ana\u0085CPF: 12345678900\u0085Telefone: 11 99999-0000",
	}

	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			p, err := Parse(text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != "Ana" || p.CPF != "12345678900" {
				t.Fatalf("unexpected participante %+v", p)
			}
		})
	}
}

func assertOptional(t *testing.T, field string, want, got *string) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Fatalf("%s: expected null got %q", field, *got)
	case want != nil && got == nil:
		t.Fatalf("%s: expected %q got null", field, *want)
	case want != nil && *want != *got:
		t.Fatalf("%s: expected %q got %q", field, *want, *got)
	}
}
