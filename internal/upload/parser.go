package upload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"unicode"

	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

// Parse valida o corpo JSON {path, content_base64, content_type?}.
// content_type ausente ou vazio cai em defaultContentType.
func Parse(body io.Reader, defaultContentType string) (Request, error) {
	if body == nil {
		return Request{}, ErrInvalidJSON
	}

	raw, err := io.ReadAll(body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return Request{}, ErrInvalidJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return Request{}, ErrInvalidJSON
	}

	path := stringField(fields, "path")
	encoded := stringField(fields, "content_base64")
	if !util.RequireString(path) || !util.RequireString(encoded) {
		return Request{}, ErrMissingFields
	}

	content, err := base64.StdEncoding.DecodeString(stripSpaces(encoded))
	if err != nil {
		return Request{}, ErrInvalidContent
	}

	contentType := strings.TrimSpace(stringField(fields, "content_type"))
	if contentType == "" {
		contentType = defaultContentType
	}

	return Request{Path: path, Content: content, ContentType: contentType}, nil
}

// Campos com tipo diferente de string são tratados como ausentes.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// O app iOS pode quebrar o base64 em linhas.
func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
