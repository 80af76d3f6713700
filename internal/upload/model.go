package upload

// Request é o envelope já validado e decodificado de um upload.
type Request struct {
	Path        string
	Content     []byte
	ContentType string
}

// ValidationError descreve corpo de requisição malformado (HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrInvalidJSON    = &ValidationError{Message: "JSON inválido ou ausente"}
	ErrMissingFields  = &ValidationError{Message: "Campos 'path' e 'content_base64' são obrigatórios"}
	ErrInvalidContent = &ValidationError{Message: "content_base64 inválido"}
)

// Endpoint associa uma rota de upload ao content type padrão.
type Endpoint struct {
	Name               string
	DefaultContentType string
}

// Endpoints expostos ao app de coleta.
var (
	Coleta       = Endpoint{Name: "upload-coleta", DefaultContentType: "text/csv"}
	Pesquisador  = Endpoint{Name: "upload-pesquisador", DefaultContentType: "text/plain"}
	Participante = Endpoint{Name: "upload-participante", DefaultContentType: "text/plain"}
)
