package participante

// Participante é reconstruído a cada listagem a partir do dados.txt salvo pelo app.
type Participante struct {
	Name  string  `json:"name"`
	CPF   string  `json:"cpf"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

const (
	// Prefix é a pasta do bucket onde o app grava os participantes.
	Prefix = "participantes/"

	// RecordSuffix identifica o arquivo de dados de cada participante.
	RecordSuffix = "/dados.txt"
)

const cpfLength = 11

// Placeholder gravado pelo app quando o campo não foi preenchido.
const emptyPlaceholder = "—"

// SkipReason explica por que um arquivo listado não virou participante.
type SkipReason string

const (
	SkipFetch      SkipReason = "fetch"
	SkipInvalidCPF SkipReason = "invalid_cpf"
)
