package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

var ErrEmptyToken = errors.New("token vazio")

// HashToken gera um hash Argon2id para o token do gateway.
func HashToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return argon2id.CreateHash(token, params)
}

// VerifyToken compara o token com o hash Argon2id (lendo parâmetros do próprio hash).
func VerifyToken(token, encodedHash string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(token, encodedHash)
}

// TokenVerifier valida tokens contra um hash fixo e memoriza o último token aceito,
// evitando refazer o Argon2id a cada requisição do mesmo aplicativo.
type TokenVerifier struct {
	hash string

	mu       sync.RWMutex
	accepted string
}

func NewTokenVerifier(encodedHash string) *TokenVerifier {
	return &TokenVerifier{hash: encodedHash}
}

// Enabled indica se há hash configurado.
func (v *TokenVerifier) Enabled() bool {
	return v != nil && v.hash != ""
}

func (v *TokenVerifier) Verify(token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	v.mu.RLock()
	accepted := v.accepted
	v.mu.RUnlock()
	if accepted != "" && subtle.ConstantTimeCompare([]byte(accepted), []byte(token)) == 1 {
		return true, nil
	}

	ok, err := VerifyToken(token, v.hash)
	if err != nil || !ok {
		return false, err
	}

	v.mu.Lock()
	v.accepted = token
	v.mu.Unlock()
	return true, nil
}
