package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pesquisacampo/coleta-gateway/internal/auth"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
	"github.com/pesquisacampo/coleta-gateway/internal/upload"
)

type memStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemStorage(objects map[string]string) *memStorage {
	m := &memStorage{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	for key, body := range objects {
		m.objects[key] = []byte(body)
	}
	return m
}

func (m *memStorage) Put(ctx context.Context, path string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = body
	m.contentTypes[path] = contentType
	return "Dados/" + path, nil
}

func (m *memStorage) Get(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, &storage.BackendError{Op: "get", StatusCode: http.StatusNotFound, Body: "not found"}
	}
	return data, nil
}

func (m *memStorage) List(ctx context.Context, prefix string, limit int) ([]storage.ObjectRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var refs []storage.ObjectRef
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			refs = append(refs, storage.ObjectRef{Name: strings.TrimPrefix(key, prefix)})
		}
	}
	return refs, nil
}

func runApp(t *testing.T, store storage.Client, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&commands{newClient: func() (storage.Client, error) { return store, nil }})
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"coletactl"}, args...))
	return out.String(), err
}

func TestEndpointByName(t *testing.T) {
	cases := map[string]upload.Endpoint{
		"coleta":        upload.Coleta,
		" Pesquisador ": upload.Pesquisador,
		"PARTICIPANTE":  upload.Participante,
	}
	for name, want := range cases {
		got, err := endpointByName(name)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err %v", name, got, err)
		}
	}
	if _, err := endpointByName("outro"); err == nil {
		t.Fatal("expected error for unknown endpoint")
	}
}

func TestHashTokenCommand(t *testing.T) {
	var out bytes.Buffer
	app := &cli.App{Writer: &out}

	set := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	if err := set.Parse([]string{"segredo"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := hashToken(cli.NewContext(app, set, nil)); err != nil {
		t.Fatalf("hash-token: %v", err)
	}

	hash := strings.TrimSpace(out.String())
	ok, err := auth.VerifyToken("segredo", hash)
	if err != nil || !ok {
		t.Fatalf("printed hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestUploadCommand(t *testing.T) {
	store := newMemStorage(nil)
	local := filepath.Join(t.TempDir(), "dados.txt")
	if err := os.WriteFile(local, []byte("Nome: Ana\nCPF: 12345678900\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := runApp(t, store, "upload", "--endpoint", "participante", local, "participantes/ana/dados.txt"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if string(store.objects["participantes/ana/dados.txt"]) != "Nome: Ana\nCPF: 12345678900\n" {
		t.Fatalf("unexpected stored body %q", store.objects["participantes/ana/dados.txt"])
	}
	if store.contentTypes["participantes/ana/dados.txt"] != "text/plain" {
		t.Fatalf("expected endpoint default content type, got %q", store.contentTypes["participantes/ana/dados.txt"])
	}

	if _, err := runApp(t, store, "upload", "--content-type", "application/json", local, "coletas/x.json"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if store.contentTypes["coletas/x.json"] != "application/json" {
		t.Fatalf("expected override content type, got %q", store.contentTypes["coletas/x.json"])
	}
}

func TestUploadCommandErrors(t *testing.T) {
	store := newMemStorage(nil)
	if _, err := runApp(t, store, "upload", "so-um-argumento"); err == nil {
		t.Fatal("expected usage error")
	}
	if _, err := runApp(t, store, "upload", filepath.Join(t.TempDir(), "nao-existe"), "x"); err == nil {
		t.Fatal("expected read error")
	}
	if _, err := runApp(t, store, "upload", "--endpoint", "outro", "a", "b"); err == nil {
		t.Fatal("expected unknown endpoint error")
	}
	if len(store.objects) != 0 {
		t.Fatalf("nothing should be stored, got %v", store.objects)
	}
}

func TestDownloadCommand(t *testing.T) {
	store := newMemStorage(map[string]string{"coletas/2024/dados.csv": "a;b\n"})

	out, err := runApp(t, store, "download", "coletas/2024/dados.csv")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if out != "a;b\n" {
		t.Fatalf("unexpected stdout %q", out)
	}

	target := filepath.Join(t.TempDir(), "saida.csv")
	if _, err := runApp(t, store, "download", "-o", target, "coletas/2024/dados.csv"); err != nil {
		t.Fatalf("download: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "a;b\n" {
		t.Fatalf("unexpected file content %q err %v", data, err)
	}

	_, err = runApp(t, store, "download", "nao/existe")
	var be *storage.BackendError
	if !errors.As(err, &be) || be.StatusCode != http.StatusNotFound {
		t.Fatalf("expected BackendError 404 got %v", err)
	}
}

func TestParticipantesCommand(t *testing.T) {
	store := newMemStorage(map[string]string{
		"participantes/b/dados.txt": "Nome: bruno\nCPF: 22222222222\n",
		"participantes/a/dados.txt": "Nome: Ana\nCPF: 11111111111\nEmail: ana@x.com\n",
		"participantes/c/dados.txt": "Nome: Sem CPF\n",
		"participantes/a/foto.jpg":  "binario",
	})

	out, err := runApp(t, store, "participantes")
	if err != nil {
		t.Fatalf("participantes: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 2 || got[0]["name"] != "Ana" || got[1]["name"] != "bruno" {
		t.Fatalf("unexpected listing %v", got)
	}
	if got[0]["email"] != "ana@x.com" || got[1]["email"] != nil {
		t.Fatalf("unexpected emails %v", got)
	}
}

func TestStorageCommandsPropagateClientError(t *testing.T) {
	app := newApp(&commands{newClient: func() (storage.Client, error) {
		return nil, errors.New("config: PORT inválida")
	}})
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	for _, args := range [][]string{{"download", "x"}, {"participantes"}} {
		if err := app.Run(append([]string{"coletactl"}, args...)); err == nil || !strings.Contains(err.Error(), "PORT") {
			t.Fatalf("%v: expected client error got %v", args, err)
		}
	}
}
