package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/pesquisacampo/coleta-gateway/internal/audit"
	"github.com/pesquisacampo/coleta-gateway/internal/auth"
	"github.com/pesquisacampo/coleta-gateway/internal/config"
	internalhttp "github.com/pesquisacampo/coleta-gateway/internal/http"
	"github.com/pesquisacampo/coleta-gateway/internal/participante"
	"github.com/pesquisacampo/coleta-gateway/internal/storage"
	"github.com/pesquisacampo/coleta-gateway/internal/upload"
	"github.com/pesquisacampo/coleta-gateway/internal/util"
)

func main() {
	app := newApp(&commands{newClient: clientFromConfig})
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("coletactl falhou")
	}
}

// commands agrupa as ações que falam com o storage; newClient é trocado nos testes.
type commands struct {
	newClient func() (storage.Client, error)
}

func newApp(cmds *commands) *cli.App {
	return &cli.App{
		Name:  "coletactl",
		Usage: "operações de manutenção do gateway de coleta",
		Commands: []*cli.Command{
			{
				Name:      "hash-token",
				Usage:     "gera o hash argon2id para GATEWAY_TOKEN_HASH",
				ArgsUsage: "<token>",
				Action:    hashToken,
			},
			{
				Name:      "upload",
				Usage:     "envia um arquivo local para o storage",
				ArgsUsage: "<arquivo-local> <caminho-no-bucket>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "endpoint",
						Value: "coleta",
						Usage: "coleta, pesquisador ou participante (define o content type padrão)",
					},
					&cli.StringFlag{
						Name:  "content-type",
						Usage: "sobrescreve o content type",
					},
				},
				Action: cmds.uploadFile,
			},
			{
				Name:      "download",
				Usage:     "baixa um objeto do storage",
				ArgsUsage: "<caminho-no-bucket>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "arquivo de saída (padrão: stdout)",
					},
				},
				Action: cmds.downloadFile,
			},
			{
				Name:   "participantes",
				Usage:  "imprime a listagem agregada de participantes em JSON",
				Action: cmds.listParticipantes,
			},
		},
	}
}

func hashToken(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("uso: coletactl hash-token <token>")
	}
	hash, err := auth.HashToken(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, hash)
	return nil
}

func clientFromConfig() (storage.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log.Logger = util.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	client, err := internalhttp.NewStorageClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return client, nil
}

func endpointByName(name string) (upload.Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "coleta":
		return upload.Coleta, nil
	case "pesquisador":
		return upload.Pesquisador, nil
	case "participante":
		return upload.Participante, nil
	default:
		return upload.Endpoint{}, fmt.Errorf("endpoint %q desconhecido", name)
	}
}

func (cmds *commands) uploadFile(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("uso: coletactl upload <arquivo-local> <caminho-no-bucket>")
	}
	endpoint, err := endpointByName(c.String("endpoint"))
	if err != nil {
		return err
	}

	content, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return fmt.Errorf("leitura: %w", err)
	}

	client, err := cmds.newClient()
	if err != nil {
		return err
	}

	contentType := strings.TrimSpace(c.String("content-type"))
	if contentType == "" {
		contentType = endpoint.DefaultContentType
	}

	svc := upload.NewService(client, audit.Nop{}, log.Logger)
	key, err := svc.Upload(c.Context, endpoint, upload.Request{
		Path:        c.Args().Get(1),
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		return err
	}

	log.Info().Str("key", key).Int("bytes", len(content)).Msg("upload concluído")
	return nil
}

func (cmds *commands) downloadFile(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("uso: coletactl download <caminho-no-bucket>")
	}

	client, err := cmds.newClient()
	if err != nil {
		return err
	}

	data, err := client.Get(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		_, err = c.App.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("escrita: %w", err)
	}
	log.Info().Str("file", output).Str("object", c.Args().First()).Int("bytes", len(data)).Msg("download concluído")
	return nil
}

func (cmds *commands) listParticipantes(c *cli.Context) error {
	client, err := cmds.newClient()
	if err != nil {
		return err
	}

	svc := participante.NewService(client, participante.LogSkips(log.Logger))
	participantes, err := svc.List(c.Context)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(participantes)
}
