package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ProviderSupabase usa a API REST do Supabase Storage.
	ProviderSupabase = "supabase"
	// ProviderS3 usa qualquer endpoint compatível com S3 (MinIO, R2, AWS).
	ProviderS3 = "s3"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port             int
	LogLevel         string
	LogFormat        string
	Storage          StorageConfig
	GatewayTokenHash string
	RateLimitPublic  RateLimitConfig
	DBDSN            string
	RedisURL         string
	AuditStream      string
}

// StorageConfig descreve o backend de objetos usado pelo gateway.
type StorageConfig struct {
	Provider   string
	URL        string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool
}

// IsComplete indica se URL e credencial do Supabase foram informadas.
func (s StorageConfig) IsComplete() bool {
	return s.URL != "" && s.ServiceKey != ""
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente (e .env, se existir) e aplica defaults.
// A ausência de STORAGE_URL/STORAGE_SERVICE_KEY não impede o boot: cada
// requisição devolve erro de configuração enquanto não forem definidas.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STORAGE_PROVIDER", ProviderSupabase)
	v.SetDefault("STORAGE_BUCKET", "Dados")
	v.SetDefault("STORAGE_TIMEOUT", "15s")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("RATE_LIMIT_RPS", "10")
	v.SetDefault("RATE_LIMIT_BURST", "20")
	v.SetDefault("AUDIT_STREAM", "coleta:uploads")

	cfg := &Config{}

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("PORT")))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL")))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT")))
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, errors.New("LOG_FORMAT deve ser console ou json")
	}

	storageCfg, err := loadStorage(v)
	if err != nil {
		return nil, err
	}
	cfg.Storage = storageCfg

	cfg.GatewayTokenHash = strings.TrimSpace(v.GetString("GATEWAY_TOKEN_HASH"))
	if cfg.GatewayTokenHash != "" && !strings.HasPrefix(cfg.GatewayTokenHash, "$argon2id$") {
		return nil, errors.New("GATEWAY_TOKEN_HASH deve ser um hash argon2id")
	}

	rps, err := strconv.ParseFloat(strings.TrimSpace(v.GetString("RATE_LIMIT_RPS")), 64)
	if err != nil || rps <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS inválido")
	}
	burst, err := strconv.Atoi(strings.TrimSpace(v.GetString("RATE_LIMIT_BURST")))
	if err != nil || burst <= 0 {
		return nil, errors.New("RATE_LIMIT_BURST inválido")
	}
	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: rps, Burst: burst}

	cfg.DBDSN = strings.TrimSpace(v.GetString("DB_DSN"))
	cfg.RedisURL = strings.TrimSpace(v.GetString("REDIS_URL"))
	cfg.AuditStream = strings.TrimSpace(v.GetString("AUDIT_STREAM"))
	if cfg.AuditStream == "" {
		cfg.AuditStream = "coleta:uploads"
	}

	return cfg, nil
}

func loadStorage(v *viper.Viper) (StorageConfig, error) {
	sc := StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_PROVIDER"))),
		URL:         strings.TrimRight(strings.TrimSpace(v.GetString("STORAGE_URL")), "/"),
		ServiceKey:  strings.TrimSpace(v.GetString("STORAGE_SERVICE_KEY")),
		Bucket:      strings.TrimSpace(v.GetString("STORAGE_BUCKET")),
		S3Endpoint:  strings.TrimSpace(v.GetString("S3_ENDPOINT")),
		S3AccessKey: strings.TrimSpace(v.GetString("S3_ACCESS_KEY")),
		S3SecretKey: strings.TrimSpace(v.GetString("S3_SECRET_KEY")),
		S3Region:    strings.TrimSpace(v.GetString("S3_REGION")),
		S3UseSSL:    v.GetBool("S3_USE_SSL"),
	}

	if sc.Bucket == "" {
		sc.Bucket = "Dados"
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("STORAGE_TIMEOUT")))
	if err != nil || timeout <= 0 {
		return StorageConfig{}, errors.New("STORAGE_TIMEOUT inválido")
	}
	sc.Timeout = timeout

	switch sc.Provider {
	case "", ProviderSupabase:
		sc.Provider = ProviderSupabase
	case ProviderS3:
		if sc.S3Endpoint == "" || sc.S3AccessKey == "" || sc.S3SecretKey == "" {
			return StorageConfig{}, errors.New("S3_ENDPOINT, S3_ACCESS_KEY e S3_SECRET_KEY obrigatórios para STORAGE_PROVIDER=s3")
		}
	default:
		return StorageConfig{}, errors.New("STORAGE_PROVIDER " + sc.Provider + " não suportado")
	}

	return sc, nil
}
