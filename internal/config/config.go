package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/muhammadolammi/musecareer/internal/llm"
	"github.com/muhammadolammi/musecareer/internal/objectstore"
)

const (
	ProviderREST  = "rest"
	ProviderGenAI = "genai"
	ProviderAgent = "agent"

	AuthAPIKey = "api_key"
	AuthBearer = "bearer"

	DefaultModel        = "gemini-2.0-flash"
	DefaultPort         = "3000"
	DefaultMaxBodyBytes = 10 << 20
	DefaultQueue        = "analysis_jobs"
	DefaultWorkers      = 2
)

type LLMConfig struct {
	Provider        string
	Auth            string
	APIKey          string
	CredentialsFile string
	Project         string
	Location        string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	Options         llm.Options
}

type RabbitConfig struct {
	URL      string
	Exchange string
	// Queue and Workers are only used by the queue worker.
	Queue   string
	Workers int
}

type OtelConfig struct {
	Enabled  bool
	Exporter string
}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Env          string
	Port         string
	MaxBodyBytes int64
	CORSOrigins  []string
	LLM          LLMConfig
	Rabbit       RabbitConfig
	R2           objectstore.R2Config
	Otel         OtelConfig
}

// R2Enabled reports whether fileData parts can be resolved.
func (c Config) R2Enabled() bool {
	return c.R2.AccessKey != "" && c.R2.SecretKey != "" && (c.R2.AccountID != "" || c.R2.Endpoint != "")
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Every problem found is
// reported in one error.
func FromEnv(getenv func(string) string) (Config, error) {
	var errs []error
	get := func(name string) string { return strings.TrimSpace(getenv(name)) }
	or := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	opts := llm.DefaultOptions()
	if v := get("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LLM_TEMPERATURE %q", v))
		} else {
			opts.Temperature = float32(f)
		}
	}
	if v := get("LLM_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("invalid LLM_MAX_OUTPUT_TOKENS %q", v))
		} else {
			opts.MaxOutputTokens = int32(n)
		}
	}
	if v := get("LLM_TOP_K"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LLM_TOP_K %q", v))
		} else {
			k := float32(f)
			opts.TopK = &k
		}
	}
	if v := get("LLM_TOP_P"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LLM_TOP_P %q", v))
		} else {
			p := float32(f)
			opts.TopP = &p
		}
	}

	var timeout time.Duration
	if v := get("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid LLM_TIMEOUT %q", v))
		}
		timeout = d
	}

	workers := DefaultWorkers
	if v := get("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("invalid WORKER_COUNT %q", v))
		} else {
			workers = n
		}
	}

	maxBody := int64(DefaultMaxBodyBytes)
	if v := get("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("invalid MAX_BODY_BYTES %q", v))
		} else {
			maxBody = n
		}
	}

	cfg := Config{
		Env:          or(get("APP_ENV"), "dev"),
		Port:         or(get("PORT"), DefaultPort),
		MaxBodyBytes: maxBody,
		CORSOrigins:  splitList(get("CORS_ORIGINS")),
		LLM: LLMConfig{
			Provider:        strings.ToLower(or(get("LLM_PROVIDER"), ProviderREST)),
			Auth:            strings.ToLower(or(get("LLM_AUTH"), AuthAPIKey)),
			APIKey:          or(get("GEMINI_API_KEY"), get("GOOGLE_API_KEY")),
			CredentialsFile: get("GOOGLE_APPLICATION_CREDENTIALS"),
			Project:         get("GOOGLE_CLOUD_PROJECT"),
			Location:        or(get("GOOGLE_CLOUD_LOCATION"), "us-central1"),
			Model:           or(get("LLM_MODEL"), DefaultModel),
			BaseURL:         get("LLM_BASE_URL"),
			Timeout:         timeout,
			Options:         opts,
		},
		Rabbit: RabbitConfig{
			URL:      get("RABBITMQ_URL"),
			Exchange: get("RABBITMQ_EXCHANGE"),
			Queue:    or(get("RABBITMQ_QUEUE"), DefaultQueue),
			Workers:  workers,
		},
		R2: objectstore.R2Config{
			AccountID: get("R2_ACCOUNT_ID"),
			Bucket:    get("R2_BUCKET"),
			AccessKey: get("R2_ACCESS_KEY"),
			SecretKey: get("R2_SECRET_KEY"),
			Endpoint:  get("S3_ENDPOINT"),
		},
		Otel: OtelConfig{
			Enabled:  parseBool(get("OTEL_ENABLED")),
			Exporter: strings.ToLower(or(get("OTEL_EXPORTER"), "stdout")),
		},
	}

	switch cfg.LLM.Provider {
	case ProviderREST:
		switch cfg.LLM.Auth {
		case AuthAPIKey:
			if cfg.LLM.APIKey == "" {
				errs = append(errs, errors.New("empty GEMINI_API_KEY in environment"))
			}
		case AuthBearer:
		default:
			errs = append(errs, fmt.Errorf("unknown LLM_AUTH %q", cfg.LLM.Auth))
		}
	case ProviderGenAI:
		if cfg.LLM.APIKey == "" && cfg.LLM.Project == "" {
			errs = append(errs, errors.New("genai provider needs GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT"))
		}
	case ProviderAgent:
		if cfg.LLM.APIKey == "" {
			errs = append(errs, errors.New("empty GEMINI_API_KEY in environment"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLM.Provider))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
