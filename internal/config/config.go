package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type Config struct {
	RuntimeName string          `yaml:"runtime_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Bus         BusConfig       `yaml:"bus"`
	Audit       AuditConfig     `yaml:"audit"`
	STT         STTConfig       `yaml:"stt"`
	LLM         LLMConfig       `yaml:"llm"`
	TTS         TTSConfig       `yaml:"tts"`
	Models      []ModelEntry    `yaml:"models"`

	// HFToken is never read from yaml; it comes from the HF_TOKEN
	// environment variable only.
	HFToken string `yaml:"-"`
}

type BusConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type AuditConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxSessions   int    `yaml:"max_sessions"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type STTConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Mode       string `yaml:"mode"` // mock, hf
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	SampleRate int    `yaml:"sample_rate"`
}

type LLMConfig struct {
	Mode         string  `yaml:"mode"` // mock, hf, openai
	Endpoint     string  `yaml:"endpoint"`
	DefaultModel string  `yaml:"default_model"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
}

type TTSConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Mode             string `yaml:"mode"` // mock, hf
	Endpoint         string `yaml:"endpoint"`
	Model            string `yaml:"model"`
	FallbackEndpoint string `yaml:"fallback_endpoint"`
	ArtifactDir      string `yaml:"artifact_dir"`
}

// ModelEntry maps a UI label to a remote model identifier.
type ModelEntry struct {
	Label    string `yaml:"label"`
	Endpoint string `yaml:"endpoint"`
}

func Default() Config {
	return Config{
		RuntimeName: "virtual-teacher",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 7860,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Bus: BusConfig{
			Enabled:        false,
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Audit: AuditConfig{
			Path:          "./data/teacher-audit.db",
			RetentionMode: "ephemeral",
			RetentionDays: 30,
			MaxSessions:   10000,
		},
		STT: STTConfig{
			Enabled:    true,
			Mode:       "hf",
			Endpoint:   "https://api-inference.huggingface.co",
			Model:      "openai/whisper-base",
			SampleRate: 16000,
		},
		LLM: LLMConfig{
			Mode:         "hf",
			Endpoint:     "https://api-inference.huggingface.co",
			DefaultModel: "HuggingFaceH4/zephyr-7b-beta",
			MaxTokens:    500,
			Temperature:  0.7,
		},
		TTS: TTSConfig{
			Enabled:          true,
			Mode:             "hf",
			Endpoint:         "https://api-inference.huggingface.co",
			Model:            "facebook/mms-tts-ara",
			FallbackEndpoint: "https://translate.google.com/translate_tts",
			ArtifactDir:      "",
		},
		Models: []ModelEntry{
			{Label: "Zephyr 7B", Endpoint: "HuggingFaceH4/zephyr-7b-beta"},
			{Label: "Llama 2 7B Chat", Endpoint: "meta-llama/Llama-2-7b-chat-hf"},
			{Label: "Mistral 7B Instruct", Endpoint: "mistralai/Mistral-7B-Instruct-v0.1"},
			{Label: "CodeLlama 7B", Endpoint: "codellama/CodeLlama-7b-Python-hf"},
			{Label: "Falcon 7B Instruct", Endpoint: "tiiuae/falcon-7b-instruct"},
			{Label: "OpenChat 3.5", Endpoint: "openchat/openchat-3.5-1210"},
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "VT_RUNTIME_NAME")
	overrideString(&cfg.Environment, "VT_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "VT_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "VT_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "VT_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "VT_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "VT_TELEMETRY_OTLP_INSECURE")
	overrideBool(&cfg.Bus.Enabled, "VT_BUS_ENABLED")
	overrideBool(&cfg.Bus.Embedded, "VT_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "VT_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "VT_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "VT_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "VT_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "VT_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "VT_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "VT_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Audit.Path, "VT_AUDIT_PATH")
	overrideString(&cfg.Audit.RetentionMode, "VT_AUDIT_RETENTION_MODE")
	overrideInt(&cfg.Audit.RetentionDays, "VT_AUDIT_RETENTION_DAYS")
	overrideInt(&cfg.Audit.MaxSessions, "VT_AUDIT_MAX_SESSIONS")
	overrideBool(&cfg.Audit.VacuumOnStart, "VT_AUDIT_VACUUM_ON_START")
	overrideBool(&cfg.STT.Enabled, "VT_STT_ENABLED")
	overrideString(&cfg.STT.Mode, "VT_STT_MODE")
	overrideString(&cfg.STT.Endpoint, "VT_STT_ENDPOINT")
	overrideString(&cfg.STT.Model, "VT_STT_MODEL")
	overrideInt(&cfg.STT.SampleRate, "VT_STT_SAMPLE_RATE")
	overrideString(&cfg.LLM.Mode, "VT_LLM_MODE")
	overrideString(&cfg.LLM.Endpoint, "VT_LLM_ENDPOINT")
	overrideString(&cfg.LLM.DefaultModel, "VT_LLM_DEFAULT_MODEL")
	overrideInt(&cfg.LLM.MaxTokens, "VT_LLM_MAX_TOKENS")
	overrideFloat(&cfg.LLM.Temperature, "VT_LLM_TEMPERATURE")
	overrideBool(&cfg.TTS.Enabled, "VT_TTS_ENABLED")
	overrideString(&cfg.TTS.Mode, "VT_TTS_MODE")
	overrideString(&cfg.TTS.Endpoint, "VT_TTS_ENDPOINT")
	overrideString(&cfg.TTS.Model, "VT_TTS_MODEL")
	overrideString(&cfg.TTS.FallbackEndpoint, "VT_TTS_FALLBACK_ENDPOINT")
	overrideString(&cfg.TTS.ArtifactDir, "VT_TTS_ARTIFACT_DIR")
	overrideString(&cfg.HFToken, "HF_TOKEN")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Enabled {
		if cfg.Bus.Embedded {
			if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
				return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
			}
		} else if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Audit.Path == "" {
		return errors.New("audit.path must not be empty")
	}
	switch cfg.Audit.RetentionMode {
	case "ephemeral", "session", "persistent":
		// ok
	default:
		return errors.New("audit.retention_mode must be one of ephemeral|session|persistent")
	}
	if cfg.Audit.RetentionDays < 0 {
		return errors.New("audit.retention_days must be >= 0")
	}
	if cfg.STT.Enabled {
		switch cfg.STT.Mode {
		case "mock", "hf":
		default:
			return errors.New("stt.mode must be one of mock|hf")
		}
		if cfg.STT.Mode == "hf" && cfg.STT.Endpoint == "" {
			return errors.New("stt.endpoint must be set when mode=hf")
		}
		if cfg.STT.SampleRate <= 0 {
			return errors.New("stt.sample_rate must be positive")
		}
	}
	switch cfg.LLM.Mode {
	case "mock", "hf", "openai":
	default:
		return errors.New("llm.mode must be one of mock|hf|openai")
	}
	if cfg.LLM.Mode != "mock" && cfg.LLM.Endpoint == "" {
		return errors.New("llm.endpoint must be set unless mode=mock")
	}
	if cfg.LLM.MaxTokens < 0 {
		return errors.New("llm.max_tokens must be >= 0")
	}
	if cfg.TTS.Enabled {
		switch cfg.TTS.Mode {
		case "mock", "hf":
		default:
			return errors.New("tts.mode must be one of mock|hf")
		}
		if cfg.TTS.Mode == "hf" && cfg.TTS.Endpoint == "" {
			return errors.New("tts.endpoint must be set when mode=hf")
		}
		if cfg.TTS.FallbackEndpoint == "" {
			return errors.New("tts.fallback_endpoint must not be empty")
		}
	}
	if len(cfg.Models) == 0 {
		return errors.New("models must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Models))
	for _, m := range cfg.Models {
		if m.Label == "" || m.Endpoint == "" {
			return errors.New("models entries need both label and endpoint")
		}
		if seen[m.Label] {
			return fmt.Errorf("duplicate model label %q", m.Label)
		}
		seen[m.Label] = true
	}
	if cfg.LLM.DefaultModel == "" {
		return errors.New("llm.default_model must not be empty")
	}
	return nil
}
