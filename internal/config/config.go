package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Veraticus/finchat/internal/common"
	"github.com/spf13/viper"
)

// Default values applied by SetDefaults.
const (
	DefaultBaseURL       = "http://localhost:8000/api/v1"
	DefaultTimeout       = 60 * time.Second
	DefaultStoragePath   = "~/.local/share/finchat/session.db"
	DefaultGreeting      = "¡Hola! Soy Finchat, tu asistente tributario. ¿En qué puedo ayudarte hoy?"
	DefaultApology       = "Lo siento, hubo un error al procesar tu mensaje."
	DefaultConsultFailed = "No pudimos consultar tus comprobantes ahora mismo."
)

// Config is the resolved application configuration.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Logging LoggingConfig
	Chat    ChatConfig
}

// APIConfig describes the backend endpoint.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig locates the durable session store.
type StorageConfig struct {
	Path string
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// ChatConfig holds the user-facing conversation strings.
type ChatConfig struct {
	Greeting       string
	Apology        string
	ConsultApology string
}

// SetDefaults registers every key with its default so env overrides work
// even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("storage.path", DefaultStoragePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("chat.greeting", DefaultGreeting)
	v.SetDefault("chat.apology", DefaultApology)
	v.SetDefault("chat.consult_apology", DefaultConsultFailed)
	v.SetDefault("tui.theme", "default")
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Storage: StorageConfig{
			Path: ExpandPath(v.GetString("storage.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Chat: ChatConfig{
			Greeting:       v.GetString("chat.greeting"),
			Apology:        v.GetString("chat.apology"),
			ConsultApology: v.GetString("chat.consult_apology"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the fields that would otherwise fail late at request time.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url must be an absolute http(s) URL, got %q", common.ErrInvalidConfig, c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", common.ErrInvalidConfig)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path", common.ErrMissingConfig)
	}

	return nil
}
