package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

// Defaults for the workflow knobs when the config file leaves them unset.
// The values mirror the business policy this system was built around.
const (
	defaultReminderThresholdHours = 24
	defaultSessionTimeoutHours    = 24
	defaultCodeExpiryMinutes      = 10
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Worker hosts the reminder scan endpoint and the optional poll loop.
	Worker struct {
		Port         int           `json:"port" yaml:"port"`
		PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
	} `json:"worker" yaml:"worker"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Workflow enumerates the case-workflow knobs. Constructed once at
	// startup and passed to each component constructor; components never
	// read the environment themselves.
	Workflow *WorkflowConfig `json:"workflow" yaml:"workflow"`

	SMTP *SMTPConfig `json:"smtp" yaml:"smtp"`

	Translation *TranslationConfig `json:"translation" yaml:"translation"`

	// Manufacturers is the catalog of submission targets, keyed by the
	// manufacturer ID cases reference.
	Manufacturers map[string]ManufacturerConfig `json:"manufacturers" yaml:"manufacturers"`

	Admin *AdminConfig `json:"admin" yaml:"admin"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost     int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTokenTTL time.Duration `json:"accessTokenTTL" yaml:"accessTokenTTL"`
}

// WorkflowConfig defines the case-workflow policy knobs.
type WorkflowConfig struct {
	ReminderThresholdHours   float64  `json:"reminderThresholdHours" yaml:"reminderThresholdHours"`
	SessionTimeoutHours      int      `json:"sessionTimeoutHours" yaml:"sessionTimeoutHours"`
	CodeExpiryMinutes        int      `json:"codeExpiryMinutes" yaml:"codeExpiryMinutes"`
	AutoApproveManufacturers []string `json:"autoApproveManufacturers" yaml:"autoApproveManufacturers"`
}

// SessionTimeout returns the session timeout as a duration.
func (w *WorkflowConfig) SessionTimeout() time.Duration {
	return time.Duration(w.SessionTimeoutHours) * time.Hour
}

// CodeExpiry returns the verification code expiry window as a duration.
func (w *WorkflowConfig) CodeExpiry() time.Duration {
	return time.Duration(w.CodeExpiryMinutes) * time.Minute
}

// SMTPConfig defines the outgoing mail transport.
type SMTPConfig struct {
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	SenderEmail    string `json:"senderEmail" yaml:"senderEmail"`
	SenderPassword string `json:"senderPassword" yaml:"senderPassword"`
	CompanyName    string `json:"companyName" yaml:"companyName"`
	SupportEmail   string `json:"supportEmail" yaml:"supportEmail"` // Team inbox for approval requests.
	UseMock        bool   `json:"useMock" yaml:"useMock"`
}

// TranslationConfig defines the translation provider.
type TranslationConfig struct {
	APIURL             string            `json:"apiUrl" yaml:"apiUrl"`
	APIKey             string            `json:"apiKey" yaml:"apiKey"`
	UseMock            bool              `json:"useMock" yaml:"useMock"`
	SupportedLanguages map[string]string `json:"supportedLanguages" yaml:"supportedLanguages"` // code -> display name
}

// ManufacturerConfig describes one submission target.
type ManufacturerConfig struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	APIURL  string `json:"apiUrl" yaml:"apiUrl"`
	UseMock bool   `json:"useMock" yaml:"useMock"`
}

// AdminConfig defines the built-in admin identity.
type AdminConfig struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to a dotted path and align each segment
			// with existing YAML keys, e.g. SMTP_SENDEREMAIL -> smtp.senderEmail.
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads the service configuration and applies workflow defaults.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workflow == nil {
		cfg.Workflow = &WorkflowConfig{}
	}
	if cfg.Workflow.ReminderThresholdHours <= 0 {
		cfg.Workflow.ReminderThresholdHours = defaultReminderThresholdHours
	}
	if cfg.Workflow.SessionTimeoutHours <= 0 {
		cfg.Workflow.SessionTimeoutHours = defaultSessionTimeoutHours
	}
	if cfg.Workflow.CodeExpiryMinutes <= 0 {
		cfg.Workflow.CodeExpiryMinutes = defaultCodeExpiryMinutes
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
