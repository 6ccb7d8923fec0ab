package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "PULSE_ADMIN"

const (
	Debug = "debug"

	ApiBaseUrl = "api.base-url"
	ApiToken   = "api.token"
	ApiTimeout = "api.timeout"
	ApiRetries = "api.retries"

	PreferencesPath    = "preferences.path"
	PreferencesEnabled = "preferences.enabled"

	PaginationPageSize    = "pagination.page-size"
	PaginationMaxPageSize = "pagination.max-page-size"
	PaginationMaxVisible  = "pagination.max-visible"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample-rate"

	ExportOutputFile = "export.output-file"
)

const (
	DefaultApiBaseUrl     = "http://localhost:3000"
	DefaultApiTimeout     = 30 * time.Second
	DefaultApiRetries     = 3
	DefaultPageSize       = 25
	DefaultMaxPageSize    = 1000
	DefaultMaxVisible     = 5
	DefaultPrometheusPort = 2112
)

type ApiConfig struct {
	BaseUrl string
	Token   string
	Timeout time.Duration
	Retries int
}

type PreferencesConfig struct {
	Enabled bool
	Path    string
}

type PaginationConfig struct {
	PageSize    int
	MaxPageSize int
	MaxVisible  int
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type Config struct {
	Debug             bool
	ApiConfig         ApiConfig
	PreferencesConfig PreferencesConfig
	PaginationConfig  PaginationConfig
	PrometheusConfig  PrometheusConfig
	DataDogConfig     DataDogConfig
}

// LoadDotEnv loads a .env file from the working directory when one exists.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func NewConfig() *Config {
	return &Config{
		Debug: viper.GetBool(normalizeFlagName(Debug)),

		ApiConfig: ApiConfig{
			BaseUrl: strings.TrimRight(stringWithDefault(ApiBaseUrl, DefaultApiBaseUrl), "/"),
			Token:   viper.GetString(normalizeFlagName(ApiToken)),
			Timeout: durationWithDefault(ApiTimeout, DefaultApiTimeout),
			Retries: intWithDefault(ApiRetries, DefaultApiRetries),
		},

		PreferencesConfig: PreferencesConfig{
			Enabled: viper.GetBool(normalizeFlagName(PreferencesEnabled)),
			Path:    stringWithDefault(PreferencesPath, DefaultPreferencesPath()),
		},

		PaginationConfig: PaginationConfig{
			PageSize:    intWithDefault(PaginationPageSize, DefaultPageSize),
			MaxPageSize: intWithDefault(PaginationMaxPageSize, DefaultMaxPageSize),
			MaxVisible:  intWithDefault(PaginationMaxVisible, DefaultMaxVisible),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    intWithDefault(PrometheusPort, DefaultPrometheusPort),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: float64WithDefault(DataDogStatsdSampleRate, 1.0),
			},
		},
	}
}

// DefaultPreferencesPath is the leveldb directory used to remember pagination settings.
func DefaultPreferencesPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return strings.Join([]string{dir, "pulse-admin", "preferences"}, string(os.PathSeparator))
}

func stringWithDefault(key string, def string) string {
	if v := viper.GetString(normalizeFlagName(key)); v != "" {
		return v
	}
	return def
}

func intWithDefault(key string, def int) int {
	if v := viper.GetInt(normalizeFlagName(key)); v > 0 {
		return v
	}
	return def
}

func float64WithDefault(key string, def float64) float64 {
	if v := viper.GetFloat64(normalizeFlagName(key)); v > 0 {
		return v
	}
	return def
}

func durationWithDefault(key string, def time.Duration) time.Duration {
	if v := viper.GetDuration(normalizeFlagName(key)); v > 0 {
		return v
	}
	return def
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}
