package env

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	KeyBeaconURL   = "BEACON_URL"
	KeyOptionsHash = "BEACON_OPTIONS_HASH"
	KeyHeadless    = "BROWSER_HEADLESS"
	KeyBrowserBin  = "BROWSER_BIN"
	KeyConcurrency = "BEACON_CONCURRENCY"
	KeyTimeout     = "BEACON_TIMEOUT"
	KeySinkAddr    = "BEACON_SINK_ADDR"
)

type EnvService struct {
	appEnv string
	loaded []string
}

// NewEnvService loads .env and then .env.<APP_ENV> (APP_ENV defaults to dev),
// the latter overriding the former. Missing files are skipped.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	e := &EnvService{appEnv: appEnv}

	if err := godotenv.Load(".env"); err == nil {
		e.loaded = append(e.loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		e.loaded = append(e.loaded, envFile)
	}

	return e
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

// Loaded lists the env files that were found and applied.
func (e *EnvService) Loaded() []string {
	return e.loaded
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) GetWithDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	return lookup(key, defaultValue, strconv.ParseBool)
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, strconv.Atoi)
}

func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	return lookup(key, defaultValue, time.ParseDuration)
}

// lookup returns defaultValue when key is unset, empty or fails to parse.
func lookup[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := parse(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
