// Package config holds the settings of the retirement commands.
//
// A Config is built once per process by Load, layering, from lowest to
// highest precedence: the struct defaults, an optional YAML file, an optional
// .env file and the process environment. The result is validated before being
// handed to the constructors that need it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/etnz/retirement"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the configuration.
const (
	EnvMonthlyNeed    = "RTM_MONTHLY_NEED"
	EnvBufferYears    = "RTM_BUFFER_YEARS"
	EnvCash           = "RTM_CASH"
	EnvMethod         = "RTM_METHOD"
	EnvCacheDir       = "RTM_CACHE_DIR"
	EnvMCPServerURL   = "MCP_SERVER_URL"
	EnvCryptoAPIKey   = "CRYPTO_API_KEY"
	EnvCryptoAPIURL   = "CRYPTO_API_URL"
	EnvRiskTolerance  = "RISK_TOLERANCE"
	EnvExitMethod     = "EXIT_METHOD"
	EnvRetirementAge  = "RETIREMENT_AGE"
	EnvRetirementGoal = "RETIREMENT_GOAL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiModel    = "GEMINI_MODEL"
)

// Config is the configuration of the retirement commands.
type Config struct {
	// Buffer
	MonthlyNeed float64 `yaml:"monthly_need" default:"5000" validate:"gte=0"`
	BufferYears int     `yaml:"buffer_years" default:"2" validate:"gte=0"`
	Cash        float64 `yaml:"cash" default:"100000"`
	Method      string  `yaml:"method" default:"hifo" validate:"oneof=hifo fifo"`

	// Exit strategy
	RiskTolerance  string  `yaml:"risk_tolerance" default:"moderate" validate:"oneof=conservative moderate aggressive"`
	ExitMethod     string  `yaml:"exit_method" default:"gradual" validate:"oneof=immediate gradual dca dollar_cost_average ladder smart smart_exit"`
	RetirementAge  int     `yaml:"retirement_age" default:"65" validate:"gte=30,lte=90"`
	RetirementGoal float64 `yaml:"retirement_goal" default:"500000" validate:"gte=0"`

	// Collaborators
	MCPServerURL string `yaml:"mcp_server_url" default:"http://10.0.0.209:8000" validate:"required,http_url"`
	CryptoAPIURL string `yaml:"crypto_api_url" default:"https://api.coingecko.com/api/v3" validate:"required,http_url"`
	CryptoAPIKey string `yaml:"crypto_api_key"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model" default:"gemini-2.5-pro"`
	CacheDir     string `yaml:"cache_dir"`

	LogLevel string `yaml:"log_level" default:"warn" validate:"oneof=debug info warn error disabled"`
}

// Default returns the configuration made of the default values only.
func Default() Config {
	var c Config
	defaults.MustSet(&c)
	return c
}

// Load builds the configuration. path is an optional YAML file, envFiles are
// optional .env files, ".env" when none is given. Missing files are not an
// error.
func Load(path string, envFiles ...string) (Config, error) {
	c := Default()

	if path != "" {
		if err := c.loadYAML(path); err != nil {
			return c, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := c.Override(os.LookupEnv); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) loadYAML(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Override applies the environment variables found by lookup.
func (c *Config) Override(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid number %q", key, v))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid integer %q", key, v))
				return
			}
			*dst = i
		}
	}

	num(EnvMonthlyNeed, &c.MonthlyNeed)
	integer(EnvBufferYears, &c.BufferYears)
	num(EnvCash, &c.Cash)
	str(EnvMethod, &c.Method)
	str(EnvCacheDir, &c.CacheDir)
	str(EnvMCPServerURL, &c.MCPServerURL)
	str(EnvCryptoAPIKey, &c.CryptoAPIKey)
	str(EnvCryptoAPIURL, &c.CryptoAPIURL)
	str(EnvRiskTolerance, &c.RiskTolerance)
	str(EnvExitMethod, &c.ExitMethod)
	integer(EnvRetirementAge, &c.RetirementAge)
	num(EnvRetirementGoal, &c.RetirementGoal)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvGeminiAPIKey, &c.GeminiAPIKey)
	str(EnvGeminiModel, &c.GeminiModel)

	// values are case insensitive
	c.Method = strings.ToLower(c.Method)
	c.RiskTolerance = strings.ToLower(c.RiskTolerance)
	c.ExitMethod = strings.ToLower(c.ExitMethod)
	c.LogLevel = strings.ToLower(c.LogLevel)

	return errors.Join(errs...)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their yaml name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports all the violations at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, errors.New(message(fe)))
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %q", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s, got %v", field, fe.Param(), fe.Value())
	case "http_url":
		return fmt.Sprintf("%s must be an http(s) URL, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// CostBasisMethod returns the lot selection method.
func (c Config) CostBasisMethod() retirement.CostBasisMethod {
	m, _ := retirement.ParseCostBasisMethod(c.Method)
	return m
}

// Tolerance returns the risk tolerance of the exit plan.
func (c Config) Tolerance() retirement.RiskTolerance {
	t, _ := retirement.ParseRiskTolerance(c.RiskTolerance)
	return t
}

// Exit returns the exit method of the exit plan.
func (c Config) Exit() retirement.ExitMethod {
	m, _ := retirement.ParseExitMethod(c.ExitMethod)
	return m
}

// Goal returns the retirement goal.
func (c Config) Goal() retirement.Money { return retirement.Dollars(c.RetirementGoal) }

// MonthlyNeedAmount returns the monthly withdrawal.
func (c Config) MonthlyNeedAmount() retirement.Money { return retirement.Dollars(c.MonthlyNeed) }

// CashAmount returns the starting buffer balance.
func (c Config) CashAmount() retirement.Money { return retirement.Dollars(c.Cash) }

// Masked returns a copy of c safe to print, secrets reduced to their last
// four characters.
func (c Config) Masked() Config {
	c.CryptoAPIKey = mask(c.CryptoAPIKey)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	return c
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "***"
	default:
		return "***" + s[len(s)-4:]
	}
}

// YAML encodes c in the format read by Load.
func (c Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(b), nil
}
