/*
Copyright 2026 the E-Pasar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/epasar/marketplace-e2e/pkg/constants"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

var (
	ErrBaseURL  = errors.New("invalid base URL")
	ErrTimeout  = errors.New("request timeout must be positive")
	ErrAccount  = errors.New("invalid account")
	ErrEnvFile  = errors.New("env file")
	ErrAccounts = errors.New("accounts file")
)

// Account is a set of login credentials for one test user.
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Accounts are the test users the suite logs in as.
type Accounts struct {
	Seller Account `yaml:"seller"`
	Buyer  Account `yaml:"buyer"`
	Admin  Account `yaml:"admin"`
}

// DefaultAccounts are the users seeded into development databases.
func DefaultAccounts() Accounts {
	return Accounts{
		Seller: Account{Username: "seller_test", Password: "seller123"},
		Buyer:  Account{Username: "buyer_test", Password: "buyer123"},
		Admin:  Account{Username: "admin_test", Password: "admin123"},
	}
}

// Options control a test run.  Defaults are taken from the environment,
// and may be overridden on the command line.
type Options struct {
	// BaseURL is the root of the marketplace API.
	BaseURL string

	// RequestTimeout bounds every single HTTP request.
	RequestTimeout time.Duration

	// AccountsFile optionally points to a YAML file of credentials.
	AccountsFile string

	// Scenarios restricts the run to the named scenarios.
	Scenarios []string

	// MetricsFile, when set, receives Prometheus text format metrics
	// at the end of the run.
	MetricsFile string

	// ValidateContract checks responses against the bundled OpenAPI document.
	ValidateContract bool

	LogRequests  bool
	LogResponses bool
	NoColor      bool

	// Accounts are populated by Complete.
	Accounts Accounts
}

// NewOptions loads any .env file and returns options defaulted from the
// environment.
func NewOptions() (*Options, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	return &Options{
		BaseURL:          getStringWithDefault("API_BASE_URL", constants.DefaultBaseURL),
		RequestTimeout:   getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		AccountsFile:     os.Getenv("ACCOUNTS_FILE"),
		MetricsFile:      os.Getenv("METRICS_FILE"),
		ValidateContract: getBoolWithDefault("VALIDATE_CONTRACT", false),
		LogRequests:      getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:     getBoolWithDefault("LOG_RESPONSES", false),
		NoColor:          getBoolWithDefault("NO_COLOR", false),
		Accounts:         DefaultAccounts(),
	}, nil
}

func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.BaseURL, "base-url", o.BaseURL, "Marketplace API base URL")
	f.DurationVar(&o.RequestTimeout, "request-timeout", o.RequestTimeout, "Timeout applied to each API request")
	f.StringVar(&o.AccountsFile, "accounts", o.AccountsFile, "YAML file containing seller, buyer and admin credentials")
	f.StringArrayVar(&o.Scenarios, "scenario", o.Scenarios, "Run only the named scenario, may be specified more than once")
	f.StringVar(&o.MetricsFile, "metrics-file", o.MetricsFile, "Write Prometheus text format metrics to this file")
	f.BoolVar(&o.ValidateContract, "validate-contract", o.ValidateContract, "Validate responses against the API contract")
	f.BoolVar(&o.LogRequests, "log-requests", o.LogRequests, "Log every request")
	f.BoolVar(&o.LogResponses, "log-responses", o.LogResponses, "Log every response body")
	f.BoolVar(&o.NoColor, "no-color", o.NoColor, "Disable coloured output")
}

// Complete loads anything referenced by the options.
func (o *Options) Complete() error {
	if o.AccountsFile == "" {
		return nil
	}

	data, err := os.ReadFile(o.AccountsFile)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrAccounts, o.AccountsFile, err)
	}

	accounts := o.Accounts

	if err := yaml.Unmarshal(data, &accounts); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrAccounts, o.AccountsFile, err)
	}

	o.Accounts = accounts

	return nil
}

// Validate checks the options are usable, reporting every problem at once.
func (o *Options) Validate() error {
	var errs []error

	u, err := url.Parse(o.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrBaseURL, err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrBaseURL, o.BaseURL))
	}

	if o.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %s", ErrTimeout, o.RequestTimeout))
	}

	accounts := []struct {
		role    string
		account Account
	}{
		{"seller", o.Accounts.Seller},
		{"buyer", o.Accounts.Buyer},
		{"admin", o.Accounts.Admin},
	}

	for _, a := range accounts {
		if a.account.Username == "" || a.account.Password == "" {
			errs = append(errs, fmt.Errorf("%w: %s requires a username and password", ErrAccount, a.role))
		}
	}

	return utilerrors.NewAggregate(errs)
}

// getStringWithDefault gets a string from environment variable or returns default.
func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// loadEnvFile loads ENV_FILE, or .env from the working directory.  A missing
// default file is fine, in CI the environment is set directly.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	explicit := path != ""

	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("%w: %w", ErrEnvFile, err)
		}

		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnvFile, err)
	}

	// Variables already set in the environment take precedence.
	if err := godotenv.Load(absPath); err != nil {
		return fmt.Errorf("%w: loading %s: %w", ErrEnvFile, absPath, err)
	}

	return nil
}
