package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pyhf/hfval/pkg/constants"
	"github.com/pyhf/hfval/pkg/errors"
	"github.com/pyhf/hfval/pkg/reconcile"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Validation defaults
	FittedRules   string
	NuisanceRules string
	ExpandPolicy  string
	Measurement   string
	RuleSets      []RuleSetConfig

	// Logging configuration
	LogLevel    string
	LogLevelEnv string
	LogFormat   string
	LogOutput   string
}

// RuleSetConfig declares a custom rule set. Extends names a registered
// rule set whose rules run before the declared ones.
type RuleSetConfig struct {
	Name        string           `mapstructure:"name"`
	Description string           `mapstructure:"description"`
	Extends     string           `mapstructure:"extends"`
	Rules       []reconcile.Rule `mapstructure:"rules"`
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (HFVAL_ prefix)
// 3. .env files
// 4. Config file (configFile, or .hfval.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rules.fitted", reconcile.RuleSetFitted)
	v.SetDefault("rules.nuisance", reconcile.RuleSetNuisance)
	v.SetDefault("expand_policy", string(reconcile.DefaultExpansionPolicy))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigName)

		// A missing default config file is not an error
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.NewConfigError("config", "cannot read "+constants.ConfigName, err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		FittedRules:   v.GetString("rules.fitted"),
		NuisanceRules: v.GetString("rules.nuisance"),
		ExpandPolicy:  v.GetString("expand_policy"),
		Measurement:   v.GetString("measurement"),

		LogLevelEnv: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := v.UnmarshalKey("rulesets", &config.RuleSets); err != nil {
		return nil, errors.NewConfigError("rulesets", "cannot decode custom rule sets", err)
	}

	if _, err := reconcile.ParseExpansionPolicy(config.ExpandPolicy); err != nil {
		return nil, err
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Registry returns the built-in rule sets plus the configured ones.
func (c *Config) Registry() (*reconcile.Registry, error) {
	registry := reconcile.NewRegistry()
	for _, decl := range c.RuleSets {
		var rules []reconcile.Rule
		if decl.Extends != "" {
			base, err := registry.Get(decl.Extends)
			if err != nil {
				return nil, errors.NewConfigError("rulesets", "rule set "+decl.Name+" extends an unknown rule set", err)
			}
			rules = append(rules, base.Rules...)
		}
		rules = append(rules, decl.Rules...)

		rs, err := reconcile.NewRuleSet(decl.Name, decl.Description, rules...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(rs); err != nil {
			return nil, err
		}
	}

	for _, name := range []string{c.FittedRules, c.NuisanceRules} {
		if _, err := registry.Get(name); err != nil {
			return nil, &errors.ValidationError{Field: "rules", Value: name, Message: "unknown rule set"}
		}
	}
	return registry, nil
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
