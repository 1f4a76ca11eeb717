package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/kolah/apiconsole/internal/auth"
)

const DefaultFile = "apiconsole.yaml"

type Config struct {
	Document  string         `koanf:"document"`
	Proxy     string         `koanf:"proxy"`
	OAuth2    OAuth2Config   `koanf:"oauth2"`
	HTTP      HTTPConfig     `koanf:"http"`
	Log       LogConfig      `koanf:"log"`
	Templates TemplateConfig `koanf:"templates"`
	Keychain  KeychainConfig `koanf:"keychain"`
}

type OAuth2Config struct {
	RedirectURI  string        `koanf:"redirect-uri"`
	CallbackAddr string        `koanf:"callback-addr"`
	Timeout      time.Duration `koanf:"timeout"`
}

type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

// KeychainConfig holds stored credentials per security scheme name and the
// scheme selected for requests.
type KeychainConfig struct {
	Selected    string                      `koanf:"selected"`
	Credentials map[string]auth.Credentials `koanf:"credentials"`
}

var defaults = map[string]any{
	"oauth2.redirect-uri":  "http://localhost:8085/oauth2/callback",
	"oauth2.callback-addr": "localhost:8085",
	"oauth2.timeout":       "5m",
	"http.timeout":         "30s",
	"log.level":            "info",
	"log.format":           "text",
	"keychain.selected":    auth.AnonymousScheme,
}

// BindCommonFlags binds the flags shared by every command.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: apiconsole.yaml)")
	flags.StringP("document", "d", "", "API description file (RAML, OpenAPI 3 or Swagger 2)")
	flags.String("proxy", "", "URL prefix requests and token exchanges are sent through")
	flags.String("templates", "", "Custom templates directory")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.String("redirect-uri", "", "OAuth2 redirect URI registered with the authorization server")
	flags.String("callback-addr", "", "Listen address of the OAuth2 callback server")
	flags.Duration("oauth2-timeout", 0, "How long to wait for an OAuth2 authorization")
	flags.Duration("http-timeout", 0, "HTTP client timeout")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	var configFile string
	if f := cmd.Flag("config"); f != nil {
		configFile = f.Value.String()
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"document":       "document",
	"proxy":          "proxy",
	"templates":      "templates.dir",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"redirect-uri":   "oauth2.redirect-uri",
	"callback-addr":  "oauth2.callback-addr",
	"oauth2-timeout": "oauth2.timeout",
	"http-timeout":   "http.timeout",
	"scheme":         "keychain.selected",
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	for name, key := range flagKeys {
		// cmd.Flag also finds persistent flags of cmd and its parents
		f := cmd.Flag(name)
		if f == nil || !f.Changed {
			continue
		}
		m[key] = f.Value.String()
	}

	return m
}

func (c *Config) Validate() error {
	if c.Document == "" {
		return fmt.Errorf("document is required")
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Log.Level)
	}

	validFormats := map[string]bool{"": true, "text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Log.Format)
	}

	if c.OAuth2.Timeout <= 0 {
		return fmt.Errorf("oauth2 timeout must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	if c.Proxy != "" {
		if u, err := url.Parse(c.Proxy); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy url: %s", c.Proxy)
		}
	}
	if c.OAuth2.RedirectURI != "" {
		if _, err := url.Parse(c.OAuth2.RedirectURI); err != nil {
			return fmt.Errorf("invalid oauth2 redirect uri: %w", err)
		}
	}

	return nil
}

// NewKeychain returns an auth.Keychain seeded from the stored credentials.
// A stored basic-token fills in a missing username and password.
func (c *Config) NewKeychain(logger *slog.Logger) *auth.Keychain {
	k := auth.NewKeychain()
	for scheme, creds := range c.Keychain.Credentials {
		if creds.BasicToken != "" && creds.Username == "" {
			parsed := auth.ParseBasicToken(creds.BasicToken, logger)
			creds.Username, creds.Password = parsed.Username, parsed.Password
		}
		k.Set(scheme, creds)
	}
	k.Select(c.Keychain.Selected)
	return k
}

// CallbackPath is the path component of the OAuth2 redirect URI.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.OAuth2.RedirectURI)
	if err != nil || u.Path == "" {
		return "/oauth2/callback"
	}
	return u.Path
}
