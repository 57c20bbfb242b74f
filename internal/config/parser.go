// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/fgeck/gowake/internal/models"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. GOWAKE_WAKE_PORT for wake.port.
const EnvPrefix = "GOWAKE"

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("wake.host", "")
	v.SetDefault("wake.port", transmit.DefaultPort)
	v.SetDefault("wake.source_port", 0)
	v.SetDefault("wake.secure_on", "")
	v.SetDefault("wake.wait", "0s")
	v.SetDefault("wake.fail_fast", false)
	v.SetDefault("wake.continue_on_parse_error", false)
	v.SetDefault("wake.parallel", 1)
	v.SetDefault("wake.ipv6", false)

	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.WakeConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.WakeConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

// Defaults returns the configuration built from defaults and environment
// variables only, for runs without a config file.
func (p *Parser) Defaults() (*models.WakeConfig, error) {
	return p.parse()
}

func (p *Parser) parse() (*models.WakeConfig, error) {
	cfg := &models.WakeConfig{
		Host:       p.expandEnv(p.v.GetString("wake.host")),
		Wait:       p.v.GetDuration("wake.wait"),
		FailFast:   p.v.GetBool("wake.fail_fast"),
		Parallel:   p.v.GetInt("wake.parallel"),
		PreferIPv6: p.v.GetBool("wake.ipv6"),

		ContinueOnParseError: p.v.GetBool("wake.continue_on_parse_error"),
	}

	port, err := toPort("wake.port", p.v.GetInt("wake.port"), false)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	sourcePort, err := toPort("wake.source_port", p.v.GetInt("wake.source_port"), true)
	if err != nil {
		return nil, err
	}
	cfg.SourcePort = sourcePort

	// Parse optional default SecureOn token.
	if s := p.expandEnv(p.v.GetString("wake.secure_on")); s != "" {
		token, err := macaddr.ParseSecureOn(s)
		if err != nil {
			return nil, fmt.Errorf("wake.secure_on: %w", err)
		}
		cfg.SecureOn = &token
	}

	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}

	return cfg, nil
}

func toPort(key string, v int, allowZero bool) (uint16, error) {
	if v < 0 || v > 65535 || (v == 0 && !allowZero) {
		return 0, fmt.Errorf("%s must be a port number, got %d", key, v)
	}
	return uint16(v), nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.WakeConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Port == 0 {
		return fmt.Errorf("wake.port is required")
	}

	if cfg.Wait < 0 {
		return fmt.Errorf("wake.wait must not be negative")
	}

	if cfg.Parallel < 1 {
		return fmt.Errorf("wake.parallel must be at least 1")
	}

	if cfg.Parallel > 1 && cfg.Wait > 0 {
		return fmt.Errorf("wake.wait cannot be combined with wake.parallel")
	}

	return nil
}
