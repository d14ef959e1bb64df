package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abczzz13/ipmatch"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

var errUnsupportedFormat = errors.New("unsupported config format")

// fileConfig is the optional configuration file. Flags given on the command
// line take precedence over file values.
type fileConfig struct {
	Ranges             []string `koanf:"ranges"`
	Preset             string   `koanf:"preset"`
	StrictNetmasks     bool     `koanf:"strict_netmasks"`
	AllowOverride      bool     `koanf:"allow_override"`
	MaxChainLength     int      `koanf:"max_chain_length"`
	ClientIPHeader     string   `koanf:"client_ip_header"`
	ForwardedForHeader string   `koanf:"forwarded_for_header"`
}

// loadConfig reads path as YAML or JSON, chosen by file extension. An empty
// path yields the zero configuration.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	parser, err := parserFor(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	if cfg.MaxChainLength < 0 {
		return cfg, fmt.Errorf("config %s: max_chain_length must not be negative, got %d", path, cfg.MaxChainLength)
	}

	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: unknown extension %q", errUnsupportedFormat, ext)
	}
}

// rangeTokens flattens configured range entries, each of which may itself be
// a comma-separated list, and appends the preset's ranges.
func (c fileConfig) rangeTokens() ([]string, error) {
	var tokens []string
	for _, entry := range c.Ranges {
		tokens = append(tokens, ipmatch.SplitRanges(entry)...)
	}

	if c.Preset != "" {
		preset, err := ipmatch.PresetRanges(c.Preset)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, preset...)
	}

	return tokens, nil
}

// options translates the file settings into library options.
func (c fileConfig) options(logger ipmatch.Logger) []ipmatch.Option {
	opts := []ipmatch.Option{
		ipmatch.WithLogger(logger),
		ipmatch.WithStrictNetmasks(c.StrictNetmasks),
	}
	if c.MaxChainLength > 0 {
		opts = append(opts, ipmatch.WithMaxChainLength(c.MaxChainLength))
	}
	if c.ClientIPHeader != "" {
		opts = append(opts, ipmatch.WithClientIPHeader(c.ClientIPHeader))
	}
	if c.ForwardedForHeader != "" {
		opts = append(opts, ipmatch.WithForwardedForHeader(c.ForwardedForHeader))
	}
	return opts
}
