// Package config loads the chat host settings: the MCP server connection map
// plus model and loop knobs.
//
// The file format is the conventional server_config.json with an "mcpServers"
// object keyed by server name. A missing config file is not an error: the host
// starts with zero providers and the conversation proceeds tool-less.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultPath is where the server connection map is looked up.
const DefaultPath = "server_config.json"

// ServerConfig holds what it takes to launch one MCP server over stdio.
type ServerConfig struct {
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
}

// Config is the loaded host configuration.
type Config struct {
	// Servers maps server name to its launch parameters. May be empty.
	Servers map[string]ServerConfig

	// Model overrides the default model name when non-empty.
	Model string

	// MaxTurns caps model invocations per query; 0 means the loop default.
	MaxTurns int

	// ToolTimeout bounds one tool invocation; 0 means the dispatcher default.
	ToolTimeout time.Duration
}

// ServerNames returns the configured server names sorted alphabetically, so
// connection order (and with it catalog order) is deterministic across runs.
func (c Config) ServerNames() []string {
	names := make([]string, 0, len(c.Servers))
	for name := range c.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads the config file at path and applies MCPCHAT_* env overrides.
// A missing file yields an empty (but valid) configuration.
func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err == nil {
		v := viper.New()
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}

		// viper lowercases nested keys, which would corrupt case-sensitive
		// server names and env variable names. The mcpServers block is decoded
		// from the raw bytes instead; viper keeps serving the scalar knobs.
		var file struct {
			Servers map[string]map[string]any `json:"mcpServers"`
		}
		if err := json.Unmarshal(b, &file); err != nil {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
		if file.Servers != nil {
			if err := decodeSettings(file.Servers, &cfg.Servers); err != nil {
				return cfg, fmt.Errorf("%s: mcpServers: %w", path, err)
			}
		}
		cfg.Model = v.GetString("model")
		cfg.MaxTurns = v.GetInt("maxTurns")
		if secs := v.GetInt("toolTimeoutSeconds"); secs > 0 {
			cfg.ToolTimeout = time.Duration(secs) * time.Second
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	for name, sc := range cfg.Servers {
		if strings.TrimSpace(sc.Command) == "" {
			return cfg, fmt.Errorf("server %q: command is required", name)
		}
	}

	if m := os.Getenv("MCPCHAT_MODEL"); m != "" {
		cfg.Model = m
	}
	if s := os.Getenv("MCPCHAT_MAX_TURNS"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid MCPCHAT_MAX_TURNS %q: %w", s, err)
		}
		cfg.MaxTurns = n
	}

	return cfg, nil
}

// decodeSettings decodes a free-form settings value into a typed struct.
func decodeSettings(input any, out any) error {
	dc := &mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
