/*
Package configs is responsible for loading and parsing the application's configuration settings.

Configuration is read from a YAML file whose path is supplied on the command line.
It covers the IRC listener (port, bind scope, advertised hostname), the channel
allow-list, the platform gateway credentials, and the optional status API port.
*/
package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig contains all configuration parameters required for the bridge to run.
type AppConfig struct {
	// Token is the credential used to authenticate against the remote platform
	// gateway. Required; startup fails without it.
	Token string `yaml:"token"`

	// Port is the TCP port the IRC listener binds to. Defaults to 6667.
	Port int `yaml:"port"`

	// Debug enables verbose console logging (may slow things down).
	Debug bool `yaml:"debug"`

	// ListenAll binds the IRC listener to all interfaces instead of loopback.
	// Off by default: no authentication exists, exposing the listener is a
	// deliberate extra step.
	ListenAll bool `yaml:"listen_all"`

	// ServerHostname is the hostname string used in synthesized protocol lines.
	ServerHostname string `yaml:"server_hostname"`

	// JoinChannels is the channel allow-list: substrings matched against
	// qualified channel names ("Server.Channel"). Empty means join everything.
	JoinChannels []string `yaml:"join_channels"`

	// IgnoreChannelBounds relays inbound channel messages even when the
	// allow-list would otherwise filter them out.
	IgnoreChannelBounds bool `yaml:"ignore_channel_bounds"`

	// HTTPPort is the loopback port for the read-only status API.
	// Zero disables the API entirely.
	HTTPPort int `yaml:"http_port"`

	// GatewayURL is the websocket endpoint of the platform gateway.
	GatewayURL string `yaml:"gateway_url"`

	// APIURL is the REST endpoint used for outbound message delivery.
	APIURL string `yaml:"api_url"`
}

// LoadConfig reads and parses the application configuration from the given YAML file.
// It provides default values for optional items and performs necessary validation.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// --- Defaults ---
	if cfg.Port == 0 {
		cfg.Port = 6667
	}
	if cfg.ServerHostname == "" {
		cfg.ServerHostname = "localghost"
	}

	// --- Validation ---
	if cfg.Token == "" {
		return nil, fmt.Errorf("token property not found in config file %s", path)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the valid range (1-65535)", cfg.Port)
	}

	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("http_port number %d is outside the valid range (0-65535)", cfg.HTTPPort)
	}

	if cfg.GatewayURL == "" {
		cfg.GatewayURL = "wss://gateway.discord.gg"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://discord.com/api"
	}

	return cfg, nil
}

// ListenAddr returns the host:port string the IRC listener binds to,
// loopback-only unless ListenAll is set.
func (c *AppConfig) ListenAddr() string {
	if c.ListenAll {
		return fmt.Sprintf(":%d", c.Port)
	}
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// HTTPAddr returns the loopback host:port string for the status API.
func (c *AppConfig) HTTPAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.HTTPPort)
}
