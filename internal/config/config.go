package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Player  PlayerConfig  `mapstructure:"player"`
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the remote catalogue endpoints
type APIConfig struct {
	SearchURL string `mapstructure:"search_url"` // Query words are appended, joined by %20
	TrackURL  string `mapstructure:"track_url"`  // "id=..&quality=.." is appended
	UserAgent string `mapstructure:"user_agent"`
}

// PlayerConfig holds mpv session configuration
type PlayerConfig struct {
	Command           string        `mapstructure:"command"`
	Args              []string      `mapstructure:"args"`
	Socket            string        `mapstructure:"socket"`          // JSON IPC socket path
	Spawn             bool          `mapstructure:"spawn"`           // false attaches to a running mpv
	StartupTimeout    time.Duration `mapstructure:"startup_timeout"` // wait for the IPC socket
	CommandTimeout    time.Duration `mapstructure:"command_timeout"` // wait for each IPC reply
	PlaylistFile      string        `mapstructure:"playlist_file"`   // hand-off path for MPD manifests
	LogFile           string        `mapstructure:"log_file"`
	MsgLevel          string        `mapstructure:"msg_level"`
	ProtocolWhitelist []string      `mapstructure:"protocol_whitelist"`
}

// SearchConfig holds search result handling
type SearchConfig struct {
	Limit  int  `mapstructure:"limit"`
	Rerank bool `mapstructure:"rerank"` // fuzzy re-order of server results
}

// UIConfig holds UI configuration
type UIConfig struct {
	Picker bool `mapstructure:"picker"` // interactive picker when stdin is a terminal
}

// HistoryConfig holds play history configuration
type HistoryConfig struct {
	File string `mapstructure:"file"`
	Max  int    `mapstructure:"max"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			SearchURL: "https://maus.qqdl.site/search/?s=",
			TrackURL:  "https://tidal.kinoplus.online/track/?",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:145.0) Gecko/20100101 Firefox/145.0",
		},
		Player: PlayerConfig{
			Command:           "mpv",
			Args:              []string{"--no-video"},
			Socket:            filepath.Join(os.TempDir(), "hifi-mpv.sock"),
			Spawn:             true,
			StartupTimeout:    5 * time.Second,
			CommandTimeout:    10 * time.Second,
			PlaylistFile:      filepath.Join(os.TempDir(), "mpv_queue.mpd"),
			LogFile:           filepath.Join(os.TempDir(), "mpv_playback.log"),
			MsgLevel:          "all=info",
			ProtocolWhitelist: []string{"file", "https", "http", "tls", "tcp", "crypto", "data"},
		},
		Search: SearchConfig{
			Limit: 5,
		},
		UI: UIConfig{
			Picker: true,
		},
		History: HistoryConfig{
			File: defaultHistoryPath(),
			Max:  200,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the per-user data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "hifi")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "hifi")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultDataPath(), "hifi.log")
}

// defaultHistoryPath returns the default history database path
func defaultHistoryPath() string {
	return filepath.Join(defaultDataPath(), "history.db")
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "hifi")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "hifi")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath(), ".")
}

// load reads config.yaml from the first matching path into a defaulted Config
func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. HIFI_PLAYER_COMMAND
	v.SetEnvPrefix("HIFI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.search_url", cfg.API.SearchURL)
	v.SetDefault("api.track_url", cfg.API.TrackURL)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)

	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("player.socket", cfg.Player.Socket)
	v.SetDefault("player.spawn", cfg.Player.Spawn)
	v.SetDefault("player.startup_timeout", cfg.Player.StartupTimeout)
	v.SetDefault("player.command_timeout", cfg.Player.CommandTimeout)
	v.SetDefault("player.playlist_file", cfg.Player.PlaylistFile)
	v.SetDefault("player.log_file", cfg.Player.LogFile)
	v.SetDefault("player.msg_level", cfg.Player.MsgLevel)
	v.SetDefault("player.protocol_whitelist", cfg.Player.ProtocolWhitelist)

	v.SetDefault("search.limit", cfg.Search.Limit)
	v.SetDefault("search.rerank", cfg.Search.Rerank)

	v.SetDefault("ui.picker", cfg.UI.Picker)

	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.max", cfg.History.Max)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate checks values that would make the program unusable
func (c *Config) Validate() error {
	if c.API.SearchURL == "" || c.API.TrackURL == "" {
		return fmt.Errorf("api.search_url and api.track_url are required")
	}
	if c.Player.Socket == "" {
		return fmt.Errorf("player.socket is required")
	}
	if c.Player.Spawn && c.Player.Command == "" {
		return fmt.Errorf("player.command is required when player.spawn is set")
	}
	if c.Player.PlaylistFile == "" {
		return fmt.Errorf("player.playlist_file is required")
	}
	if c.Player.CommandTimeout <= 0 {
		return fmt.Errorf("player.command_timeout must be positive, got %v", c.Player.CommandTimeout)
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	return nil
}

// expandPaths resolves a leading ~ in every local file path
func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Player.Socket,
		&c.Player.PlaylistFile,
		&c.Player.LogFile,
		&c.History.File,
		&c.Logging.File,
	} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// ProtocolWhitelistOption formats the whitelist as an mpv demuxer-lavf-o value
func (p PlayerConfig) ProtocolWhitelistOption() string {
	return "protocol_whitelist=[" + strings.Join(p.ProtocolWhitelist, ",") + "]"
}
