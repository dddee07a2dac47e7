package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state (editor temp files, reference service DB)"},
		{Key: "default_tags", Default: []string{}, Comment: "Tags applied when creating a note without explicit tags"},
		{Key: "output", Default: "plain", Comment: "Default output for list/show: plain|pretty|json|ndjson|tui"},
		{Key: "json_indent", Default: false, Comment: "Indent json output (also --indent)"},

		{Key: "remote.url", Default: "http://localhost:8080", Comment: "Base URL of the notes service"},
		{Key: "remote.token", Default: "", Comment: "Bearer token sent to the notes service (empty disables)"},
		{Key: "remote.timeout", Default: "20s", Comment: "Per-request timeout for the notes service"},

		{Key: "render.style", Default: "dracula", Comment: "glamour style for pretty output and the TUI note view"},
		{Key: "render.word_wrap", Default: 80, Comment: "Word wrap width for rendered markdown"},

		{Key: "editor.keep_tmp", Default: false, Comment: "Keep the editor temp file after note add/edit"},

		{Key: "log.level", Default: "warn", Comment: "Log level: trace|debug|info|warn|error"},
		{Key: "log.file", Default: "", Comment: "Write logs to this file instead of stderr"},

		{Key: "server.addr", Default: ":8080", Comment: "Listen address for `notecards serve`"},
		{Key: "server.db", Default: "", Comment: "Storage for `notecards serve`: mem:// or sqlite://path (default data_dir/notecards.db)"},
		{Key: "auth.token", Default: "", Comment: "Bearer token required by `notecards serve` (empty disables auth)"},
	}
}

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "notecards"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notecards"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// NOTECARDS_REMOTE_URL etc.
	v.SetEnvPrefix("notecards")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}

	// Allow comma-separated env override for default_tags
	if s := strings.TrimSpace(os.Getenv("NOTECARDS_DEFAULT_TAGS")); s != "" {
		v.Set("default_tags", splitTags(s))
	}
	return nil
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CheckConfigValidity reports every invalid setting at once.
func CheckConfigValidity(v *viper.Viper) error {
	var errs error
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = multierr.Append(errs, fmt.Errorf("data_dir is required"))
	}
	switch strings.ToLower(v.GetString("output")) {
	case "", "plain", "pretty", "json", "ndjson", "tui":
	default:
		errs = multierr.Append(errs, fmt.Errorf("output %q is not one of plain|pretty|json|ndjson|tui", v.GetString("output")))
	}
	if raw := strings.TrimSpace(v.GetString("remote.url")); raw == "" {
		errs = multierr.Append(errs, fmt.Errorf("remote.url is required"))
	} else if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
		errs = multierr.Append(errs, fmt.Errorf("remote.url %q is not a valid url", raw))
	}
	if d, err := time.ParseDuration(v.GetString("remote.timeout")); err != nil || d <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("remote.timeout must be a positive duration"))
	}
	if v.GetInt("render.word_wrap") < 0 {
		errs = multierr.Append(errs, fmt.Errorf("render.word_wrap must not be negative"))
	}
	switch strings.ToLower(v.GetString("log.level")) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log.level %q is unknown", v.GetString("log.level")))
	}
	if dsn := strings.TrimSpace(v.GetString("server.db")); dsn != "" &&
		!strings.HasPrefix(dsn, "mem://") && !strings.HasPrefix(dsn, "sqlite://") {
		errs = multierr.Append(errs, fmt.Errorf("server.db must start with mem:// or sqlite://"))
	}
	return errs
}

// RemoteTimeout parses remote.timeout, falling back to 20s.
func RemoteTimeout(v *viper.Viper) time.Duration {
	d, err := time.ParseDuration(v.GetString("remote.timeout"))
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/notecards or ~/.local/share/notecards
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "notecards")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "notecards")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "notecards", "config.toml")
}

// ResolveDataDir returns data_dir with a leading ~ expanded.
func ResolveDataDir(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return dir
}

// ResolveServerDB returns server.db, defaulting to a SQLite file in data_dir.
func ResolveServerDB(v *viper.Viper) string {
	if dsn := strings.TrimSpace(v.GetString("server.db")); dsn != "" {
		return dsn
	}
	return "sqlite://" + filepath.Join(ResolveDataDir(v), "notecards.db")
}
