package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	BackendWebApp = "webapp"
	BackendSheets = "sheets"

	DefaultPath = "forecastlog.toml"

	envPrefix = "FORECASTLOG"

	// Placeholders from the deployment instructions.
	placeholderURL   = "PASTE_WEB_APP_URL_HERE"
	placeholderToken = "CHANGE_ME"
)

type Config struct {
	Store    StoreConfig    `toml:"store" mapstructure:"store"`
	Timeouts TimeoutsConfig `toml:"timeouts" mapstructure:"timeouts"`
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
	View     ViewConfig     `toml:"view" mapstructure:"view"`
}

type StoreConfig struct {
	Backend         string `toml:"backend" mapstructure:"backend"`
	WebAppURL       string `toml:"webapp_url" mapstructure:"webapp_url"`
	Token           string `toml:"token" mapstructure:"token"`
	SpreadsheetID   string `toml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file" mapstructure:"credentials_file"`
	DashboardTab    string `toml:"dashboard_tab" mapstructure:"dashboard_tab"`
}

// TimeoutsConfig is in whole seconds.
type TimeoutsConfig struct {
	ListSeconds      int `toml:"list_seconds" mapstructure:"list_seconds"`
	AppendSeconds    int `toml:"append_seconds" mapstructure:"append_seconds"`
	PartitionSeconds int `toml:"partition_seconds" mapstructure:"partition_seconds"`
	DashboardSeconds int `toml:"dashboard_seconds" mapstructure:"dashboard_seconds"`
	RefreshSeconds   int `toml:"refresh_seconds" mapstructure:"refresh_seconds"`
}

type ServerConfig struct {
	ListenAddress string `toml:"listen_address" mapstructure:"listen_address"`
}

type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	JSON  bool   `toml:"json" mapstructure:"json"`
}

type ViewConfig struct {
	RecentRows int `toml:"recent_rows" mapstructure:"recent_rows"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:      BackendWebApp,
			DashboardTab: "Dashboard",
		},
		Timeouts: TimeoutsConfig{
			ListSeconds:      15,
			AppendSeconds:    15,
			PartitionSeconds: 20,
			DashboardSeconds: 30,
			RefreshSeconds:   40,
		},
		Server: ServerConfig{ListenAddress: ":8080"},
		Log:    LogConfig{Level: "info"},
		View:   ViewConfig{RecentRows: 10},
	}
}

// Load reads the TOML file at path, if it exists, then applies environment
// overrides. An empty path means DefaultPath. The result is validated.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("store.backend", def.Store.Backend)
	v.SetDefault("store.webapp_url", def.Store.WebAppURL)
	v.SetDefault("store.token", def.Store.Token)
	v.SetDefault("store.spreadsheet_id", def.Store.SpreadsheetID)
	v.SetDefault("store.credentials_file", def.Store.CredentialsFile)
	v.SetDefault("store.dashboard_tab", def.Store.DashboardTab)
	v.SetDefault("timeouts.list_seconds", def.Timeouts.ListSeconds)
	v.SetDefault("timeouts.append_seconds", def.Timeouts.AppendSeconds)
	v.SetDefault("timeouts.partition_seconds", def.Timeouts.PartitionSeconds)
	v.SetDefault("timeouts.dashboard_seconds", def.Timeouts.DashboardSeconds)
	v.SetDefault("timeouts.refresh_seconds", def.Timeouts.RefreshSeconds)
	v.SetDefault("server.listen_address", def.Server.ListenAddress)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	v.SetDefault("view.recent_rows", def.View.RecentRows)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by existing deployments.
	_ = v.BindEnv("store.webapp_url", "GS_WEBAPP_URL", envPrefix+"_STORE_WEBAPP_URL")
	_ = v.BindEnv("store.token", "GS_SHARED_TOKEN", envPrefix+"_STORE_TOKEN")
	_ = v.BindEnv("store.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS", envPrefix+"_STORE_CREDENTIALS_FILE")
	_ = v.BindEnv("store.spreadsheet_id", "SPREADSHEET_ID", envPrefix+"_STORE_SPREADSHEET_ID")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Store.WebAppURL = strings.TrimSpace(cfg.Store.WebAppURL)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendWebApp:
		if c.Store.WebAppURL == "" || c.Store.WebAppURL == placeholderURL {
			return errors.New("store.webapp_url (GS_WEBAPP_URL) is required")
		}
		if c.Store.Token == "" || c.Store.Token == placeholderToken {
			return errors.New("store.token (GS_SHARED_TOKEN) is required")
		}
	case BackendSheets:
		if c.Store.SpreadsheetID == "" {
			return errors.New("store.spreadsheet_id (SPREADSHEET_ID) is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.View.RecentRows < 0 {
		return fmt.Errorf("view.recent_rows must not be negative")
	}
	return nil
}

func (t TimeoutsConfig) List() time.Duration      { return seconds(t.ListSeconds) }
func (t TimeoutsConfig) Append() time.Duration    { return seconds(t.AppendSeconds) }
func (t TimeoutsConfig) Partition() time.Duration { return seconds(t.PartitionSeconds) }
func (t TimeoutsConfig) Dashboard() time.Duration { return seconds(t.DashboardSeconds) }
func (t TimeoutsConfig) Refresh() time.Duration   { return seconds(t.RefreshSeconds) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// WriteDefault writes a starter config file. It refuses to overwrite.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	cfg.Store.WebAppURL = placeholderURL
	cfg.Store.Token = placeholderToken
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
