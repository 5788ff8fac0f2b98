package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Catalog: CatalogServerConfig{
			Type: "sqlite",
			SQLite: CatalogSQLiteConfig{
				Path:         "./nfosync.db",
				MaxOpenConns: 1,
				BusyTimeout:  "5s",
				LogLevel:     "silent",
			},
			Retry: CatalogRetryConfig{
				MaxRetries:     3,
				InitialBackoff: "50ms",
				MaxBackoff:     "500ms",
			},
		},

		Library: LibraryServerConfig{
			Roots:             []string{},
			Workers:           4,
			SidecarExtensions: []string{".nfo"},
			VideoExtensions:   []string{"mp4", "mkv", "ts", "avi", "mov", "m4v", "wmv", "webm", "m2ts"},
			SkipNames:         []string{"movie", "template", "sample", "example", "test", "default", "blank"},
			SkipHidden:        true,
			Incremental:       false,
		},

		Agent: AgentServerConfig{
			ScanOnStartup: true,
			Schedule:      "@every 1h",
			Listen:        ":9280",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("catalog.type", defaults.Catalog.Type)
	viper.SetDefault("catalog.sqlite.path", defaults.Catalog.SQLite.Path)
	viper.SetDefault("catalog.sqlite.max_open_conns", defaults.Catalog.SQLite.MaxOpenConns)
	viper.SetDefault("catalog.sqlite.busy_timeout", defaults.Catalog.SQLite.BusyTimeout)
	viper.SetDefault("catalog.sqlite.log_level", defaults.Catalog.SQLite.LogLevel)
	viper.SetDefault("catalog.retry.max_retries", defaults.Catalog.Retry.MaxRetries)
	viper.SetDefault("catalog.retry.initial_backoff", defaults.Catalog.Retry.InitialBackoff)
	viper.SetDefault("catalog.retry.max_backoff", defaults.Catalog.Retry.MaxBackoff)

	viper.SetDefault("library.roots", defaults.Library.Roots)
	viper.SetDefault("library.workers", defaults.Library.Workers)
	viper.SetDefault("library.sidecar_extensions", defaults.Library.SidecarExtensions)
	viper.SetDefault("library.video_extensions", defaults.Library.VideoExtensions)
	viper.SetDefault("library.skip_names", defaults.Library.SkipNames)
	viper.SetDefault("library.skip_hidden", defaults.Library.SkipHidden)
	viper.SetDefault("library.incremental", defaults.Library.Incremental)

	viper.SetDefault("agent.scan_on_startup", defaults.Agent.ScanOnStartup)
	viper.SetDefault("agent.schedule", defaults.Agent.Schedule)
	viper.SetDefault("agent.listen", defaults.Agent.Listen)
}
