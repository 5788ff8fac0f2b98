package server

// CatalogServerConfig holds catalog store configuration
type CatalogServerConfig struct {
	Type   string              `mapstructure:"type"   yaml:"type"`
	SQLite CatalogSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	Retry  CatalogRetryConfig  `mapstructure:"retry"  yaml:"retry"`
}

// CatalogSQLiteConfig holds SQLite-specific configuration
type CatalogSQLiteConfig struct {
	Path         string `mapstructure:"path"           yaml:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	BusyTimeout  string `mapstructure:"busy_timeout"   yaml:"busy_timeout"`
	LogLevel     string `mapstructure:"log_level"      yaml:"log_level"`
}

// CatalogRetryConfig controls how often a conflicting catalog transaction is retried
type CatalogRetryConfig struct {
	MaxRetries     int    `mapstructure:"max_retries"     yaml:"max_retries"`
	InitialBackoff string `mapstructure:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     string `mapstructure:"max_backoff"     yaml:"max_backoff"`
}
