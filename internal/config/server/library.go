package server

type LibraryServerConfig struct {
	Roots             []string `mapstructure:"roots"              yaml:"roots"`
	Workers           int      `mapstructure:"workers"            yaml:"workers"`
	SidecarExtensions []string `mapstructure:"sidecar_extensions" yaml:"sidecar_extensions"`
	VideoExtensions   []string `mapstructure:"video_extensions"   yaml:"video_extensions"`
	SkipNames         []string `mapstructure:"skip_names"         yaml:"skip_names"`
	SkipHidden        bool     `mapstructure:"skip_hidden"        yaml:"skip_hidden"`
	Incremental       bool     `mapstructure:"incremental"        yaml:"incremental"`
}

type AgentServerConfig struct {
	ScanOnStartup bool   `mapstructure:"scan_on_startup" yaml:"scan_on_startup"`
	Schedule      string `mapstructure:"schedule"        yaml:"schedule"`
	Listen        string `mapstructure:"listen"          yaml:"listen"`
}
