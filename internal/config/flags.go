package config

import "github.com/spf13/pflag"

// Overrides are command-line settings that win over the config file.
type Overrides struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	FPS        int
	Background string
	Radius     float64
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{}
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "path to config file")
	fs.BoolVar(&o.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&o.LogFile, "log-file", "", "log file path")
	fs.IntVar(&o.FPS, "fps", 0, "target frames per second")
	fs.StringVar(&o.Background, "bg", "", "background color (hex or ANSI)")
	fs.Float64Var(&o.Radius, "radius", 0, "initial camera distance")
	return o
}

func (o *Overrides) configPath() string {
	if o == nil {
		return ""
	}
	return o.ConfigPath
}

// apply copies the set overrides into cfg.
func (o *Overrides) apply(cfg *Config) {
	if o == nil {
		return
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.FPS > 0 {
		cfg.Viewer.FPS = o.FPS
	}
	if o.Background != "" {
		cfg.Viewer.Background = o.Background
	}
	if o.Radius > 0 {
		cfg.Camera.Radius = o.Radius
	}
}
