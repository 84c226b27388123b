package config

import "flag"

// Flags holds CLI overrides. Zero values leave the config untouched.
type Flags struct {
	Config          string
	Debug           bool
	Encoding        string
	StrictMaterials bool
	LogFile         string
}

// RegisterFlags binds the shared objtool flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Encoding, "encoding", "", "Name encoding of the model files (utf-8, euc-kr, shift-jis, latin1)")
	fs.BoolVar(&f.StrictMaterials, "strict-materials", false, "Fail when a referenced material is not defined")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Encoding != "" {
		cfg.Model.Encoding = f.Encoding
	}
	if f.StrictMaterials {
		cfg.Model.RegisterMissingMaterials = false
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
