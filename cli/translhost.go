package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pageglot/translhost-go/pkg/translhost"
)

// version is set at build time via -ldflags
var version = "dev"

// fileConfig is the optional operational config read from a TOML file. It
// covers host-side concerns only; translation parameters always travel with
// each message.
type fileConfig struct {
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeConfig applies explicitly-set flags over the config file values.
func mergeConfig(cfg fileConfig, set map[string]bool, logFile, logLevel string) fileConfig {
	if set["log-file"] || cfg.LogFile == "" {
		cfg.LogFile = logFile
	}
	if set["log-level"] || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "", "Optional TOML config file with log_file and log_level")
	logFile := flag.String("log-file", "", "Log file path (append mode, created if missing)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("translhost %s\n", version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "translhost: %v\n", err)
		os.Exit(1)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cfg = mergeConfig(cfg, set, *logFile, *logLevel)

	level, ok := translhost.ParseLogLevel(cfg.LogLevel)
	logs := translhost.NewLogService(level)
	if !ok {
		logs.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}
	if cfg.LogFile != "" {
		// Pre-configures the sink; the in-band logFilePath bootstrap then
		// no-ops because configuration is once per process.
		logs.Configure(cfg.LogFile)
	}

	codec := translhost.NewCodec(os.Stdin, os.Stdout)
	host := translhost.NewHost(codec, logs, translhost.NewTranslator(logs))
	if err := host.Run(); err != nil {
		os.Exit(1)
	}
}
