package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"sentinela-mg/config"
	"sentinela-mg/core/appbootstrap"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to a YAML config file")
	flag.Parse()

	logger := newLogger("")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}
	logger = newLogger(cfg.LogLevel)

	if err := appbootstrap.Run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
