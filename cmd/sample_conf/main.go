package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/LeoCommon/nmea-emitter/internal/config"
	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"go.uber.org/zap"
)

// Writes a sample config with every default spelled out, including the disabled pps section
func main() {
	out := flag.String("out", "./config/"+config.ConfigFile, "where the sample config is written to")
	flag.Parse()

	log.Init(true)
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatal("could not create config directory", zap.Error(err))
	}

	if err := config.Default().Save(*out); err != nil {
		log.Fatal("could not write sample config", zap.String("path", *out), zap.Error(err))
	}

	log.Info("sample config written", zap.String("path", *out))
}
