package main

import (
	"os"

	"github.com/dkeye/Collab/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	config.SetupLogger("info")
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("collab")
		os.Exit(1)
	}
}
