package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Consume raw security events from Kafka into the log exports",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadFromEnv("ingest")

		log.Println("[INGEST] ingest starting...")
		log.Printf("  Kafka: %s", cfg.Kafka.Bootstrap)
		log.Printf("  Topics: %s, %s, %s", cfg.Kafka.LogonTopic, cfg.Kafka.HTTPTopic, cfg.Kafka.DeviceTopic)
		log.Printf("  Data dir: %s", cfg.Data.Dir)

		ingest.Start(cfg)
	},
}
