package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/common"
	"github.com/markany/safepc-insider/internal/feature"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Aggregate the raw log exports into the feature table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadFromEnv("features")

		log.Println("[FEATURE] feature engineering starting...")
		log.Printf("  Data dir: %s", cfg.Data.Dir)
		log.Printf("  Output: %s", cfg.Data.FeaturesPath)

		tbl, err := feature.Engineer(
			common.LogonPath(cfg.Data.Dir),
			common.HTTPPath(cfg.Data.Dir),
			common.DevicePath(cfg.Data.Dir),
		)
		if err != nil {
			return err
		}

		if err := tbl.SaveFile(cfg.Data.FeaturesPath); err != nil {
			return err
		}
		log.Printf("[FEATURE] %d users aggregated -> %s", tbl.Len(), cfg.Data.FeaturesPath)
		return nil
	},
}
