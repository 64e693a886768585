package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/detector"
	"github.com/markany/safepc-insider/internal/feature"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the anomaly model on the feature table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadFromEnv("train")

		log.Println("[TRAIN] model training starting...")
		log.Printf("  Features: %s", cfg.Data.FeaturesPath)
		log.Printf("  Model: %s", cfg.Data.ModelPath)
		log.Printf("  Trees: %d, sample: %d, contamination: %.2f, seed: %d",
			cfg.Train.Trees, cfg.Train.SampleSize, cfg.Train.Contamination, cfg.Train.Seed)

		tbl, err := feature.LoadFile(cfg.Data.FeaturesPath)
		if err != nil {
			return err
		}

		forest, err := detector.Train(tbl,
			detector.WithTrees(cfg.Train.Trees),
			detector.WithSampleSize(cfg.Train.SampleSize),
			detector.WithContamination(cfg.Train.Contamination),
			detector.WithSeed(cfg.Train.Seed),
		)
		if err != nil {
			return err
		}

		if err := forest.SaveFile(cfg.Data.ModelPath); err != nil {
			return err
		}

		// sanity check on the training population
		scored, err := detector.Score(tbl, forest)
		if err != nil {
			return err
		}
		suspicious := 0
		for _, row := range scored {
			if row.Status == detector.StatusSuspicious {
				suspicious++
			}
		}
		log.Printf("[TRAIN] model saved -> %s (%d/%d users flagged)", cfg.Data.ModelPath, suspicious, tbl.Len())
		return nil
	},
}
