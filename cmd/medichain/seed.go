package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"medichain/internal/store"
)

// seedCmd loads the demo accounts and sample report without starting
// the server. Safe to run repeatedly; seeding is recorded in the store
// and skipped once done.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo accounts and a sample report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := store.SeedDemoData(cmd.Context(), st); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}

		count, err := st.CountUsers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Store ready: %d users\n", count)
		return nil
	},
}
