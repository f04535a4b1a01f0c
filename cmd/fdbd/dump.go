package main

import (
	"fmt"
	"slices"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/vswitch-platform/vswitch/modules/fdb"
	"github.com/vswitch-platform/vswitch/modules/fdb/persist"
)

var dumpMACPattern string

// dumpCmd prints the records of a persisted snapshot, oldest first, so an
// operator can inspect the learned table without attaching to the daemon.
var dumpCmd = &cobra.Command{
	Use:   "dump <snapshot-path>",
	Short: "Print FDB records from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(rawCmd *cobra.Command, args []string) error {
		pattern, err := glob.Compile(dumpMACPattern)
		if err != nil {
			return fmt.Errorf("failed to compile MAC pattern %q: %w", dumpMACPattern, err)
		}

		store := persist.NewStore(args[0], 0)
		records, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}

		slices.SortFunc(records, fdb.Record.Compare)
		for _, rec := range records {
			if pattern.Match(rec.MAC().String()) {
				fmt.Println(rec.Serialize())
			}
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&dumpMACPattern, "mac", "*", "Glob pattern filtering records by MAC address")
}
