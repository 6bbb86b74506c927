package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cabinet-platform/kernel/pkg/primitives"
)

var (
	hashIDSeed   string
	hashIDPrefix string
)

var hashIDCmd = &cobra.Command{
	Use:   "hash-id",
	Short: "Mint deterministic or random platform IDs",
	Long: `Mint a platform ID in UUID shape.

Without --seed the ID is a random v4 UUID. With --seed the ID is derived
from SHA-256 of the seed, so the same seed always yields the same ID.
--prefix prepends an entity prefix such as "listing-".

Examples:
  cabinet-kernel hash-id
  cabinet-kernel hash-id --prefix listing- --seed CAR-2026-001`,
	Run: func(cmd *cobra.Command, args []string) {
		var id string
		switch {
		case hashIDSeed != "" && hashIDPrefix != "":
			id = primitives.ContentBasedID(hashIDPrefix, hashIDSeed)
		case hashIDSeed != "":
			id = primitives.DeterministicID(hashIDSeed)
		case hashIDPrefix != "":
			id = primitives.RandomID(hashIDPrefix)
		default:
			id = primitives.NewUUID()
		}
		fmt.Println(id)
	},
}

func init() {
	hashIDCmd.Flags().StringVar(&hashIDSeed, "seed", "", "derive the ID deterministically from this seed")
	hashIDCmd.Flags().StringVar(&hashIDPrefix, "prefix", "", "entity prefix, e.g. listing-")
	rootCmd.AddCommand(hashIDCmd)
}
