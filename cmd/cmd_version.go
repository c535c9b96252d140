package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show staking-indexer version",
		RunE:  versionHandler,
	}
}

func versionHandler(cmd *cobra.Command, args []string) error {
	fmt.Println("staking-indexer " + Version)
	return nil
}
