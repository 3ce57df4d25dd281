package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/filemart-io/filemart/internal/interfaces/cli/migrate"
	"github.com/filemart-io/filemart/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "filemart",
		Short: "FileMart download entitlement engine",
		Long:  `FileMart serves download entitlement decisions, trusted device management, and token redemption for the digital-download marketplace.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
