package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wgdzlh/jaccard/log"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose     bool
	development bool
)

var rootCmd = &cobra.Command{
	Use:   "jaccard",
	Short: "Jaccard score of polygon delineations with pixel uncertainty",
	Long: `Compares pairs of polygon delineations of the same feature, drawn by two
sources at the same date. Each side is clipped by its uncertainty zone
(a band of half a pixel around its boundary) before the Jaccard score
|A∩B| / |A∪B| is computed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		if err := log.Init(level, development); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "Human readable log output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPairCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
