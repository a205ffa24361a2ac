package main

import (
	"context"
	"fmt"
	golog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartdatalake/osmwrangle"
	"github.com/smartdatalake/osmwrangle/log"
)

var rootCmd = &cobra.Command{
	Use:           "osmwrangle",
	Short:         "Transform OpenStreetMap data to RDF",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), osmwrangle.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// setupLogging applies the quiet option before a command runs.
func setupLogging(quiet bool) {
	if quiet {
		log.SetMinLevel(log.LWarn)
	}
}

func main() {
	golog.SetFlags(golog.LstdFlags | golog.Lshortfile)
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Println("[fatal]", err)
		os.Exit(1)
	}
}
