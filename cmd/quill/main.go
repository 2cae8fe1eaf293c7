package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/app"
	"github.com/MrSnakeDoc/quill/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Article content store with a JSON API",
	Long: `Quill keeps a collection of articles in a durable cache, reconciles it with a
remote source, and serves it over HTTP. Configuration is read from QUILL_* environment variables.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the collection and serve the HTTP API (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}
	return a.Run()
}

// withApp builds the app, loads the collection and runs fn. Used by the
// one-shot commands.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ quill: %v\n", err)
		os.Exit(1)
	}
}
