package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const serviceName = "kodbot"

//nolint:gochecknoglobals // Set with -ldflags at build time.
var version = "dev"

var errNotDelivered = errors.New("post is not delivered")

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var skipStartupTest bool

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Scheduled programming-tips poster for a Telegram channel",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return a.run(cmd.Context(), skipStartupTest)
		},
	}

	rootCmd.Flags().BoolVar(&skipStartupTest, "skip-startup-test", false,
		"do not send a test post before scheduling")

	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newRandomCmd())
	rootCmd.AddCommand(newMessageCmd())

	return rootCmd
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send one generated post with a diagnostic banner and the schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return oneShot(cmd, "Test post", func(ctx context.Context, a *app) bool {
				return a.publisher.PublishTest(ctx)
			})
		},
	}
}

func newRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Send one generated post for the current time of day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return oneShot(cmd, "Random post", func(ctx context.Context, a *app) bool {
				return a.publisher.PublishRandom(ctx)
			})
		},
	}
}

func newMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <text...>",
		Short: "Send literal text without generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			return oneShot(cmd, "Message", func(ctx context.Context, a *app) bool {
				return a.publisher.PublishMessage(ctx, text)
			})
		},
	}
}

func oneShot(cmd *cobra.Command, what string, publish func(context.Context, *app) bool) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !publish(ctx, a) {
		return fmt.Errorf("%s: %w", what, errNotDelivered)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is sent to %s\n", what, a.bot.Target())

	return nil
}
