// mqctl submits jobs to a running mailqueue gateway.
//
// Usage:
//
//	go run ./cmd/mqctl enqueue --email hiring@example.com --subject "Backend Engineer"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mailqueue "github.com/gsarma/mailqueue/sdk"
)

var rootCmd = &cobra.Command{
	Use:   "mqctl",
	Short: "mqctl is the command-line client for the mailqueue gateway.",
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue one email job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("TIMEOUT"))
		defer cancel()

		client := mailqueue.New(viper.GetString("SERVER"))
		resp, err := client.Jobs.Enqueue(ctx, mailqueue.EnqueueRequest{
			Email:   viper.GetString("EMAIL"),
			Subject: viper.GetString("SUBJECT"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (request %s)\n", resp.Message, resp.RequestID)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway and queue store health",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("TIMEOUT"))
		defer cancel()

		resp, err := mailqueue.New(viper.GetString("SERVER")).Health(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:3000", "gateway base URL")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "request timeout")
	enqueueCmd.Flags().StringP("email", "e", "", "recipient address")
	enqueueCmd.Flags().String("subject", "", "job subject")

	bind := map[string]*cobra.Command{
		"server": rootCmd, "timeout": rootCmd, "email": enqueueCmd, "subject": enqueueCmd,
	}
	for name, cmd := range bind {
		flag := cmd.PersistentFlags().Lookup(name)
		if flag == nil {
			flag = cmd.Flags().Lookup(name)
		}
		if err := viper.BindPFlag(strings.ToUpper(name), flag); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(enqueueCmd, healthCmd)
}

// initConfig lets MQCTL_* environment variables stand in for flags.
func initConfig() {
	viper.SetEnvPrefix("MQCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
