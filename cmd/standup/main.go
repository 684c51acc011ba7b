package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/standup/internal/cli"
	"github.com/example/standup/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "standup",
		Short:   "standup - chat-mediated team reporting",
		Version: version.String(),
		Long: `standup schedules free-text surveys to a team over a chat transport,
nags non-responders on an escalating ladder, and records every answer.
A secondary facility mirrors the external issue tracker on demand.`,
	}

	cli.RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SurveyCmd())
	rootCmd.AddCommand(cli.AnswerCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.TrackerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
