package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/standup/internal/adapters/transport"
	"github.com/example/standup/internal/config"
	"github.com/example/standup/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the survey orchestrator",
		Long: `Run the orchestrator loops: survey delivery, reminder ticks and
answer ingestion. Outstanding surveys are reconciled from the store on
start, so a restart resumes exactly where the previous run stopped.

With the console transport, outbound messages print to stdout and
replies are read from stdin as: chat_id|survey_id|text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}

			console := transport.NewConsole(os.Stdin, os.Stdout)
			rt, err := wire.New(wire.Options{
				Config:    cfg,
				Transport: console,
				Inbound:   console,
				Log:       newLogger(),
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("%s tick=%s schedule=%v db=%s\n",
				color.GreenString("standup orchestrator running"),
				cfg.TickInterval.Std(), cfg.Schedule(), cfg.DBPath)

			return rt.Scheduler.Run(ctx)
		},
	}
}
