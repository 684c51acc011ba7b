package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/standup/internal/ports/primary"
)

// SurveyCmd returns the survey command
func SurveyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Manage surveys",
		Long:  `Create, list, close and review scheduled surveys.`,
	}

	cmd.AddCommand(surveyCreateCmd())
	cmd.AddCommand(surveyListCmd())
	cmd.AddCommand(surveyCloseCmd())
	cmd.AddCommand(surveyAnswersCmd())

	return cmd
}

func surveyCreateCmd() *cobra.Command {
	var (
		fireIn      time.Duration
		fireAt      string
		role        string
		acceptEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "create [question]",
		Short: "Schedule a new survey",
		Long: `Schedule a survey for delivery at its fire time.

The audience is everyone with a chat id, or one role via --role.
A fire time at or before now delivers on the scheduler's next pass.

Examples:
  standup survey create "What did you do today?" --in 1h --role worker
  standup survey create "Sprint retro thoughts?" --at 2026-09-01T17:00:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			fire := rt.Clock.Now()
			if fireAt != "" {
				parsed, err := time.Parse(time.RFC3339, fireAt)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				fire = parsed
			} else if fireIn > 0 {
				fire = fire.Add(fireIn)
			}

			resp, err := rt.Surveys.CreateSurvey(ctx, primary.CreateSurveyRequest{
				Question:     args[0],
				FireAt:       fire,
				AudienceRole: role,
				AcceptEmpty:  acceptEmpty,
			})
			if err != nil {
				return fmt.Errorf("failed to create survey: %w", err)
			}

			fmt.Printf("✓ Created survey #%d firing at %s (%s, %d recipients now)\n",
				resp.SurveyID, resp.Survey.FireAt, resp.Survey.Audience, resp.Audience)
			return nil
		},
	}

	cmd.Flags().DurationVar(&fireIn, "in", 0, "fire after this duration (default: now)")
	cmd.Flags().StringVar(&fireAt, "at", "", "fire at this RFC3339 instant (overrides --in)")
	cmd.Flags().StringVar(&role, "role", "", "restrict the audience to one role")
	cmd.Flags().BoolVar(&acceptEmpty, "accept-empty", false, "allow an audience that currently resolves to nobody")

	return cmd
}

func surveyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active surveys",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			surveys, err := rt.Surveys.ListActiveSurveys(ctx)
			if err != nil {
				return fmt.Errorf("failed to list surveys: %w", err)
			}

			if len(surveys) == 0 {
				fmt.Println("No active surveys.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFIRE AT\tAUDIENCE\tDELIVERED\tQUESTION")
			fmt.Fprintln(w, "--\t-------\t--------\t---------\t--------")
			for _, s := range surveys {
				delivered := "-"
				if s.DeliveredAt != "" {
					delivered = s.DeliveredAt
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.FireAt, s.Audience, delivered, s.Question)
			}
			w.Flush()
			return nil
		},
	}
}

func surveyCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close [survey-id]",
		Short: "Close a survey",
		Long: `Close a survey. No further reminders are sent; closed is terminal.

Examples:
  standup survey close 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			surveyID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid survey id: %w", err)
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Surveys.CloseSurvey(ctx, surveyID); err != nil {
				return err
			}
			fmt.Printf("✓ Survey #%d closed\n", surveyID)
			return nil
		},
	}
}

func surveyAnswersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answers [survey-id]",
		Short: "Show the answer digest for a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			surveyID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid survey id: %w", err)
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			digest, err := rt.Surveys.SurveyDigest(ctx, surveyID)
			if err != nil {
				return err
			}

			fmt.Printf("Survey #%d: %s\n", digest.Survey.ID, digest.Survey.Question)
			fmt.Printf("State: %s  Fired: %s  Sends: %d\n", digest.Survey.State, digest.Survey.DeliveredAt, digest.SendCount)
			fmt.Printf("%s  %s\n\n",
				color.GreenString("%d answered", digest.Answered),
				color.YellowString("%d pending", digest.Pending))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tDELIVERED\tREMINDERS\tANSWERED\tANSWER")
			fmt.Fprintln(w, "----\t---------\t---------\t--------\t------")
			for _, row := range digest.Rows {
				delivered := "no"
				if row.Delivered {
					delivered = "yes"
				}
				answered := "-"
				answer := "-"
				if row.Answer != "" {
					answered = row.AnsweredAt
					answer = firstLine(row.Answer)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", row.DisplayName, delivered, row.RemindersSent, answered, answer)
			}
			w.Flush()
			return nil
		},
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
	}
	return s
}
