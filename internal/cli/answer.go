package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// AnswerCmd returns the answer command
func AnswerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Review and amend recorded answers",
	}

	cmd.AddCommand(answerListCmd())
	cmd.AddCommand(answerAppendCmd())

	return cmd
}

func answerListCmd() *cobra.Command {
	var sinceDays int

	cmd := &cobra.Command{
		Use:   "list [user-id]",
		Short: "List a user's answered surveys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			since := rt.Clock.Now().Add(-time.Duration(sinceDays) * 24 * time.Hour)
			answered, err := rt.Responses.ListMyAnswered(ctx, userID, since)
			if err != nil {
				return err
			}

			if len(answered) == 0 {
				fmt.Println("No answers in the window.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SURVEY\tANSWERED\tQUESTION")
			fmt.Fprintln(w, "------\t--------\t--------")
			for _, a := range answered {
				fmt.Fprintf(w, "%d\t%s\t%s\n", a.SurveyID, a.AnsweredAt, a.Question)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&sinceDays, "days", 7, "look back this many days")

	return cmd
}

func answerAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append [survey-id] [user-id] [text]",
		Short: "Append to a recorded answer",
		Long: `Append text to a user's recorded answer. Edits never replace:
the original answer is preserved and the appended text follows a
timestamped marker.

Examples:
  standup answer append 12 7 "Also reviewed three PRs"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			surveyID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid survey id: %w", err)
			}
			userID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			updated, err := rt.Responses.AppendAnswer(ctx, surveyID, userID, args[2])
			if err != nil {
				return err
			}

			fmt.Printf("✓ Answer for survey #%d updated at %s\n", updated.SurveyID, updated.UpdatedAt)
			return nil
		},
	}
}
