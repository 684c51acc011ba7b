package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// TrackerCmd returns the tracker command
func TrackerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Mirror the external issue tracker",
	}

	cmd.AddCommand(trackerSyncCmd())
	cmd.AddCommand(trackerProjectsCmd())

	return cmd
}

func trackerSyncCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the tracker mirror from a snapshot",
		Long: `Fetch a tracker snapshot (projects, boards, sprints, tasks, users)
from a JSON file or http(s) URL and upsert it into the local mirror.
Re-running with the same snapshot is a no-op.

Examples:
  standup tracker sync --from ./snapshot.json
  standup tracker sync --from https://tracker.internal/export/standup.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Tracker.Sync(ctx, from)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Mirror refreshed from %s (%d rows)\n", result.Source, result.RowsWritten)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "snapshot file path or URL")
	cmd.MarkFlagRequired("from")

	return cmd
}

func trackerProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List mirrored projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			projects, err := rt.Tracker.ListProjects(ctx)
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				fmt.Println("Mirror is empty. Run: standup tracker sync --from <snapshot>")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tUPDATED")
			fmt.Fprintln(w, "---\t----\t-------")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Name, p.UpdatedAt)
			}
			w.Flush()
			return nil
		},
	}
}
