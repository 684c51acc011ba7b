package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/standup/internal/ports/primary"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the user directory",
	}

	cmd.AddCommand(userAddCmd())
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userSetRoleCmd())

	return cmd
}

func userAddCmd() *cobra.Command {
	var (
		chatID   string
		role     string
		external string
	)

	cmd := &cobra.Command{
		Use:   "add [display-name]",
		Short: "Register a user",
		Long: `Register a user in the directory. Users without a chat id are
never part of any audience.

Examples:
  standup user add "Dana K" --chat T42 --role worker
  standup user add "Sam L" --chat T43 --role lead --external sam.l`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := rt.Directory.AddUser(ctx, primary.AddUserRequest{
				ChatID:           chatID,
				DisplayName:      args[0],
				Role:             role,
				ExternalIdentity: external,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Added user #%d (%s, %s)\n", user.ID, user.DisplayName, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "chat id on the transport")
	cmd.Flags().StringVar(&role, "role", "", "role tag (default worker)")
	cmd.Flags().StringVar(&external, "external", "", "external tracker login")

	return cmd
}

func userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			users, err := rt.Directory.ListUsers(ctx)
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Println("No users registered.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE\tCHAT\tTRACKER")
			fmt.Fprintln(w, "--\t----\t----\t----\t-------")
			for _, u := range users {
				chat := u.ChatID
				if chat == "" {
					chat = "-"
				}
				external := u.ExternalIdentity
				if external == "" {
					external = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.DisplayName, u.Role, chat, external)
			}
			w.Flush()
			return nil
		},
	}
}

func userSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role [user-id] [role]",
		Short: "Change a user's role",
		Long: `Change a user's role tag. Audiences of already-delivered surveys
are frozen and unaffected.`,
		Args: cobra.ExactArgs(2),
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

			if err := rt.Directory.SetRole(ctx, userID, args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ User #%d is now %s\n", userID, args[1])
			return nil
		},
	}
}
