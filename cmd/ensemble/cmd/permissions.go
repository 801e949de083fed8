package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ensembleops/ensemble/internal/db/bunx"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/services/iam"
)

var resolveGroups []string

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Debug group to permission resolution",
}

var permissionsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the permissions a set of directory groups resolves to",
	Long: `Runs the same resolution performed at sign-in for the given groups and
prints one line per team. An empty result means the groups grant nothing.`,
	Example: `  ensemble permissions resolve --group payments-devs --group sre-admins`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		resolver := iam.NewResolver(repository.NewBunTeamRepository(db), logger)
		perms, err := resolver.ResolvePermissions(cmd.Context(), resolveGroups)
		if err != nil {
			return err
		}

		if len(perms) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No permissions")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TEAM\tTEAM ID\tROLE")
		for _, p := range perms {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.TeamName, p.TeamID, p.Role)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(permissionsCmd)
	permissionsCmd.AddCommand(permissionsResolveCmd)
	permissionsResolveCmd.Flags().StringSliceVar(&resolveGroups, "group", nil, "Directory group (repeatable)")
}
