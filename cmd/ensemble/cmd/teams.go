package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ensembleops/ensemble/internal/db/bunx"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

var (
	teamUserGroup  string
	teamAdminGroup string
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Inspect and seed teams",
	Long:  `Commands for registering teams and their directory groups without going through the API.`,
}

var teamsCreateCmd = &cobra.Command{
	Use:   "create <team-name>",
	Short: "Register a team",
	Long: `Registers a team with the directory groups whose members become
MEMBER (--user-group) or ADMIN (--admin-group) at their next sign-in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		team := &models.Team{
			TeamName:   args[0],
			UserGroup:  teamUserGroup,
			AdminGroup: teamAdminGroup,
			CreatedBy:  "cli",
		}
		if err := repository.NewBunTeamRepository(db).Create(cmd.Context(), team); err != nil {
			return fmt.Errorf("create team %q: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created team '%s' (%s)\n", team.TeamName, team.ID)
		return nil
	},
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every team",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		teams, err := repository.NewBunTeamRepository(db).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tUSER GROUP\tADMIN GROUP")
		for _, t := range teams {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.TeamName, t.UserGroup, t.AdminGroup)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(teamsCmd)
	teamsCmd.AddCommand(teamsCreateCmd)
	teamsCmd.AddCommand(teamsListCmd)

	teamsCreateCmd.Flags().StringVar(&teamUserGroup, "user-group", "", "Directory group granting MEMBER")
	teamsCreateCmd.Flags().StringVar(&teamAdminGroup, "admin-group", "", "Directory group granting ADMIN")
	_ = teamsCreateCmd.MarkFlagRequired("user-group")
	_ = teamsCreateCmd.MarkFlagRequired("admin-group")
}
