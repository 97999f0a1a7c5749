package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/paperbox/paper"
)

var (
	publicPolicy string
	teamPolicy   string
)

var sharingCmd = &cobra.Command{
	Use:   "sharing",
	Short: "Inspect and change doc sharing policies",
}

var sharingGetCmd = &cobra.Command{
	Use:   "get <doc-id>...",
	Short: "Show the sharing policy of one or more docs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSharingGet,
}

var sharingSetCmd = &cobra.Command{
	Use:   "set <doc-id>",
	Short: "Change the public or team sharing policy of a doc",
	Args:  cobra.ExactArgs(1),
	RunE:  runSharingSet,
}

func init() {
	sharingSetCmd.Flags().StringVar(&publicPolicy, "public", "", "people_with_link_can_edit, people_with_link_can_view_and_comment or invite_only")
	sharingSetCmd.Flags().StringVar(&teamPolicy, "team", "", "people_with_link_can_edit, people_with_link_can_view_and_comment or invite_only")
	sharingSetCmd.MarkFlagsOneRequired("public", "team")

	sharingCmd.AddCommand(sharingGetCmd, sharingSetCmd)
}

func runSharingGet(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	var failed int
	for _, result := range client.SharingPolicies(cmd.Context(), args) {
		if result.Err != nil {
			p.Failure("%s: %v", result.DocID, result.Err)
			failed++
			continue
		}
		p.Item("%s", result.DocID)
		if result.Policy.PublicSharingPolicy != nil {
			p.Detail("Public", *result.Policy.PublicSharingPolicy)
		}
		if result.Policy.TeamSharingPolicy != nil {
			p.Detail("Team", *result.Policy.TeamSharingPolicy)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to fetch %d of %d sharing policies", failed, len(args))
	}
	return nil
}

func runSharingSet(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}

	var public *paper.PublicPolicy
	if publicPolicy != "" {
		v := paper.PublicPolicy(publicPolicy)
		public = &v
	}
	var team *paper.TeamPolicy
	if teamPolicy != "" {
		v := paper.TeamPolicy(teamPolicy)
		team = &v
	}

	if err := client.SetSharingPolicy(cmd.Context(), args[0], public, team); err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout()).Success("Updated sharing policy of %s", args[0])
	return nil
}
