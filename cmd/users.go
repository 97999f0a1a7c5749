package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/paperbox/filter"
	"github.com/s0up4200/paperbox/paper"
)

var (
	usersFilter     string
	usersVisited    bool
	usersFolder     bool
	addEmails       []string
	addAccountIDs   []string
	addPermission   string
	addMessage      string
	addQuiet        bool
	removeAccountID bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage who can access a doc",
}

var usersListCmd = &cobra.Command{
	Use:   "list <doc-id>",
	Short: "List the owner, members and invitees of a doc",
	Long: `List everyone with access to a doc. --filter takes a filter name from the
config file or an expression, for example:

  paperbox users list <doc-id> --filter 'not SameTeam and canEdit()'

Fields: AccountID, Email, DisplayName, SameTeam, Permission, Invitee, Owner.
Helpers: hasPermission, canEdit, emailDomain, contains, startsWith, endsWith,
lower, upper.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <doc-id>",
	Short: "Share a doc with people by email or account ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove <doc-id> <email|account-id>",
	Short: "Remove someone from a doc",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersRemove,
}

func init() {
	usersListCmd.Flags().StringVarP(&usersFilter, "filter", "f", "", "filter name or expression")
	usersListCmd.Flags().BoolVar(&usersVisited, "visited", false, "only people who opened the doc")
	usersListCmd.Flags().BoolVar(&usersFolder, "folder", false, "list the members of the containing folder instead")

	usersAddCmd.Flags().StringSliceVarP(&addEmails, "email", "e", nil, "email address to add (repeatable)")
	usersAddCmd.Flags().StringSliceVar(&addAccountIDs, "account-id", nil, "Dropbox account ID to add (repeatable)")
	usersAddCmd.Flags().StringVarP(&addPermission, "permission", "p", string(paper.PermissionEdit), "edit or view_and_comment")
	usersAddCmd.Flags().StringVarP(&addMessage, "message", "m", "", "message included in the invitation")
	usersAddCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "do not notify the added people")

	usersRemoveCmd.Flags().BoolVar(&removeAccountID, "account-id", false, "treat the second argument as an account ID")

	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersRemoveCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())

	if usersFolder {
		listing, err := client.ListFolderUsersAll(ctx, args[0], cfg.Paper.PageSize)
		if err != nil {
			return err
		}
		p.Header("Folder members (%d):", len(listing.Users)+len(listing.Invitees))
		for _, u := range listing.Users {
			p.Item("%s <%s>", u.DisplayName, u.Email)
		}
		for _, i := range listing.Invitees {
			p.Item("%s (invited)", i.Email)
		}
		return nil
	}

	userFilter := paper.UsersShared
	if usersVisited {
		userFilter = paper.UsersVisited
	}
	listing, err := client.ListUsersAll(ctx, args[0], cfg.Paper.PageSize, userFilter)
	if err != nil {
		return err
	}
	collaborators := listing.Collaborators()

	if usersFilter != "" {
		manager := filter.NewManager()
		if err := manager.RegisterFilters(cfg.Filter); err != nil {
			return err
		}
		f, err := manager.Resolve(usersFilter)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		logger.Debug().Str("filter", f.Expression()).Msg("Filtering collaborators")
		if collaborators, err = filter.Apply(ctx, f, collaborators); err != nil {
			return err
		}
	}

	if len(collaborators) == 0 {
		p.Line("No collaborators found.")
		return nil
	}
	p.Header("Found %d collaborators:", len(collaborators))
	for _, c := range collaborators {
		printCollaborator(p, c)
	}
	return nil
}

func printCollaborator(p *printer, c paper.Collaborator) {
	var tags []string
	switch {
	case c.Owner:
		tags = append(tags, "owner")
	case c.Invitee:
		tags = append(tags, "invited")
	}
	if c.SameTeam {
		tags = append(tags, "team")
	}
	tags = append(tags, strings.ReplaceAll(string(c.Permission), "_", " "))

	name := c.Email
	if c.DisplayName != "" {
		name = fmt.Sprintf("%s <%s>", c.DisplayName, c.Email)
	}
	p.Item("%s [%s]", name, strings.Join(tags, ", "))
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	if len(addEmails)+len(addAccountIDs) == 0 {
		return fmt.Errorf("at least one --email or --account-id is required")
	}
	client, err := newPaperClient()
	if err != nil {
		return err
	}

	level := paper.PermissionLevel(addPermission)
	req := client.UsersAdd(args[0]).CustomMessage(addMessage).Quiet(addQuiet)
	for _, email := range addEmails {
		req.AddMember(paper.Email(email), level)
	}
	for _, id := range addAccountIDs {
		req.AddMember(paper.DropboxID(id), level)
	}

	results, err := req.Send(cmd.Context())
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	var failed int
	for _, r := range results {
		if r.Result == paper.AddUserSuccess {
			p.Success("%s", r.Member)
			continue
		}
		p.Failure("%s: %s", r.Member, r.Result)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("failed to add %d of %d members", failed, len(results))
	}
	return nil
}

func runUsersRemove(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}

	member := paper.Email(args[1])
	if removeAccountID {
		member = paper.DropboxID(args[1])
	}
	if err := client.RemoveUser(cmd.Context(), args[0], member); err != nil {
		return err
	}
	newPrinter(cmd.OutOrStdout()).Success("Removed %s from %s", member, args[0])
	return nil
}
