package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/s0up4200/paperbox/auth"
	"github.com/s0up4200/paperbox/config"
)

var (
	implicitGrant bool
	noBrowser     bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain, migrate and revoke access tokens",
}

var authURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the authorization URL for the configured app",
	Args:  cobra.NoArgs,
	RunE:  runAuthURL,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize the app in a browser and print the access token",
	Long: `Opens the Dropbox authorization page, then asks for the URL the browser
was redirected to. The code in that URL is exchanged for an access token.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke the configured access token",
	Args:  cobra.NoArgs,
	RunE:  runAuthRevoke,
}

var authMigrateCmd = &cobra.Command{
	Use:   "migrate <oauth1-token> <oauth1-secret>",
	Short: "Exchange an OAuth1 token for an OAuth2 access token",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthMigrate,
}

func init() {
	authURLCmd.Flags().BoolVar(&implicitGrant, "implicit", false, "request a token in the redirect fragment instead of a code")
	authLoginCmd.Flags().BoolVar(&implicitGrant, "implicit", false, "request a token in the redirect fragment instead of a code")
	authLoginCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the URL instead of opening a browser")

	authCmd.AddCommand(authURLCmd, authLoginCmd, authRevokeCmd, authMigrateCmd)
}

func responseType() auth.ResponseType {
	if implicitGrant {
		return auth.ResponseTypeToken
	}
	return auth.ResponseTypeCode
}

func newAuthOperations() (*auth.Operations, error) {
	key, secret, err := cfg.RequireApp()
	if err != nil {
		return nil, err
	}
	ops := auth.NewOperations(key, secret, cfg.Dropbox.RedirectURI)
	ops.APIBaseURL = cfg.Dropbox.BaseURL
	ops.Logger = logger
	return ops, nil
}

func runAuthURL(cmd *cobra.Command, args []string) error {
	key, _, err := cfg.RequireApp()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), auth.BuildAuthorizationURI(key, cfg.Dropbox.RedirectURI, responseType()))
	return nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	ops, err := newAuthOperations()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	flow := auth.NewFlow(ops, responseType())
	authURL, err := flow.AuthorizationURL()
	if err != nil {
		return err
	}

	if noBrowser {
		p.Line("Open this URL to authorize paperbox:\n\n  %s\n", authURL)
	} else if err := browser.OpenURL(authURL); err != nil {
		logger.Warn().Err(err).Msg("Failed to open browser")
		p.Line("Open this URL to authorize paperbox:\n\n  %s\n", authURL)
	}

	p.Line("Paste the URL you were redirected to:")
	redirect, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && redirect == "" {
		return fmt.Errorf("failed to read redirect URL: %w", err)
	}

	if _, err := flow.HandleRedirect(strings.TrimSpace(redirect)); err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	tok, err := flow.Token(cmd.Context())
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	p.Success("Authorized account %s", tok.AccountID)
	reportToken(p, tok.AccessToken)
	return nil
}

func runAuthRevoke(cmd *cobra.Command, args []string) error {
	client, err := newDropboxClient()
	if err != nil {
		return err
	}
	if err := auth.RevokeToken(cmd.Context(), client); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	newPrinter(cmd.OutOrStdout()).Success("Access token revoked")
	return nil
}

func runAuthMigrate(cmd *cobra.Command, args []string) error {
	ops, err := newAuthOperations()
	if err != nil {
		return err
	}
	token, err := ops.TokenFromOAuth1(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	p.Success("Migrated OAuth1 token")
	reportToken(p, token)
	return nil
}

const accessTokenEnv = config.EnvPrefix + "_DROPBOX_ACCESS_TOKEN"

func reportToken(p *printer, token string) {
	p.Detail("Access token", token)
	p.Line("\nExport it as %s or add it to your config file.", accessTokenEnv)
}
