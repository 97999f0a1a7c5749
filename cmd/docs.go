package cmd

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/paperbox/dropbox"
	"github.com/s0up4200/paperbox/paper"
)

var (
	listFilterBy  string
	listSortBy    string
	listSortOrder string
	listLimit     int
	listAll       bool
	listCursor    string

	exportFormat string
	outputPath   string

	importFormat   string
	parentFolderID string
	updatePolicy   string
	revision       int64

	assumeYes bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List, export, import and remove Paper docs",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the docs you can access",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsDownloadCmd = &cobra.Command{
	Use:   "download <doc-id>",
	Short: "Export a doc as markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDownload,
}

var docsCreateCmd = &cobra.Command{
	Use:   "create <file|->",
	Short: "Create a doc from a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsCreate,
}

var docsUpdateCmd = &cobra.Command{
	Use:   "update <doc-id> <file|->",
	Short: "Append, prepend or overwrite the content of a doc",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocsUpdate,
}

var docsArchiveCmd = &cobra.Command{
	Use:   "archive <doc-id>...",
	Short: "Move docs to the archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocsArchive,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <doc-id>",
	Short: "Permanently delete a doc",
	Long:  `Permanently deletes a doc. Only the owner can do this and it cannot be undone.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsFolderCmd = &cobra.Command{
	Use:   "folder <doc-id>",
	Short: "Show the folder path of a doc",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsFolder,
}

func init() {
	docsListCmd.Flags().StringVar(&listFilterBy, "filter-by", "", "docs_accessed or docs_created")
	docsListCmd.Flags().StringVar(&listSortBy, "sort-by", "", "accessed, modified or created")
	docsListCmd.Flags().StringVar(&listSortOrder, "sort-order", "", "ascending or descending")
	docsListCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "page size (default from config)")
	docsListCmd.Flags().BoolVarP(&listAll, "all", "a", false, "follow the cursor until every doc is listed")
	docsListCmd.Flags().StringVar(&listCursor, "cursor", "", "continue a previous listing")

	docsDownloadCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "markdown or html (default from config)")
	docsDownloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to this file instead of stdout")

	for _, c := range []*cobra.Command{docsCreateCmd, docsUpdateCmd} {
		c.Flags().StringVarP(&importFormat, "format", "f", "", "html, markdown or plain_text (default from file extension)")
	}
	docsCreateCmd.Flags().StringVar(&parentFolderID, "parent", "", "folder to create the doc in")
	docsUpdateCmd.Flags().StringVarP(&updatePolicy, "policy", "p", string(paper.UpdateAppend), "append, prepend or overwrite_all")
	docsUpdateCmd.Flags().Int64VarP(&revision, "revision", "r", 0, "latest revision of the doc you have seen")
	_ = docsUpdateCmd.MarkFlagRequired("revision")

	docsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")

	docsCmd.AddCommand(docsListCmd, docsDownloadCmd, docsCreateCmd, docsUpdateCmd, docsArchiveCmd, docsDeleteCmd, docsFolderCmd)
}

func runDocsList(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())

	limit := listLimit
	if limit == 0 {
		limit = cfg.Paper.PageSize
	}
	opts := paper.ListOptions{
		FilterBy:  paper.FilterBy(listFilterBy),
		SortBy:    paper.SortBy(listSortBy),
		SortOrder: paper.SortOrder(listSortOrder),
		Limit:     limit,
	}

	if listAll {
		ids, err := client.ListAll(ctx, opts)
		if err != nil {
			return err
		}
		printDocIDs(p, ids)
		return nil
	}

	var page *paper.DocsPage
	if listCursor != "" {
		page, err = client.ListContinue(ctx, listCursor)
	} else {
		page, err = client.List(ctx, opts)
	}
	if err != nil {
		if cursorErr, ok := paper.CursorErrorOf(err); ok {
			return fmt.Errorf("cursor rejected (%s), start a new listing without --cursor: %w", cursorErr, err)
		}
		return err
	}

	printDocIDs(p, page.DocIDs)
	if page.HasMore {
		printCursor(p, page.Cursor)
	}
	return nil
}

func printDocIDs(p *printer, ids []string) {
	if len(ids) == 0 {
		p.Line("No docs found.")
		return
	}
	p.Header("Found %d docs:", len(ids))
	for _, id := range ids {
		p.Item("%s", id)
	}
}

func printCursor(p *printer, cursor dropbox.Cursor) {
	p.Line("")
	p.Warn("More results available, continue with --cursor %s", cursor.Value)
	if expires, err := cursor.ExpiresAt(); err == nil {
		p.Detail("Cursor expires", expires.Local().Format(time.RFC1123))
	}
}

func runDocsDownload(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}

	format := paper.ExportFormat(cfg.Paper.ExportFormat)
	if exportFormat != "" {
		format = paper.ExportFormat(exportFormat)
	}

	resp, err := client.Download(cmd.Context(), args[0], format)
	if err != nil {
		return err
	}
	defer resp.Close()

	if outputPath == "" {
		_, err = io.Copy(cmd.OutOrStdout(), resp.Content)
		return err
	}

	f, err := appFs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}
	n, err := io.Copy(f, resp.Content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	p := newPrinter(cmd.ErrOrStderr())
	p.Success("Exported %q (revision %d) to %s", resp.Body.Title, resp.Body.Revision, outputPath)
	logger.Debug().Int64("bytes", n).Str("mime_type", resp.Body.MimeType).Msg("Wrote export")
	return nil
}

// openInput opens path on appFs, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(bufio.NewReader(cmd.InOrStdin())), nil
	}
	f, err := appFs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// inputFormat is the --format flag or a guess from the file extension.
func inputFormat(path string) paper.ImportFormat {
	if importFormat != "" {
		return paper.ImportFormat(importFormat)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return paper.ImportMarkdown
	case ".html", ".htm":
		return paper.ImportHTML
	default:
		return paper.ImportPlainText
	}
}

func runDocsCreate(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	result, err := client.Create(cmd.Context(), inputFormat(args[0]), parentFolderID, in)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.Success("Created %q", result.Title)
	p.Detail("Doc ID", result.DocID)
	p.Detail("Revision", result.Revision)
	return nil
}

func runDocsUpdate(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	in, err := openInput(cmd, args[1])
	if err != nil {
		return err
	}
	defer in.Close()

	req := paper.UpdateRequest{
		DocID:    args[0],
		Policy:   paper.UpdatePolicy(updatePolicy),
		Revision: revision,
		Format:   inputFormat(args[1]),
	}
	result, err := client.Update(cmd.Context(), req, in)
	if err != nil {
		if kind, ok := paper.EndpointError[paper.PaperDocUpdateError](err); ok && kind == paper.UpdateRevisionMismatch {
			return fmt.Errorf("doc changed since revision %d, download it again before updating: %w", revision, err)
		}
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	p.Success("Updated %q", result.Title)
	p.Detail("Revision", result.Revision)
	return nil
}

func runDocsArchive(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())

	var failed int
	for _, docID := range args {
		if err := client.Archive(cmd.Context(), docID); err != nil {
			p.Failure("%s: %v", docID, err)
			failed++
			continue
		}
		p.Success("Archived %s", docID)
	}
	if failed > 0 {
		return fmt.Errorf("failed to archive %d of %d docs", failed, len(args))
	}
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	docID := args[0]

	if !assumeYes {
		p.Warn("Permanently delete %s? This cannot be undone. [y/N]: ", docID)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
	}

	if err := client.PermanentlyDelete(cmd.Context(), docID); err != nil {
		return err
	}
	p.Success("Deleted %s", docID)
	return nil
}

func runDocsFolder(cmd *cobra.Command, args []string) error {
	client, err := newPaperClient()
	if err != nil {
		return err
	}
	info, err := client.GetFolderInfo(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	if len(info.Folders) == 0 {
		p.Line("%s is not in a folder.", args[0])
		return nil
	}

	names := make([]string, 0, len(info.Folders))
	for _, f := range info.Folders {
		names = append(names, f.Name)
	}
	p.Line("%s", strings.Join(names, " / "))
	if info.FolderSharingPolicyType != nil {
		p.Detail("Sharing", *info.FolderSharingPolicyType)
	}
	p.Detail("Folder ID", info.Folders[len(info.Folders)-1].ID)
	return nil
}
