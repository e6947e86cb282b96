package cmd

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rbenhaga/notionclipper/pkg/document"
	"github.com/rbenhaga/notionclipper/pkg/document/markdown"
	"github.com/rbenhaga/notionclipper/pkg/document/notion"
	"github.com/rbenhaga/notionclipper/pkg/document/richtext"
)

func importCmd() *cobra.Command {
	var (
		title       string
		pageID      string
		pageURL     string
		workspaceID string
	)

	cmd := cobra.Command{
		Use:   "import [file]",
		Short: "Convert host block JSON into a canonical document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var blocks []notion.Block
			if err := json.Unmarshal(data, &blocks); err != nil {
				return errors.Wrap(err, "failed to decode block list")
			}

			doc, warnings, err := notion.NewImporter().Import(blocks, notion.ImportMeta{
				SourcePageID: pageID,
				WorkspaceID:  workspaceID,
				Title:        title,
				PageURL:      pageURL,
			})
			if err != nil {
				return err
			}

			logWarnings(warnings)
			return writeJSON(cmd, doc)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Document title.")
	cmd.Flags().StringVar(&pageID, "page-id", "", "Host page the blocks came from.")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "Host page URL.")
	cmd.Flags().StringVar(&workspaceID, "workspace-id", "", "Host workspace id.")

	return &cmd
}

func exportCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "export [file]",
		Short: "Convert a canonical document into host block JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			doc, err := decodeDocument(data)
			if err != nil {
				return err
			}

			blocks, warnings, err := notion.NewExporter().Export(doc)
			if err != nil {
				return err
			}

			logWarnings(warnings)
			return writeJSON(cmd, blocks)
		},
	}

	return &cmd
}

func captureCmd() *cobra.Command {
	var noLinks bool

	cmd := cobra.Command{
		Use:   "capture [file]",
		Short: "Capture markdown into a canonical document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			doc, warnings, err := markdown.Parse(data, markdown.Options{
				Inline: richtext.Options{EnableLinks: !noLinks},
			})
			if err != nil {
				return err
			}

			logWarnings(warnings)
			return writeJSON(cmd, doc)
		},
	}

	cmd.Flags().BoolVar(&noLinks, "no-links", false, "Keep link and URL markup as plain text.")

	return &cmd
}

func statsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "stats [file]",
		Short: "Report block statistics for a canonical document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			doc, err := decodeDocument(data)
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}

			return writeJSON(cmd, document.Stats(doc.Content))
		},
	}

	return &cmd
}
