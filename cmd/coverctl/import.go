package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/importer"
)

// maxPrintedErrors caps the validation errors written to the terminal.
const maxPrintedErrors = 20

var (
	errInvalidFile  = errors.New("file failed validation")
	errUploadFailed = errors.New("upload rejected")
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <entity> <file>",
		Short: "Validate a CSV file and upload it as a bulk import",
		Long: `Parses the file with the entity's column mapping, validates every row and
uploads the rows when the file is clean. With --dry-run nothing is sent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, path := args[0], args[1]
			out := cmd.OutOrStdout()

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			ctx := a.actorContext(cmd.Context())

			// A dry run never talks to the backend, so it needs no sign-in.
			var client *apiclient.Client
			if dryRun {
				client, err = a.newClient()
			} else {
				client, err = a.client(ctx)
			}
			if err != nil {
				return err
			}

			orch, err := a.service.NewImport(client, key, nil)
			if err != nil {
				return err
			}
			defer orch.Close()

			if err := orch.SelectFile(ctx, filepath.Base(path), info.Size(), f); err != nil {
				return err
			}
			p := orch.Snapshot()
			fmt.Fprintf(out, "%s: %d row(s)\n", p.FileName, p.TotalRows)
			if p.State != importer.StateParsedValid {
				fmt.Fprintln(out, p.Message)
				printErrors(out, p.Errors)
				return errInvalidFile
			}

			if dryRun {
				fmt.Fprintf(out, "Dry run: %d row(s) would be uploaded to %s\n", p.TotalRows, key)
				return nil
			}

			outcome, err := orch.Upload(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, outcome.Message)
			if !outcome.Success {
				printErrors(out, outcome.Errors)
				return errUploadFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate only, do not upload")
	return cmd
}

func printErrors(w io.Writer, errs []importer.ValidationError) {
	for i, e := range errs {
		if i == maxPrintedErrors {
			fmt.Fprintf(w, "  ... and %d more\n", len(errs)-maxPrintedErrors)
			return
		}
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
}
