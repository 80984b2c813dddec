package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSampleCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample <entity>",
		Short: "Write the import template for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			data, url, err := a.service.Sample(key)
			if err != nil {
				return err
			}
			if url != "" {
				// The backend hosts this template itself.
				fmt.Fprintf(cmd.OutOrStdout(), "Template for %s: %s\n", key, a.backendURL(url))
				return nil
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func (a *app) backendURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(a.cfg.API.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
