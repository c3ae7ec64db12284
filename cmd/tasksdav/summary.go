package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odintsov/tasksdav/pkg/render"
)

func newSummaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Счетчики задач по всем спискам",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context(), true)
			if logger != nil {
				defer logger.Sync()
			}
			if err != nil {
				return err
			}

			summary := render.Summarize(svc.Lists())
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Print(summary.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести в JSON")
	return cmd
}
