package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPurgeCmd() *cobra.Command {
	var (
		days   int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Удалить завершенные задачи старше N дней",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			if flagList == "" {
				return fmt.Errorf("--list is required for purge")
			}

			svc, logger, err := newService(cmd.Context(), true)
			if logger != nil {
				defer logger.Sync()
			}
			if err != nil {
				return err
			}

			purged, err := svc.PurgeCompleted(cmd.Context(), flagList,
				time.Duration(days)*24*time.Hour, dryRun)
			if err != nil {
				return err
			}

			verb := "purged"
			if dryRun {
				verb = "would purge"
			}
			for _, t := range purged {
				fmt.Printf("%s %s (%s)\n", verb, t.Summary, t.UID)
			}
			fmt.Printf("%s %d task(s)\n", verb, len(purged))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "возраст завершенных задач в днях")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "только показать, не удалять")
	return cmd
}
