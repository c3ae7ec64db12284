package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add \"текст задачи\"",
		Short: "Быстрое добавление задач",
		Long: `Создает задачи из короткой команды.

Первый сегмент до ":" fuzzy-сопоставляется с именем списка, "|" разделяет
несколько задач, префикс ">" делает задачу подзадачей последней измененной
задачи списка. Флаг --list перекрывает выбор списка.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context(), false)
			if logger != nil {
				defer logger.Sync()
			}
			if err != nil {
				return err
			}

			if flagList != "" {
				svc.SetDefaultList(flagList)
			}

			created, err := svc.QuickAdd(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, t := range created {
				fmt.Printf("created %s (%s)\n", t.Summary, t.UID)
			}
			return nil
		},
	}
}
