package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odintsov/tasksdav/pkg/render"
)

func newDumpCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Выгрузить списки в текстовые файлы (удобно коммитить в git)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := newService(cmd.Context(), true)
			if logger != nil {
				defer logger.Sync()
			}
			if err != nil {
				return err
			}

			if outputDir == "" {
				// Без каталога пишем все в stdout
				for _, l := range svc.Lists() {
					fmt.Print(render.List(l))
					fmt.Println()
				}
				return nil
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for _, l := range svc.Lists() {
				path := filepath.Join(outputDir, render.Filename(l.Name)+".txt")
				if err := os.WriteFile(path, []byte(render.List(l)), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Println("wrote", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "каталог для файлов дампа")
	return cmd
}
