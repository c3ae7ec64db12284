package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/internal/config"
	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/tasks"
)

var (
	flagConfig   string
	flagVerbose  bool
	flagReadOnly bool
	flagList     string
)

func main() {
	root := &cobra.Command{
		Use:           "tasksdav",
		Short:         "CLI для задач (VTODO) на CalDAV-сервере",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "путь к TOML-конфигу")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "подробные логи")
	root.PersistentFlags().BoolVar(&flagReadOnly, "read-only", false, "запретить изменения на сервере")
	root.PersistentFlags().StringVar(&flagList, "list", "", "UID целевого списка")

	root.AddCommand(newSummaryCmd(), newAddCmd(), newDumpCmd(), newPurgeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	if flagVerbose || cfg.Debug {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

// newService подключается к серверу и загружает все списки в память.
func newService(ctx context.Context, includeCompleted bool) (*tasks.Service, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)

	st, err := store.Connect(ctx, store.Options{
		Endpoint:  cfg.URL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Nextcloud: cfg.Nextcloud,
		Insecure:  cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, logger, fmt.Errorf("connect: %w", err)
	}

	svc := tasks.NewService(st, logger, tasks.Options{
		ReadOnly:         cfg.ReadOnly || flagReadOnly,
		DefaultListUID:   cfg.DefaultListUID,
		TargetLists:      cfg.TargetLists,
		IncludeCompleted: includeCompleted,
	})
	if err := svc.Load(ctx); err != nil {
		return nil, logger, fmt.Errorf("load: %w", err)
	}
	return svc, logger, nil
}
