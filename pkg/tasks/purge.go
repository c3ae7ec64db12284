package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/vtodo"
)

// PurgeCompleted удаляет из списка завершенные задачи, которые не менялись
// дольше olderThan. При dryRun задачи только собираются, без удаления.
// Возвращает удаленные (или подлежащие удалению) задачи.
func (s *Service) PurgeCompleted(ctx context.Context, listUID string, olderThan time.Duration, dryRun bool) ([]*model.Task, error) {
	list := s.ListByUID(listUID)
	if list == nil {
		return nil, fmt.Errorf("task list %q: %w", listUID, store.ErrNotFound)
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	var purged []*model.Task

	for _, t := range list.Tasks {
		if !t.Completed {
			continue
		}
		changed, err := vtodo.ParseTime(t.ChangedAt)
		if err != nil {
			// Непарсящуюся метку не трогаем, удалять вслепую нельзя
			s.logger.Warn("skipping task with unparseable timestamp",
				zap.String("uid", t.UID), zap.String("changed_at", t.ChangedAt))
			continue
		}
		if !changed.Before(cutoff) {
			continue
		}

		if dryRun {
			s.logger.Info("would purge task",
				zap.String("uid", t.UID), zap.String("summary", t.Summary))
			purged = append(purged, t)
			continue
		}
		if err := s.Delete(ctx, t.UID, listUID); err != nil {
			return purged, fmt.Errorf("purge task %q: %w", t.UID, err)
		}
		purged = append(purged, t)
	}

	s.logger.Info("purge finished",
		zap.String("list", listUID), zap.Int("purged", len(purged)), zap.Bool("dry_run", dryRun))
	return purged, nil
}
