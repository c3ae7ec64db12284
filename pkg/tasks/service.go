// Package tasks содержит движок сверки локальных изменений с CalDAV-хранилищем
// и доступ к загруженному в память дереву задач.
package tasks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/vtodo"
)

// Options - поведение сессии.
type Options struct {
	// ReadOnly запрещает любые мутации до первого обращения к хранилищу.
	ReadOnly bool
	// StrictUpdates превращает исчерпание каскада Update в ошибку
	// вместо мягкого отказа.
	StrictUpdates bool
	// DefaultListUID - список по умолчанию для Create без явного списка.
	DefaultListUID string
	// TargetLists ограничивает загрузку перечисленными списками
	// (совпадение по UID или имени).
	TargetLists []string
	// IncludeCompleted загружает и завершенные задачи.
	IncludeCompleted bool
}

// Service - одна сессия работы с хранилищем. Не рассчитан на конкурентное
// использование: кэш коллекций и списков замещается целиком при Load.
type Service struct {
	store  store.Store
	logger *zap.Logger
	opts   Options

	cols  []store.Collection
	lists []*model.TaskList
}

func NewService(st store.Store, logger *zap.Logger, opts Options) *Service {
	return &Service{store: st, logger: logger, opts: opts}
}

// Load целиком перечитывает списки и задачи с сервера, замещая кэш.
func (s *Service) Load(ctx context.Context) error {
	cols, err := s.taskCollections(ctx)
	if err != nil {
		return err
	}
	s.cols = cols

	lists := make([]*model.TaskList, 0, len(cols))
	for _, col := range cols {
		list := model.NewTaskList(col.UID(), col.Name())
		if list.Name == "" {
			list.Name = "Unnamed List"
		}
		list.Synced = true

		items, err := s.store.Items(ctx, col, s.opts.IncludeCompleted)
		if err != nil {
			s.logger.Warn("failed to fetch items, list left empty",
				zap.String("list", list.Name), zap.Error(err))
			lists = append(lists, list)
			continue
		}

		failed := 0
		for _, item := range items {
			t, err := vtodo.Decode(item.Body(), list.UID)
			if err != nil {
				// Ошибка разбора одной задачи не роняет загрузку
				failed++
				s.logger.Error("failed to decode item",
					zap.String("list", list.Name), zap.String("item", item.UID()), zap.Error(err))
				continue
			}
			t.Synced = true
			list.Tasks = append(list.Tasks, t)
		}
		if failed > 0 {
			s.logger.Warn("some items failed to decode",
				zap.String("list", list.Name), zap.Int("failed", failed))
		}
		lists = append(lists, list)
	}

	s.lists = lists
	total := 0
	for _, l := range lists {
		total += len(l.Tasks)
	}
	s.logger.Info("remote data loaded", zap.Int("lists", len(lists)), zap.Int("tasks", total))
	return nil
}

// taskCollections возвращает коллекции с поддержкой VTODO,
// отфильтрованные по TargetLists.
func (s *Service) taskCollections(ctx context.Context) ([]store.Collection, error) {
	all, err := s.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	var cols []store.Collection
	for _, col := range all {
		if !col.SupportsTasks() {
			continue
		}
		if len(s.opts.TargetLists) > 0 && !s.isTarget(col) {
			continue
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (s *Service) isTarget(col store.Collection) bool {
	for _, want := range s.opts.TargetLists {
		if col.UID() == want || col.Name() == want {
			return true
		}
	}
	return false
}

// SetDefaultList меняет список по умолчанию для последующих Create/QuickAdd.
func (s *Service) SetDefaultList(uid string) {
	s.opts.DefaultListUID = uid
}

// Lists возвращает загруженные списки.
func (s *Service) Lists() []*model.TaskList {
	return s.lists
}

func (s *Service) ListByUID(uid string) *model.TaskList {
	for _, l := range s.lists {
		if l.UID == uid {
			return l
		}
	}
	return nil
}

// TaskByUID ищет задачу по всем загруженным спискам.
func (s *Service) TaskByUID(uid string) *model.Task {
	for _, l := range s.lists {
		if t := l.TaskByUID(uid); t != nil {
			return t
		}
	}
	return nil
}

// collectionByUID ищет коллекцию в кэше, один раз обновляя его, если пусто.
func (s *Service) collectionByUID(ctx context.Context, uid string) (store.Collection, error) {
	if len(s.cols) == 0 {
		cols, err := s.taskCollections(ctx)
		if err != nil {
			return nil, err
		}
		s.cols = cols
	}
	for _, col := range s.cols {
		if col.UID() == uid {
			return col, nil
		}
	}
	return nil, fmt.Errorf("task list %q: %w", uid, store.ErrNotFound)
}
