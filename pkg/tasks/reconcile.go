package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/vtodo"
)

// removable - опциональные свойства, которые tier-1 снимает с серверного
// объекта, когда в локальной задаче они пусты.
var removable = []string{
	"DESCRIPTION", "DUE", "DTSTART", "PRIORITY", "RELATED-TO", "CATEGORIES", "RRULE",
}

// Create создает задачу на сервере и копирует обратно авторитетные
// значения UID и ChangedAt.
func (s *Service) Create(ctx context.Context, t *model.Task, listUID string) error {
	// Приоритет выбора списка: аргумент -> задача -> значение по умолчанию
	if listUID == "" {
		listUID = t.ListUID
	}
	if listUID == "" {
		listUID = s.opts.DefaultListUID
	}
	if listUID == "" {
		return fmt.Errorf("%w: no task list resolved for create", store.ErrConfiguration)
	}
	if s.opts.ReadOnly {
		return fmt.Errorf("create: %w", store.ErrReadOnly)
	}

	t.Normalize()
	t.ListUID = listUID

	col, err := s.collectionByUID(ctx, listUID)
	if err != nil {
		return err
	}

	item, err := s.store.CreateItem(ctx, col, vtodo.Encode(t))
	if err != nil {
		t.Synced = false
		return fmt.Errorf("create task in %q: %w", listUID, asTransport(err))
	}

	// Серверный UID может отличаться от локально сгенерированного
	if stored, err := vtodo.Decode(item.Body(), listUID); err == nil {
		t.UID = stored.UID
		t.ChangedAt = stored.ChangedAt
	} else if uid := item.UID(); uid != "" {
		s.logger.Warn("stored item not decodable, using item uid as-is",
			zap.String("uid", uid), zap.Error(err))
		t.UID = uid
	}
	t.Synced = true
	s.logger.Info("task created", zap.String("uid", t.UID), zap.String("list", listUID))

	s.verifyCreate(ctx, col, t)
	return nil
}

// verifyCreate - рекомендательная проверка после создания: перечитывает
// задачу и, если сервер подменил SUMMARY, дожимает его точечным
// исправлением. Ошибки этого пути никогда не роняют Create.
func (s *Service) verifyCreate(ctx context.Context, col store.Collection, t *model.Task) {
	item, err := s.store.ItemByUID(ctx, col, t.UID)
	if err != nil {
		s.logger.Debug("create verification read failed", zap.String("uid", t.UID), zap.Error(err))
		return
	}
	stored, err := vtodo.Decode(item.Body(), t.ListUID)
	if err != nil {
		s.logger.Debug("create verification decode failed", zap.String("uid", t.UID), zap.Error(err))
		return
	}
	if stored.Summary == t.Summary {
		return
	}

	s.logger.Warn("server rewrote summary on create, correcting",
		zap.String("uid", t.UID),
		zap.String("intended", t.Summary),
		zap.String("stored", stored.Summary))
	if err := s.store.UpdateSummary(ctx, item, t.Summary); err != nil {
		s.logger.Warn("summary correction failed", zap.String("uid", t.UID), zap.Error(err))
	}
}

// Update продвигает локальные изменения задачи на сервер через каскад из
// трех стратегий. По умолчанию исчерпание каскада - мягкий отказ: ошибка
// логируется, но не возвращается (поведение включается StrictUpdates).
func (s *Service) Update(ctx context.Context, t *model.Task) error {
	if t.UID == "" || t.ListUID == "" {
		return fmt.Errorf("%w: update requires uid and list uid", store.ErrConfiguration)
	}
	if s.opts.ReadOnly {
		return fmt.Errorf("update: %w", store.ErrReadOnly)
	}

	t.ChangedAt = time.Now().UTC().Format(model.TimeLayout)
	if t.Completed {
		t.PercentComplete = 100
	}

	col, err := s.collectionByUID(ctx, t.ListUID)
	if err != nil {
		return err
	}
	item, err := s.store.ItemByUID(ctx, col, t.UID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("locate task %q: %w", t.UID, asTransport(err))
	}

	if err := s.applyUpdate(ctx, item, t); err != nil {
		s.logger.Error("all update strategies failed",
			zap.String("uid", t.UID), zap.String("list", t.ListUID), zap.Error(err))
		if s.opts.StrictUpdates {
			return fmt.Errorf("update task %q: %w", t.UID, asTransport(err))
		}
		return nil // мягкий отказ, Synced остается как был
	}

	s.refreshFromServer(ctx, col, t)
	t.Synced = true
	s.logger.Info("task updated", zap.String("uid", t.UID), zap.String("list", t.ListUID))
	return nil
}

// applyUpdate - каскад стратегий: попроперточное обновление, полная замена
// тела, затем минимальное обновление только заголовка.
func (s *Service) applyUpdate(ctx context.Context, item store.Item, t *model.Task) error {
	propErr := s.updateByProperties(ctx, item, t)
	if propErr == nil {
		return nil
	}
	s.logger.Warn("per-property update failed, trying full replace",
		zap.String("uid", t.UID), zap.Error(propErr))

	replaceErr := s.updateByReplace(ctx, item, t)
	if replaceErr == nil {
		return nil
	}
	s.logger.Warn("full replace failed, trying summary-only update",
		zap.String("uid", t.UID), zap.Error(replaceErr))

	if err := s.store.UpdateSummary(ctx, item, t.Summary); err != nil {
		return fmt.Errorf("properties: %v; replace: %v; summary: %w", propErr, replaceErr, err)
	}
	return nil
}

func (s *Service) updateByProperties(ctx context.Context, item store.Item, t *model.Task) error {
	present := make(map[string]bool)
	for _, p := range vtodo.Properties(t) {
		name := strings.ToUpper(p.Name)
		present[name] = true
		if name == "UID" || name == "STATUS" {
			// UID неизменяем, статус применяется отдельным переходом ниже
			continue
		}
		if err := s.store.SetProperty(item, p.Name+p.Params, p.Value); err != nil {
			return err
		}
	}
	for _, name := range removable {
		if present[name] {
			continue
		}
		if err := s.store.RemoveProperty(item, name); err != nil {
			return err
		}
	}
	if err := s.store.Save(ctx, item); err != nil {
		return err
	}

	if t.Completed {
		return s.store.Complete(ctx, item)
	}
	return s.store.Uncomplete(ctx, item)
}

func (s *Service) updateByReplace(ctx context.Context, item store.Item, t *model.Task) error {
	if err := s.store.ReplaceBody(item, vtodo.Encode(t)); err != nil {
		return err
	}
	return s.store.Save(ctx, item)
}

// refreshFromServer перечитывает задачу после сохранения и принимает
// серверную версию всех полей, кроме SUMMARY: его сервер иногда
// нормализует, а терять введенный пользователем текст нельзя.
func (s *Service) refreshFromServer(ctx context.Context, col store.Collection, t *model.Task) {
	item, err := s.store.ItemByUID(ctx, col, t.UID)
	if err != nil {
		s.logger.Debug("post-update read failed", zap.String("uid", t.UID), zap.Error(err))
		return
	}
	stored, err := vtodo.Decode(item.Body(), t.ListUID)
	if err != nil {
		s.logger.Debug("post-update decode failed", zap.String("uid", t.UID), zap.Error(err))
		return
	}
	summary := t.Summary
	*t = *stored
	t.Summary = summary
}

// Delete удаляет задачу с сервера. Отсутствие задачи или списка -
// доменная ошибка ErrNotFound, отличимая от транспортных сбоев.
func (s *Service) Delete(ctx context.Context, uid, listUID string) error {
	if s.opts.ReadOnly {
		return fmt.Errorf("delete: %w", store.ErrReadOnly)
	}
	if uid == "" || listUID == "" {
		return fmt.Errorf("%w: delete requires uid and list uid", store.ErrConfiguration)
	}

	col, err := s.collectionByUID(ctx, listUID)
	if err != nil {
		return err
	}
	item, err := s.store.ItemByUID(ctx, col, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("locate task %q: %w", uid, asTransport(err))
	}
	if err := s.store.Delete(ctx, item); err != nil {
		return fmt.Errorf("delete task %q: %w", uid, asTransport(err))
	}
	s.logger.Info("task deleted", zap.String("uid", uid), zap.String("list", listUID))
	return nil
}

// asTransport сводит нераспознанные ошибки коллаборатора к ErrTransport,
// не затирая доменные виды.
func asTransport(err error) error {
	if errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrConfiguration) ||
		errors.Is(err, store.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrTransport, err)
}
