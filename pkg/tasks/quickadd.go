package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/vtodo"
)

// creatorProp проставляется каждой задаче, созданной через QuickAdd.
const creatorProp = "X-TASKSDAV-CREATOR"

// QuickAdd создает задачи из короткой текстовой команды:
//
//	"покупки: молоко | хлеб"  - две задачи в списке, найденном fuzzy-поиском
//	"> уточнить срок"         - подзадача последней измененной задачи списка
//
// Префикс "список:" не обязателен, тогда берется список по умолчанию.
func (s *Service) QuickAdd(ctx context.Context, text string) ([]*model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty quick-add text", store.ErrConfiguration)
	}

	listUID := s.opts.DefaultListUID
	if prefix, rest, ok := strings.Cut(text, ":"); ok && !strings.Contains(prefix, " ") {
		if list := s.matchList(prefix); list != nil {
			listUID = list.UID
			text = strings.TrimSpace(rest)
		}
	}
	if listUID == "" {
		return nil, fmt.Errorf("%w: no task list resolved for quick-add", store.ErrConfiguration)
	}

	var created []*model.Task
	for _, segment := range strings.Split(text, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		t := model.NewTask()
		if strings.HasPrefix(segment, ">") {
			// Подзадача цепляется к последней живой задаче списка
			segment = strings.TrimSpace(strings.TrimPrefix(segment, ">"))
			if parent := s.latestOpenTask(listUID); parent != nil {
				t.ParentUID = parent.UID
			} else {
				s.logger.Warn("no parent candidate for subtask, creating as root",
					zap.String("list", listUID))
			}
		}
		t.Summary = segment
		t.XProps.Set(creatorProp, "quick-add")

		if err := s.Create(ctx, t, listUID); err != nil {
			return created, err
		}
		created = append(created, t)

		if list := s.ListByUID(listUID); list != nil {
			list.Tasks = append(list.Tasks, t)
		}
	}
	return created, nil
}

// matchList ищет список по имени fuzzy-поиском, лучший кандидат побеждает.
func (s *Service) matchList(pattern string) *model.TaskList {
	names := make([]string, len(s.lists))
	for i, l := range s.lists {
		names[i] = l.Name
	}
	matches := fuzzy.Find(pattern, names)
	if len(matches) == 0 {
		return nil
	}
	return s.lists[matches[0].Index]
}

// latestOpenTask - незавершенная задача списка с самой свежей ChangedAt.
func (s *Service) latestOpenTask(listUID string) *model.Task {
	list := s.ListByUID(listUID)
	if list == nil {
		return nil
	}
	var latest *model.Task
	for _, t := range list.Tasks {
		if t.Completed {
			continue
		}
		if latest == nil {
			latest = t
			continue
		}
		lt, errL := vtodo.ParseTime(latest.ChangedAt)
		ct, errC := vtodo.ParseTime(t.ChangedAt)
		if errL != nil || (errC == nil && ct.After(lt)) {
			latest = t
		}
	}
	return latest
}
