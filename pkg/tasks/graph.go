package tasks

import "github.com/odintsov/tasksdav/pkg/model"

// ParentOf возвращает родителя задачи по ParentUID или nil, если родитель
// не задан либо не загружен. Ссылки на родителя хранятся только как UID,
// без указателей, поэтому удаленный родитель здесь безопасен.
func (s *Service) ParentOf(t *model.Task) *model.Task {
	if t.ParentUID == "" {
		return nil
	}
	return s.TaskByUID(t.ParentUID)
}

// Children возвращает задачи всех списков, у которых ParentUID равен UID
// данной задачи. Линейный проход без индекса, защита от циклов лежит на
// вызывающем, который строит из этого дерево.
func (s *Service) Children(t *model.Task) []*model.Task {
	var children []*model.Task
	for _, l := range s.lists {
		for _, candidate := range l.Tasks {
			if candidate.ParentUID == t.UID {
				children = append(children, candidate)
			}
		}
	}
	return children
}
