package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odintsov/tasksdav/pkg/model"
)

func TestService_ParentChildSymmetry(t *testing.T) {
	svc := newTestService(new(MockStore), Options{})

	a := &model.Task{UID: "a", Summary: "root"}
	b := &model.Task{UID: "b", Summary: "child", ParentUID: "a"}
	svc.lists = []*model.TaskList{{UID: "l", Tasks: []*model.Task{a, b}}}

	parent := svc.ParentOf(b)
	require.NotNil(t, parent)
	assert.Equal(t, "a", parent.UID)

	children := svc.Children(a)
	require.Len(t, children, 1)
	assert.Equal(t, "b", children[0].UID)
}

func TestService_ParentOf_UnresolvedCases(t *testing.T) {
	svc := newTestService(new(MockStore), Options{})
	svc.lists = []*model.TaskList{{UID: "l", Tasks: []*model.Task{
		{UID: "orphan", ParentUID: "deleted-parent"},
		{UID: "root"},
	}}}

	// Родитель удален на сервере - это не ошибка, просто nil
	assert.Nil(t, svc.ParentOf(svc.TaskByUID("orphan")))
	assert.Nil(t, svc.ParentOf(svc.TaskByUID("root")))
}

func TestService_Children_AcrossLists(t *testing.T) {
	svc := newTestService(new(MockStore), Options{})

	a := &model.Task{UID: "a"}
	svc.lists = []*model.TaskList{
		{UID: "l1", Tasks: []*model.Task{a, {UID: "b", ParentUID: "a"}}},
		{UID: "l2", Tasks: []*model.Task{{UID: "c", ParentUID: "a"}, {UID: "d"}}},
	}

	children := svc.Children(a)
	assert.Len(t, children, 2, "children lookup scans every loaded list")
	assert.Empty(t, svc.Children(svc.TaskByUID("d")))
}
