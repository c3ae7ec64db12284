package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask()

	assert.NotEmpty(t, task.UID)
	assert.NotEmpty(t, task.CreatedAt)
	assert.Equal(t, task.CreatedAt, task.ChangedAt)
	require.NotNil(t, task.XProps)
	assert.False(t, task.Synced)
}

func TestTask_Normalize(t *testing.T) {
	task := &Task{CreatedAt: "20250101T100000Z"}
	task.Normalize()

	assert.NotEmpty(t, task.UID)
	assert.Equal(t, "20250101T100000Z", task.ChangedAt, "changed_at defaults to created_at")
	assert.NotNil(t, task.XProps)

	// Уже заполненные поля не трогаются
	uid := task.UID
	task.Normalize()
	assert.Equal(t, uid, task.UID)
}

func TestTaskList_TaskByUID(t *testing.T) {
	list := NewTaskList("l-1", "Inbox")
	a := &Task{UID: "a"}
	list.Tasks = append(list.Tasks, a, &Task{UID: "b"})

	assert.Same(t, a, list.TaskByUID("a"))
	assert.Nil(t, list.TaskByUID("missing"))
}

func TestNewTaskList_GeneratesUID(t *testing.T) {
	list := NewTaskList("", "Ad hoc")
	assert.NotEmpty(t, list.UID)
}
