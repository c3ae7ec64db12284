package model

import (
	"time"

	"github.com/google/uuid"
)

// TimeLayout - формат временных меток iCalendar (UTC).
const TimeLayout = "20060102T150405Z"

// Task - одна задача (VTODO) в памяти. Строковые поля дат хранятся
// в wire-формате как есть и никогда не переформатируются локально.
type Task struct {
	UID     string `json:"uid"`
	ListUID string `json:"list_uid"`

	Summary string   `json:"summary"`
	Notes   string   `json:"notes"`
	Tags    []string `json:"tags"`

	Priority        int  `json:"priority"`         // 0-9, 0 = не задан
	PercentComplete int  `json:"percent_complete"` // 0-100
	Completed       bool `json:"completed"`

	DueAt          string `json:"due_at"`   // DUE, дата или дата-время
	StartAt        string `json:"start_at"` // DTSTART
	RecurrenceRule string `json:"rrule"`    // RRULE, сквозная строка

	ParentUID string `json:"parent_uid"` // RELATED-TO, пусто = корень

	CreatedAt string `json:"created_at"` // DTSTAMP
	ChangedAt string `json:"changed_at"` // LAST-MODIFIED
	Synced    bool   `json:"synced"`

	XProps *XProps `json:"-"`
}

// NewTask создает задачу с заполненными UID и временными метками.
func NewTask() *Task {
	now := time.Now().UTC().Format(TimeLayout)
	return &Task{
		UID:       uuid.NewString(),
		CreatedAt: now,
		ChangedAt: now,
		XProps:    NewXProps(),
	}
}

// Normalize добивает обязательные поля после ручного конструирования.
func (t *Task) Normalize() {
	now := time.Now().UTC().Format(TimeLayout)
	if t.UID == "" {
		t.UID = uuid.NewString()
	}
	if t.CreatedAt == "" {
		t.CreatedAt = now
	}
	if t.ChangedAt == "" {
		t.ChangedAt = t.CreatedAt
	}
	if t.XProps == nil {
		t.XProps = NewXProps()
	}
}

// TaskList - одна коллекция (календарь с задачами). Пересоздается целиком
// при каждой полной загрузке с сервера.
type TaskList struct {
	UID     string  `json:"uid"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Synced  bool    `json:"synced"`
	Deleted bool    `json:"deleted"`
	Tasks   []*Task `json:"tasks"`
}

func NewTaskList(uid, name string) *TaskList {
	if uid == "" {
		uid = uuid.NewString()
	}
	return &TaskList{UID: uid, Name: name}
}

// TaskByUID ищет задачу внутри этого списка.
func (l *TaskList) TaskByUID(uid string) *Task {
	for _, t := range l.Tasks {
		if t.UID == uid {
			return t
		}
	}
	return nil
}
