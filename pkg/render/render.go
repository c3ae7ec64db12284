// Package render формирует текстовое и JSON-представление загруженных
// списков для вывода CLI и дампов под git.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/vtodo"
)

// ListSummary - счетчики одного списка.
type ListSummary struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Open      int    `json:"open"`
}

// Summary - счетчики по всем спискам с общими итогами.
type Summary struct {
	Lists     []ListSummary `json:"lists"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Open      int           `json:"open"`
}

func Summarize(lists []*model.TaskList) Summary {
	s := Summary{Lists: make([]ListSummary, 0, len(lists))}
	for _, l := range lists {
		ls := ListSummary{UID: l.UID, Name: l.Name, Total: len(l.Tasks)}
		for _, t := range l.Tasks {
			if t.Completed {
				ls.Completed++
			}
		}
		ls.Open = ls.Total - ls.Completed
		s.Lists = append(s.Lists, ls)
		s.Total += ls.Total
		s.Completed += ls.Completed
		s.Open += ls.Open
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	for _, ls := range s.Lists {
		fmt.Fprintf(&b, "%-30s %4d total, %4d open, %4d done\n",
			ls.Name, ls.Total, ls.Open, ls.Completed)
	}
	fmt.Fprintf(&b, "%-30s %4d total, %4d open, %4d done\n",
		"TOTAL", s.Total, s.Open, s.Completed)
	return b.String()
}

// List рендерит список в детерминированный текст: заголовок, затем по
// строке на задачу, свежие изменения первыми, иерархия отступами.
func List(l *model.TaskList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n", l.Name, l.UID)

	byUID := make(map[string]*model.Task, len(l.Tasks))
	for _, t := range l.Tasks {
		byUID[t.UID] = t
	}

	sorted := make([]*model.Task, len(l.Tasks))
	copy(sorted, l.Tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, errI := vtodo.ParseTime(sorted[i].ChangedAt)
		tj, errJ := vtodo.ParseTime(sorted[j].ChangedAt)
		if errI != nil || errJ != nil || ti.Equal(tj) {
			return sorted[i].UID < sorted[j].UID
		}
		return ti.After(tj)
	})

	for _, t := range sorted {
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat("  ", depth(t, byUID)), checkbox, t.Summary)
	}
	return b.String()
}

// depth считает глубину задачи по цепочке родителей внутри списка.
// Посещенные UID запоминаются, битая циклическая цепочка не зацикливает.
func depth(t *model.Task, byUID map[string]*model.Task) int {
	seen := map[string]bool{t.UID: true}
	d := 0
	for t.ParentUID != "" {
		parent, ok := byUID[t.ParentUID]
		if !ok || seen[parent.UID] {
			break
		}
		seen[parent.UID] = true
		d++
		t = parent
	}
	return d
}

// Filename превращает имя списка в безопасное имя файла для дампа.
func Filename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed_list"
	}
	return out
}
