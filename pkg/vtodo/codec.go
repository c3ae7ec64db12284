// Package vtodo реализует кодек между model.Task и текстовым
// представлением VTODO (RFC 5545). Порядок свойств и правила пропуска
// пустых полей при кодировании - контракт, на нем держится round-trip.
package vtodo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
)

// ErrNoVTODO возвращается, когда во входном тексте нет блока VTODO.
var ErrNoVTODO = fmt.Errorf("%w: no VTODO block found", store.ErrDecode)

// Property - одно свойство контент-строки iCalendar.
type Property struct {
	Name   string // имя без параметров, в оригинальном регистре
	Params string // суффикс параметров вместе с ";", либо ""
	Value  string // уже экранированное значение
}

// Optional - свойство опускается при кодировании, если значение пустое.
// Tier-1 обновления снимают такие свойства с серверного объекта.
func (p Property) Optional() bool {
	switch strings.ToUpper(p.Name) {
	case "UID", "SUMMARY", "DTSTAMP", "LAST-MODIFIED", "STATUS", "PERCENT-COMPLETE":
		return false
	}
	return true
}

// Properties раскладывает задачу в свойства в контрактном порядке.
func Properties(t *model.Task) []Property {
	props := []Property{
		{Name: "UID", Value: t.UID},
		{Name: "SUMMARY", Value: t.Summary},
	}

	if t.Notes != "" {
		props = append(props, Property{Name: "DESCRIPTION", Value: escapeText(t.Notes)})
	}

	props = append(props,
		Property{Name: "DTSTAMP", Value: t.CreatedAt},
		Property{Name: "LAST-MODIFIED", Value: t.ChangedAt},
	)

	status := "NEEDS-ACTION"
	percent := t.PercentComplete
	if t.Completed {
		status = "COMPLETED"
		if percent < 100 { // Завершенная задача всегда кодируется как 100%
			percent = 100
		}
	}
	props = append(props,
		Property{Name: "STATUS", Value: status},
		Property{Name: "PERCENT-COMPLETE", Value: strconv.Itoa(percent)},
	)

	if t.DueAt != "" {
		props = append(props, Property{Name: "DUE", Params: dateParam(t.DueAt), Value: t.DueAt})
	}
	if t.StartAt != "" {
		props = append(props, Property{Name: "DTSTART", Params: dateParam(t.StartAt), Value: t.StartAt})
	}
	if t.Priority != 0 {
		props = append(props, Property{Name: "PRIORITY", Value: strconv.Itoa(t.Priority)})
	}
	if t.ParentUID != "" {
		props = append(props, Property{Name: "RELATED-TO", Value: t.ParentUID})
	}
	if len(t.Tags) > 0 {
		props = append(props, Property{Name: "CATEGORIES", Value: strings.Join(t.Tags, ",")})
	}
	if t.RecurrenceRule != "" {
		props = append(props, Property{Name: "RRULE", Value: t.RecurrenceRule})
	}

	if t.XProps != nil {
		for _, key := range t.XProps.Keys() {
			value, _ := t.XProps.Get(key)
			name, params := SplitPropName(key)
			props = append(props, Property{Name: name, Params: params, Value: escapeX(value)})
		}
	}
	return props
}

// Encode собирает блок BEGIN:VTODO..END:VTODO, по свойству на строку.
func Encode(t *model.Task) string {
	var b strings.Builder
	b.WriteString("BEGIN:VTODO\n")
	for _, p := range Properties(t) {
		b.WriteString(p.Name)
		b.WriteString(p.Params)
		b.WriteString(":")
		b.WriteString(p.Value)
		b.WriteString("\n")
	}
	b.WriteString("END:VTODO\n")
	return b.String()
}

// Decode разбирает VTODO в задачу. Обертка VCALENDAR, если есть,
// отбрасывается; неизвестные не-X свойства молча игнорируются.
func Decode(text, listUID string) (*model.Task, error) {
	body, err := isolate(text)
	if err != nil {
		return nil, err
	}

	t := &model.Task{ListUID: listUID, XProps: model.NewXProps()}

	for _, line := range Unfold(body) {
		name, params, value, ok := splitLine(line)
		if !ok {
			continue
		}

		switch strings.ToUpper(name) {
		case "UID":
			t.UID = value
		case "SUMMARY":
			t.Summary = value
		case "DESCRIPTION":
			t.Notes = unescapeText(value)
		case "DTSTAMP":
			t.CreatedAt = value
		case "LAST-MODIFIED":
			t.ChangedAt = value
		case "STATUS":
			t.Completed = value == "COMPLETED"
		case "PERCENT-COMPLETE":
			t.PercentComplete = parsePercent(value)
		case "DUE":
			t.DueAt = value
		case "DTSTART":
			t.StartAt = value
		case "PRIORITY":
			t.Priority = parseInt(value)
		case "RELATED-TO":
			t.ParentUID = value
		case "CATEGORIES":
			t.Tags = splitTags(value)
		case "RRULE":
			t.RecurrenceRule = value
		default:
			if strings.HasPrefix(strings.ToUpper(name), "X-") {
				// Храним с оригинальным регистром и параметрами
				t.XProps.Set(name+params, unescapeX(value))
			}
		}
	}

	if t.UID == "" {
		// UID пришлось сгенерировать, значит серверного соответствия нет
		t.UID = uuid.NewString()
		t.Synced = false
	} else {
		t.Synced = true
	}
	if t.ChangedAt == "" && t.CreatedAt != "" {
		t.ChangedAt = t.CreatedAt
	}
	return t, nil
}

// isolate вырезает содержимое между BEGIN:VTODO и END:VTODO.
func isolate(text string) (string, error) {
	start := strings.Index(text, "BEGIN:VTODO")
	if start < 0 {
		return "", fmt.Errorf("%w: missing BEGIN:VTODO", ErrNoVTODO)
	}
	end := strings.Index(text, "END:VTODO")
	if end < 0 || end < start {
		return "", fmt.Errorf("%w: missing END:VTODO", ErrNoVTODO)
	}
	return text[start:end], nil
}

// Unfold разворачивает перенос строк по RFC 5545 3.1: строка, начинающаяся
// с пробела или таба, продолжает предыдущую (один ведущий символ снимается).
func Unfold(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if len(out) > 0 {
				out[len(out)-1] += line[1:]
			}
			continue
		}
		out = append(out, line)
	}
	return out
}

// SplitPropName отделяет имя свойства от суффикса параметров:
// "X-APPLE-SORT-ORDER;FOO=BAR" -> ("X-APPLE-SORT-ORDER", ";FOO=BAR").
func SplitPropName(key string) (name, params string) {
	if i := strings.Index(key, ";"); i >= 0 {
		return key[:i], key[i:]
	}
	return key, ""
}

func splitLine(line string) (name, params, value string, ok bool) {
	rest, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", "", false
	}
	name, params = SplitPropName(rest)
	return name, params, value, true
}

// dateParam добавляет VALUE=DATE для значений без компоненты времени.
func dateParam(value string) string {
	if !strings.Contains(value, "T") {
		return ";VALUE=DATE"
	}
	return ""
}

func parsePercent(value string) int {
	// Некоторые серверы присылают проценты как float
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func parseInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func splitTags(value string) []string {
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	return strings.ReplaceAll(s, ",", "\\,")
}

func unescapeText(s string) string {
	s = strings.ReplaceAll(s, "\\n", "\n")
	return strings.ReplaceAll(s, "\\,", ",")
}

func escapeX(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, ",", "\\,")
	return strings.ReplaceAll(s, ";", "\\;")
}

func unescapeX(s string) string {
	s = strings.ReplaceAll(s, "\\n", "\n")
	s = strings.ReplaceAll(s, "\\,", ",")
	return strings.ReplaceAll(s, "\\;", ";")
}
