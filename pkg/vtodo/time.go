package vtodo

import (
	"fmt"
	"time"
)

// timeLayouts - форматы временных меток, встречающиеся в wire-данных.
var timeLayouts = []string{
	"20060102T150405Z", // UTC дата-время
	"20060102T150405",  // локальное дата-время
	"20060102",         // только дата
}

// ParseTime разбирает wire-метку (DTSTAMP/LAST-MODIFIED/DUE/DTSTART)
// в time.Time. Значения без зоны трактуются как UTC.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
