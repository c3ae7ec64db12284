package model

import "strings"

// XProps хранит расширенные X-свойства задачи с их оригинальными ключами
// (включая суффикс параметров, например "X-APPLE-SORT-ORDER;FOO=BAR").
type XProps struct {
	keys   []string // порядок вставки, чтобы кодирование было детерминированным
	values map[string]string
}

func NewXProps() *XProps {
	return &XProps{values: make(map[string]string)}
}

// Set сохраняет свойство под его оригинальным ключом.
func (x *XProps) Set(key, value string) {
	if _, ok := x.values[key]; !ok {
		x.keys = append(x.keys, key)
	}
	x.values[key] = value
}

// Get возвращает значение по точному ключу, с case-insensitive фолбэком.
func (x *XProps) Get(key string) (string, bool) {
	if v, ok := x.values[key]; ok {
		return v, true
	}
	for _, raw := range x.keys {
		if strings.EqualFold(raw, key) {
			return x.values[raw], true
		}
	}
	return "", false
}

// GetNormalized ищет свойство по нормализованному имени:
// "X-APPLE-SORT-ORDER;FOO=BAR" доступно как "apple_sort_order".
func (x *XProps) GetNormalized(name string) (string, bool) {
	query := strings.ToLower(name)
	for _, raw := range x.keys {
		if normalizeKey(raw) == query {
			return x.values[raw], true
		}
	}
	return "", false
}

func normalizeKey(raw string) string {
	key, _, _ := strings.Cut(raw, ";") // отбрасываем параметры
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, "x-")
	return strings.ReplaceAll(key, "-", "_")
}

// HasExact проверяет наличие точного ключа.
func (x *XProps) HasExact(key string) bool {
	_, ok := x.values[key]
	return ok
}

// HasFold проверяет наличие ключа без учета регистра.
func (x *XProps) HasFold(key string) bool {
	for _, raw := range x.keys {
		if strings.EqualFold(raw, key) {
			return true
		}
	}
	return false
}

// HasNamespaceID проверяет ключи вида X-<NAMESPACE>-<ID>, где сервер мог
// изменить регистр части <ID> (часто это UUID, нормализованный сервером).
func (x *XProps) HasNamespaceID(key string) bool {
	prefix, id, ok := splitNamespaceID(key)
	if !ok {
		return false
	}
	for _, raw := range x.keys {
		rawPrefix, rawID, ok := splitNamespaceID(raw)
		if !ok {
			continue
		}
		if strings.EqualFold(prefix, rawPrefix) && strings.EqualFold(id, rawID) {
			return true
		}
	}
	return false
}

// Contains объединяет все три стратегии поиска.
func (x *XProps) Contains(key string) bool {
	return x.HasExact(key) || x.HasFold(key) || x.HasNamespaceID(key)
}

// splitNamespaceID делит "X-TEST-PROP-uuid" на "X-TEST" и "PROP-uuid".
func splitNamespaceID(key string) (prefix, id string, ok bool) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0] + "-" + parts[1], parts[2], true
}

// Keys возвращает ключи в порядке вставки.
func (x *XProps) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

func (x *XProps) Len() int {
	return len(x.values)
}
