// Package store описывает границу с CalDAV-хранилищем и содержит
// единственный рабочий адаптер поверх emersion/go-webdav.
package store

import (
	"context"
	"errors"
)

// Таксономия ошибок ядра, проверяется через errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrReadOnly      = errors.New("session is read-only")
	ErrTransport     = errors.New("transport error")
	ErrDecode        = errors.New("decode error")
)

// Collection - серверная коллекция задач (календарь).
type Collection interface {
	UID() string
	Name() string
	SupportsTasks() bool
}

// Item - один серверный объект с сырым текстовым телом.
type Item interface {
	UID() string
	Body() string
}

// Store определяет интерфейс взаимодействия с календарным хранилищем.
// SetProperty/RemoveProperty/ReplaceBody меняют объект только в памяти,
// на сервер изменения уходят при Save.
type Store interface {
	Collections(ctx context.Context) ([]Collection, error)
	Items(ctx context.Context, col Collection, includeCompleted bool) ([]Item, error)
	CreateItem(ctx context.Context, col Collection, body string) (Item, error)
	ItemByUID(ctx context.Context, col Collection, uid string) (Item, error)
	Save(ctx context.Context, item Item) error
	Delete(ctx context.Context, item Item) error
	SetProperty(item Item, name, value string) error
	RemoveProperty(item Item, name string) error
	ReplaceBody(item Item, body string) error
	Complete(ctx context.Context, item Item) error
	Uncomplete(ctx context.Context, item Item) error
	UpdateSummary(ctx context.Context, item Item, summary string) error
}
