package store

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options - параметры подключения к CalDAV-серверу.
type Options struct {
	Endpoint string
	Username string
	Password string
	// Nextcloud включает дополнение URL суффиксом remote.php/dav.
	Nextcloud bool
	// Insecure отключает проверку TLS-сертификата (самоподписанные серверы).
	Insecure bool
}

// CalDAV - адаптер хранилища поверх emersion/go-webdav.
type CalDAV struct {
	client  *caldav.Client
	logger  *zap.Logger
	homeSet string
}

var _ Store = (*CalDAV)(nil)

// Connect устанавливает соединение и находит calendar-home-set принципала.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*CalDAV, error) {
	endpoint := NormalizeEndpoint(opts.Endpoint, opts.Nextcloud)
	if endpoint != opts.Endpoint {
		logger.Debug("endpoint normalized",
			zap.String("original", opts.Endpoint), zap.String("endpoint", endpoint))
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if opts.Insecure {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := caldav.NewClient(
		webdav.HTTPClientWithBasicAuth(httpClient, opts.Username, opts.Password),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set: %w", err)
	}
	logger.Info("connected to caldav server",
		zap.String("principal", principal), zap.String("home_set", homeSet))

	return &CalDAV{client: client, logger: logger, homeSet: homeSet}, nil
}

type davCollection struct {
	cal caldav.Calendar
}

func (c *davCollection) UID() string  { return c.cal.Path }
func (c *davCollection) Name() string { return c.cal.Name }

func (c *davCollection) SupportsTasks() bool {
	if len(c.cal.SupportedComponentSet) == 0 {
		return true // сервер не сообщил набор компонентов, считаем что можно
	}
	for _, comp := range c.cal.SupportedComponentSet {
		if comp == ical.CompToDo {
			return true
		}
	}
	return false
}

type davItem struct {
	path string
	data *ical.Calendar
	todo *ical.Component
}

func (i *davItem) UID() string {
	if i.todo == nil {
		return ""
	}
	if p := i.todo.Props.Get(ical.PropUID); p != nil {
		return p.Value
	}
	return ""
}

// Body возвращает сериализованный объект целиком (с оберткой VCALENDAR);
// кодек сам вырезает из него блок VTODO.
func (i *davItem) Body() string {
	var b strings.Builder
	if err := ical.NewEncoder(&b).Encode(i.data); err != nil {
		return ""
	}
	return b.String()
}

func (c *CalDAV) Collections(ctx context.Context) ([]Collection, error) {
	cals, err := c.client.FindCalendars(ctx, c.homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}
	cols := make([]Collection, 0, len(cals))
	for _, cal := range cals {
		cols = append(cols, &davCollection{cal: cal})
	}
	c.logger.Debug("fetched collections", zap.Int("count", len(cols)))
	return cols, nil
}

// todoQuery запрашивает только VTODO-компоненты коллекции.
var todoQuery = caldav.CalendarQuery{
	CompRequest: caldav.CalendarCompRequest{
		Name:     ical.CompCalendar,
		AllProps: true,
		AllComps: true,
	},
	CompFilter: caldav.CompFilter{
		Name:  ical.CompCalendar,
		Comps: []caldav.CompFilter{{Name: ical.CompToDo}},
	},
}

func (c *CalDAV) Items(ctx context.Context, col Collection, includeCompleted bool) ([]Item, error) {
	dc, err := asCollection(col)
	if err != nil {
		return nil, err
	}

	query := todoQuery
	objs, err := c.client.QueryCalendar(ctx, dc.cal.Path, &query)
	if err != nil {
		return nil, fmt.Errorf("query calendar %s: %w", dc.cal.Path, err)
	}

	items := make([]Item, 0, len(objs))
	for _, obj := range objs {
		item := newDavItem(obj)
		if item.todo == nil {
			continue // не VTODO, сервер проигнорировал фильтр
		}
		if !includeCompleted && isCompleted(item.todo) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *CalDAV) CreateItem(ctx context.Context, col Collection, body string) (Item, error) {
	dc, err := asCollection(col)
	if err != nil {
		return nil, err
	}
	cal, err := parseBody(body)
	if err != nil {
		return nil, err
	}

	uid := uuid.NewString()
	if todo := findTodo(cal); todo != nil {
		if p := todo.Props.Get(ical.PropUID); p != nil && p.Value != "" {
			uid = p.Value
		}
	}
	path := strings.TrimSuffix(dc.cal.Path, "/") + "/" + uid + ".ics"

	if _, err := c.client.PutCalendarObject(ctx, path, cal); err != nil {
		return nil, fmt.Errorf("put %s: %w", path, err)
	}

	// Перечитываем, чтобы получить авторитетное серверное представление
	obj, err := c.client.GetCalendarObject(ctx, path)
	if err != nil {
		c.logger.Warn("re-read after create failed, using local body",
			zap.String("path", path), zap.Error(err))
		return &davItem{path: path, data: cal, todo: findTodo(cal)}, nil
	}
	return newDavItem(*obj), nil
}

func (c *CalDAV) ItemByUID(ctx context.Context, col Collection, uid string) (Item, error) {
	dc, err := asCollection(col)
	if err != nil {
		return nil, err
	}

	query := todoQuery
	query.CompFilter = caldav.CompFilter{
		Name: ical.CompCalendar,
		Comps: []caldav.CompFilter{{
			Name: ical.CompToDo,
			Props: []caldav.PropFilter{{
				Name:      ical.PropUID,
				TextMatch: &caldav.TextMatch{Text: uid},
			}},
		}},
	}

	objs, err := c.client.QueryCalendar(ctx, dc.cal.Path, &query)
	if err != nil {
		return nil, fmt.Errorf("query %s by uid: %w", dc.cal.Path, err)
	}
	for _, obj := range objs {
		item := newDavItem(obj)
		if item.UID() == uid {
			return item, nil
		}
	}
	return nil, fmt.Errorf("item %q in %s: %w", uid, dc.cal.Path, ErrNotFound)
}

func (c *CalDAV) Save(ctx context.Context, item Item) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if _, err := c.client.PutCalendarObject(ctx, it.path, it.data); err != nil {
		return fmt.Errorf("put %s: %w", it.path, err)
	}
	return nil
}

func (c *CalDAV) Delete(ctx context.Context, item Item) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if err := c.client.RemoveAll(ctx, it.path); err != nil {
		return fmt.Errorf("delete %s: %w", it.path, err)
	}
	return nil
}

// SetProperty меняет свойство VTODO в памяти. Имя может содержать суффикс
// параметров ("DUE;VALUE=DATE"), он разбирается в параметры свойства.
func (c *CalDAV) SetProperty(item Item, name, value string) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if it.todo == nil {
		return fmt.Errorf("item %s has no VTODO component: %w", it.path, ErrNotFound)
	}

	propName, params := splitParams(name)
	prop := ical.NewProp(propName)
	prop.Value = value
	for key, val := range params {
		prop.Params.Set(key, val)
	}
	it.todo.Props.Set(prop)
	return nil
}

func (c *CalDAV) RemoveProperty(item Item, name string) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if it.todo == nil {
		return fmt.Errorf("item %s has no VTODO component: %w", it.path, ErrNotFound)
	}
	propName, _ := splitParams(name)
	it.todo.Props.Del(propName)
	return nil
}

// ReplaceBody замещает весь объект свежеразобранным телом (tier-2 обновления).
func (c *CalDAV) ReplaceBody(item Item, body string) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	cal, err := parseBody(body)
	if err != nil {
		return err
	}
	it.data = cal
	it.todo = findTodo(cal)
	return nil
}

func (c *CalDAV) Complete(ctx context.Context, item Item) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if it.todo == nil {
		return fmt.Errorf("item %s has no VTODO component: %w", it.path, ErrNotFound)
	}
	it.todo.Props.SetText(ical.PropStatus, "COMPLETED")
	it.todo.Props.SetText(ical.PropPercentComplete, "100")
	it.todo.Props.SetText(ical.PropCompleted, time.Now().UTC().Format("20060102T150405Z"))
	return c.Save(ctx, item)
}

func (c *CalDAV) Uncomplete(ctx context.Context, item Item) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	if it.todo == nil {
		return fmt.Errorf("item %s has no VTODO component: %w", it.path, ErrNotFound)
	}
	it.todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")
	it.todo.Props.Del(ical.PropCompleted)
	it.todo.Props.SetText(ical.PropPercentComplete, "0")
	return c.Save(ctx, item)
}

// UpdateSummary - минимальный примитив обновления: перечитывает объект
// и меняет в нем только SUMMARY, не трогая остальные свойства.
func (c *CalDAV) UpdateSummary(ctx context.Context, item Item, summary string) error {
	it, err := asItem(item)
	if err != nil {
		return err
	}
	obj, err := c.client.GetCalendarObject(ctx, it.path)
	if err != nil {
		return fmt.Errorf("get %s: %w", it.path, err)
	}
	todo := findTodo(obj.Data)
	if todo == nil {
		return fmt.Errorf("item %s has no VTODO component: %w", it.path, ErrNotFound)
	}
	todo.Props.SetText(ical.PropSummary, summary)
	if _, err := c.client.PutCalendarObject(ctx, it.path, obj.Data); err != nil {
		return fmt.Errorf("put %s: %w", it.path, err)
	}
	return nil
}

func newDavItem(obj caldav.CalendarObject) *davItem {
	return &davItem{path: obj.Path, data: obj.Data, todo: findTodo(obj.Data)}
}

func findTodo(cal *ical.Calendar) *ical.Component {
	if cal == nil {
		return nil
	}
	for _, child := range cal.Children {
		if child.Name == ical.CompToDo {
			return child
		}
	}
	return nil
}

func isCompleted(todo *ical.Component) bool {
	p := todo.Props.Get(ical.PropStatus)
	return p != nil && p.Value == "COMPLETED"
}

// parseBody разбирает тело объекта, при необходимости добавляя обертку
// VCALENDAR, которую требует формат на проводе.
func parseBody(body string) (*ical.Calendar, error) {
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		body = "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//tasksdav//tasksdav//EN\n" +
			body + "END:VCALENDAR\n"
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")

	cal, err := ical.NewDecoder(strings.NewReader(body)).Decode()
	if err != nil {
		return nil, fmt.Errorf("parse item body: %w", err)
	}
	return cal, nil
}

// splitParams разбирает "DUE;VALUE=DATE" в имя и параметры.
func splitParams(name string) (string, map[string]string) {
	parts := strings.Split(name, ";")
	if len(parts) == 1 {
		return name, nil
	}
	params := make(map[string]string)
	for _, part := range parts[1:] {
		if key, value, ok := strings.Cut(part, "="); ok {
			params[key] = value
		}
	}
	return parts[0], params
}

func asCollection(col Collection) (*davCollection, error) {
	dc, ok := col.(*davCollection)
	if !ok {
		return nil, fmt.Errorf("%w: collection does not belong to this store", ErrConfiguration)
	}
	return dc, nil
}

func asItem(item Item) (*davItem, error) {
	it, ok := item.(*davItem)
	if !ok {
		return nil, fmt.Errorf("%w: item does not belong to this store", ErrConfiguration)
	}
	return it, nil
}
