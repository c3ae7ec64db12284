package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/odintsov/tasksdav/pkg/model"
	"github.com/odintsov/tasksdav/pkg/store"
)

func purgeFixture() (*model.TaskList, *fakeCollection) {
	old := time.Now().UTC().Add(-30 * 24 * time.Hour).Format(model.TimeLayout)
	fresh := time.Now().UTC().Format(model.TimeLayout)

	list := &model.TaskList{UID: "/cal/work/", Name: "Work", Tasks: []*model.Task{
		{UID: "old-done", Summary: "old done", Completed: true, ChangedAt: old, ListUID: "/cal/work/"},
		{UID: "fresh-done", Summary: "fresh done", Completed: true, ChangedAt: fresh, ListUID: "/cal/work/"},
		{UID: "old-open", Summary: "old open", Completed: false, ChangedAt: old, ListUID: "/cal/work/"},
		{UID: "bad-stamp", Summary: "bad stamp", Completed: true, ChangedAt: "garbage", ListUID: "/cal/work/"},
	}}
	return list, &fakeCollection{uid: "/cal/work/", name: "Work", tasks: true}
}

func TestService_PurgeCompleted(t *testing.T) {
	list, col := purgeFixture()

	st := new(MockStore)
	item := &fakeItem{uid: "old-done"}
	st.On("ItemByUID", mock.Anything, col, "old-done").Return(item, nil)
	st.On("Delete", mock.Anything, item).Return(nil)

	svc := newTestService(st, Options{})
	svc.cols = []store.Collection{col}
	svc.lists = []*model.TaskList{list}

	purged, err := svc.PurgeCompleted(context.Background(), "/cal/work/", 7*24*time.Hour, false)
	require.NoError(t, err)

	require.Len(t, purged, 1, "only old completed tasks with valid timestamps are purged")
	assert.Equal(t, "old-done", purged[0].UID)
	st.AssertExpectations(t)
}

func TestService_PurgeCompleted_DryRun(t *testing.T) {
	list, col := purgeFixture()

	st := new(MockStore)
	svc := newTestService(st, Options{})
	svc.cols = []store.Collection{col}
	svc.lists = []*model.TaskList{list}

	purged, err := svc.PurgeCompleted(context.Background(), "/cal/work/", 7*24*time.Hour, true)
	require.NoError(t, err)

	require.Len(t, purged, 1)
	st.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_PurgeCompleted_UnknownList(t *testing.T) {
	svc := newTestService(new(MockStore), Options{})

	_, err := svc.PurgeCompleted(context.Background(), "/cal/nope/", time.Hour, false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
