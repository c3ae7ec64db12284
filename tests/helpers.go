package tests

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/odintsov/tasksdav/pkg/store"
	"github.com/odintsov/tasksdav/pkg/tasks"
)

// LiveEnv - параметры живого CalDAV-сервера для интеграционных тестов.
type LiveEnv struct {
	URL      string
	Username string
	Password string
	ListUID  string
}

// SetupLiveService подключается к реальному серверу из переменных окружения
// TASKSDAV_TEST_*. Если они не заданы, тест пропускается.
func SetupLiveService(t *testing.T) (*tasks.Service, LiveEnv) {
	t.Helper()

	env := LiveEnv{
		URL:      os.Getenv("TASKSDAV_TEST_URL"),
		Username: os.Getenv("TASKSDAV_TEST_USERNAME"),
		Password: os.Getenv("TASKSDAV_TEST_PASSWORD"),
		ListUID:  os.Getenv("TASKSDAV_TEST_LIST"),
	}
	if env.URL == "" || env.Username == "" || env.Password == "" || env.ListUID == "" {
		t.Skip("TASKSDAV_TEST_* environment is not configured, skipping live test")
	}

	logger := zap.NewNop()
	if os.Getenv("TASKSDAV_DEBUG") != "" {
		logger, _ = zap.NewDevelopment()
	}

	ctx := context.Background()
	st, err := store.Connect(ctx, store.Options{
		Endpoint:  env.URL,
		Username:  env.Username,
		Password:  env.Password,
		Nextcloud: os.Getenv("TASKSDAV_TEST_NEXTCLOUD") != "",
		Insecure:  true, // тестовые серверы часто с самоподписанным сертификатом
	}, logger)
	if err != nil {
		t.Fatalf("Failed to connect to test server: %v", err)
	}

	svc := tasks.NewService(st, logger, tasks.Options{
		DefaultListUID:   env.ListUID,
		TargetLists:      []string{env.ListUID},
		IncludeCompleted: true,
	})
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Failed to load remote data: %v", err)
	}
	return svc, env
}
