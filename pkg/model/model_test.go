package model_test

import (
	"os"
	"path"
	"testing"

	"tradetracker/pkg/config"
	"tradetracker/pkg/model"
	"tradetracker/pkg/xlog"
)

// Needs a local mysql, set TRACKER_TEST_MYSQL=1 to run.
func TestMain(m *testing.M) {
	if os.Getenv("TRACKER_TEST_MYSQL") == "" {
		os.Exit(0)
	}

	config.Shared = &config.Config{
		IsDebug: true,
	}

	config.Shared.MySQL.Main = config.MySQLServer{
		Host:         "127.0.0.1",
		User:         "tracker",
		Pass:         "localdbtestpwd",
		DB:           "tradetracker",
		Port:         3306,
		MaxOpenConns: 8,
	}

	xlog.Init("test", path.Join(os.TempDir(), "logs/tracker-test.log"), nil)

	model.DBInit()
	os.Exit(m.Run())
}

func TestMigrate(t *testing.T) {
	err := model.Migrate()
	if err != nil {
		t.Fatalf("migrate failed: %s", err)
	}
}
