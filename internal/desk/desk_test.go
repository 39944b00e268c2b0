package desk

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app *App
	srv *platformtest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := platformtest.New(t)
	client, err := platform.New(platform.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL
	cfg.Jobs.PollInterval = time.Millisecond

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	app := NewApp(client, &cfg, database, nil, &executil.RecordingExecutor{})
	app.Sessions.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	return &testEnv{app: app, srv: srv}
}
