package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	return auth.NewService(st, jwtConfig)
}

// testStack is the fully wired server under test.
type testStack struct {
	ts       *httptest.Server
	handler  stdhttp.Handler
	registry *core.Registry
	store    store.Store
	auth     *auth.Service
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *testStack {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(t, st, "test-secret")

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zerolog.New(nil)

	registry := core.NewRegistry()
	broadcaster := core.NewBroadcaster(Deliver, &logger)
	coordinator := core.NewCoordinator(registry, st, broadcaster, &logger)

	server := NewServer(coordinator, registry, authService, st, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testStack{
		ts:       ts,
		handler:  server.Handler,
		registry: registry,
		store:    st,
		auth:     authService,
	}
}
