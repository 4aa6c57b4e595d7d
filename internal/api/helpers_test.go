package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/activity"
	"github.com/Vinyl-Lilith/GreenGiant/internal/alert"
	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus/bustest"
	"github.com/Vinyl-Lilith/GreenGiant/internal/control"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/config"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/database"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
	"github.com/Vinyl-Lilith/GreenGiant/internal/ingest"
	"github.com/Vinyl-Lilith/GreenGiant/internal/presence"
	"github.com/Vinyl-Lilith/GreenGiant/internal/report"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"

	_ "github.com/Vinyl-Lilith/GreenGiant/migrations"
)

const (
	testJWTSecret = "api-test-secret-with-32-characters!!"
	testDeviceKey = "device-test-key"
	testPassword  = "test-password"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

// fakeRelay implements control.DeviceRelay. A nil err means every relay call
// succeeds; otherwise every call fails with err.
type fakeRelay struct {
	err      error
	commands []control.Command
	synced   []thresholds.Set
	resumed  int
}

func (f *fakeRelay) SendCommand(_ context.Context, actuator string, state bool, pwm *int) error {
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, control.Command{Actuator: actuator, State: state, Pwm: pwm})
	return nil
}

func (f *fakeRelay) SyncThresholds(_ context.Context, set thresholds.Set) error {
	if f.err != nil {
		return f.err
	}
	f.synced = append(f.synced, set)
	return nil
}

func (f *fakeRelay) ResumeAuto(_ context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.resumed++
	return nil
}

// testServer bundles the API server with the collaborators tests poke at.
type testServer struct {
	srv      *Server
	ts       *httptest.Server
	rec      *bustest.Recorder
	relay    *fakeRelay
	users    auth.UserRepository
	presence *presence.Registry
	activity activity.Repository
	alerts   alert.Repository
	ingest   *ingest.Service
}

// newTestServer builds a fully wired server over a migrated temp database.
// The broadcast bus is a recorder unless b is non-nil (WebSocket tests pass
// the real hub).
func newTestServer(t *testing.T, b bus.Bus) *testServer {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "api-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	logger := testLogger()
	rec := bustest.NewRecorder()

	var liveBus bus.Bus = rec
	if b != nil {
		liveBus = b
	}

	users := auth.NewUserRepository(db.DB)
	verifier := auth.NewVerifier(users, testJWTSecret)
	reg := presence.NewRegistry(liveBus, users, logger)

	store := thresholds.NewStore(thresholds.NewRepository(db.DB), logger)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("loading thresholds: %v", err)
	}

	actRepo := activity.NewRepository(db.DB)
	alertRepo := alert.NewRepository(db.DB)
	readings := ingest.NewReadingRepository(db.DB)
	events := ingest.NewEventRepository(db.DB)
	status := ingest.NewStatusRepository(db.DB)

	relay := &fakeRelay{}
	orch := control.NewOrchestrator(store, relay, liveBus, actRepo, logger)
	svc := ingest.NewService(readings, events, status, alertRepo, liveBus, nil, logger)
	reports := report.NewGenerator(actRepo, readings)

	var hub *Hub
	if h, ok := liveBus.(*Hub); ok {
		hub = h
	}

	srv, err := New(Deps{
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
			WriteTimeout:   5,
		},
		Security: config.SecurityConfig{
			JWT:       config.JWTConfig{Secret: testJWTSecret, AccessTokenTTL: 60},
			DeviceKey: testDeviceKey,
		},
		Logger:       logger,
		Verifier:     verifier,
		Users:        users,
		Presence:     reg,
		Thresholds:   store,
		Orchestrator: orch,
		Ingest:       svc,
		Activity:     actRepo,
		Alerts:       alertRepo,
		Readings:     readings,
		Status:       status,
		Reports:      reports,
		Bus:          liveBus,
		Hub:          hub,
		Version:      "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	return &testServer{
		srv:      srv,
		ts:       ts,
		rec:      rec,
		relay:    relay,
		users:    users,
		presence: reg,
		activity: actRepo,
		alerts:   alertRepo,
		ingest:   svc,
	}
}

// seedUser creates an account and returns it.
func (f *testServer) seedUser(t *testing.T, username string, role auth.Role, status auth.Status) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &auth.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return user
}

// token mints a session JWT for the user.
func (f *testServer) token(t *testing.T, user *auth.User) string {
	t.Helper()

	signed, err := auth.GenerateAccessToken(user, testJWTSecret, 60)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return signed
}

// request performs an HTTP request against the test server. A non-empty token
// is sent as a bearer credential; body is JSON-encoded when non-nil.
func (f *testServer) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// deviceRequest performs a device-endpoint request with the given API key.
func (f *testServer) deviceRequest(t *testing.T, path, key string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, f.ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// decodeBody decodes a JSON response body into v.
func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// wantStatus fails the test unless the response carries the expected status.
func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

// wantErrorCode asserts the response carries the expected status and stable
// error kind.
func wantErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	wantStatus(t, resp, status)

	var apiErr Error
	decodeBody(t, resp, &apiErr)
	if apiErr.Code != code {
		t.Fatalf("error code = %q, want %q", apiErr.Code, code)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

// userPath builds a /users/{id} sub-path.
func userPath(id, suffix string) string {
	if suffix == "" {
		return fmt.Sprintf("/api/v1/users/%s", id)
	}
	return fmt.Sprintf("/api/v1/users/%s/%s", id, suffix)
}
