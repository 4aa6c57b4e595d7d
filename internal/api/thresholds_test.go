package api

import (
	"net/http"
	"testing"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/relay"
	"github.com/Vinyl-Lilith/GreenGiant/internal/thresholds"
)

func TestGetThresholdsDefaults(t *testing.T) {
	f := newTestServer(t, nil)
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodGet, "/api/v1/thresholds", token, nil)
	wantStatus(t, resp, http.StatusOK)

	var body thresholdsResponse
	decodeBody(t, resp, &body)

	defaults := thresholds.Defaults()
	if body.Thresholds.TempMin != defaults.TempMin || body.Thresholds.TempMax != defaults.TempMax {
		t.Errorf("temp range = [%v, %v], want [%v, %v]",
			body.Thresholds.TempMin, body.Thresholds.TempMax, defaults.TempMin, defaults.TempMax)
	}
	if body.Synced {
		t.Error("fresh install reports synced, want unsynced")
	}
}

func TestPatchThresholds(t *testing.T) {
	f := newTestServer(t, nil)
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{
		"temp_min": 20,
		"temp_max": 28,
	})
	wantStatus(t, resp, http.StatusOK)

	var body thresholdsResponse
	decodeBody(t, resp, &body)

	if body.Thresholds.TempMin != 20 || body.Thresholds.TempMax != 28 {
		t.Errorf("temp range = [%v, %v], want [20, 28]", body.Thresholds.TempMin, body.Thresholds.TempMax)
	}
	if !body.Synced {
		t.Error("synced = false, want true with relay up")
	}
	if body.SyncError != "" {
		t.Errorf("sync_error = %q, want empty", body.SyncError)
	}
	if body.Thresholds.LastUpdatedBy != user.ID {
		t.Errorf("last_updated_by = %q, want actor id %q", body.Thresholds.LastUpdatedBy, user.ID)
	}

	// The full set, not the delta, went to the relay.
	if len(f.relay.synced) != 1 {
		t.Fatalf("relay sync calls = %d, want 1", len(f.relay.synced))
	}
	if f.relay.synced[0].TempMin != 20 {
		t.Errorf("relayed temp_min = %v, want 20", f.relay.synced[0].TempMin)
	}

	// One broadcast went out.
	if got := f.rec.ByTopic(bus.TopicThresholdUpdate); len(got) != 1 {
		t.Errorf("threshold_update broadcasts = %d, want 1", len(got))
	}
}

func TestPatchThresholdsRelayDown(t *testing.T) {
	f := newTestServer(t, nil)
	f.relay.err = relay.ErrUnavailable
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{
		"humidity_min": 50,
	})

	// Durable write succeeded, so the request succeeds; the response carries
	// the sync failure kind instead.
	wantStatus(t, resp, http.StatusOK)

	var body thresholdsResponse
	decodeBody(t, resp, &body)
	if body.Synced {
		t.Error("synced = true, want false with relay down")
	}
	if body.SyncError != ErrCodeRelayUnavailable {
		t.Errorf("sync_error = %q, want %q", body.SyncError, ErrCodeRelayUnavailable)
	}
	if body.Thresholds.HumidityMin != 50 {
		t.Errorf("humidity_min = %v, want 50 despite sync failure", body.Thresholds.HumidityMin)
	}

	// The update is still announced to live viewers.
	if got := f.rec.ByTopic(bus.TopicThresholdUpdate); len(got) != 1 {
		t.Errorf("threshold_update broadcasts = %d, want 1", len(got))
	}
}

func TestPatchThresholdsRelayTimeout(t *testing.T) {
	f := newTestServer(t, nil)
	f.relay.err = relay.ErrTimeout
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{
		"light_min": 300,
	})
	wantStatus(t, resp, http.StatusOK)

	var body thresholdsResponse
	decodeBody(t, resp, &body)
	if body.SyncError != ErrCodeRelayTimeout {
		t.Errorf("sync_error = %q, want %q", body.SyncError, ErrCodeRelayTimeout)
	}
}

func TestPatchThresholdsUnknownField(t *testing.T) {
	f := newTestServer(t, nil)
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{
		"co2_max": 1200,
	})
	wantErrorCode(t, resp, http.StatusUnprocessableEntity, ErrCodeValidation)

	if len(f.relay.synced) != 0 {
		t.Errorf("relay sync calls = %d, want 0 after rejected patch", len(f.relay.synced))
	}
}

func TestPatchThresholdsEmptyBody(t *testing.T) {
	f := newTestServer(t, nil)
	user := f.seedUser(t, "alice", auth.RoleUser, auth.StatusActive)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{})
	wantErrorCode(t, resp, http.StatusBadRequest, ErrCodeValidation)
}

func TestPatchThresholdsRestricted(t *testing.T) {
	f := newTestServer(t, nil)
	user := f.seedUser(t, "carol", auth.RoleUser, auth.StatusRestricted)
	token := f.token(t, user)

	resp := f.request(t, http.MethodPatch, "/api/v1/thresholds", token, map[string]float64{
		"temp_min": 22,
	})
	wantErrorCode(t, resp, http.StatusForbidden, ErrCodeForbidden)

	// Restricted accounts can still read.
	read := f.request(t, http.MethodGet, "/api/v1/thresholds", token, nil)
	wantStatus(t, read, http.StatusOK)
}
