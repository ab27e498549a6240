package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestsLogsCompletedRequest(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "implicit ok", status: 0, wantLevel: "info"},
		{name: "client error", status: http.StatusForbidden, wantLevel: "info"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := NewRequests(zerolog.New(&buf), func(*http.Request) string { return "203.0.113.9" })

			var sawLogger bool
			handler := chimw.RequestID(mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawLogger = zerolog.Ctx(r.Context()).GetLevel() != zerolog.Disabled
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("ok"))
			})))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))

			require.True(t, sawLogger)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			require.Equal(t, tt.wantLevel, entry["level"])
			require.Equal(t, "GET", entry["method"])
			require.Equal(t, "/projects", entry["path"])
			require.Equal(t, "203.0.113.9", entry["client_ip"])
			require.NotEmpty(t, entry["request_id"])

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			require.EqualValues(t, want, entry["status"])
			require.EqualValues(t, 2, entry["bytes"])
		})
	}
}

func TestSetupLevels(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, New(&bytes.Buffer{}, false).GetLevel())
	require.Equal(t, zerolog.DebugLevel, New(&bytes.Buffer{}, true).GetLevel())
}
