package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	httpmiddleware "github.com/wolfeidau/commissions/internal/http"
)

func TestRequests(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	var ctxLogger *zerolog.Logger
	handler := httpmiddleware.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger = zerolog.Ctx(r.Context())
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"duplicate partner ID: 1"}`))
		}),
		httpmiddleware.RequestIDMiddleware(),
		httpmiddleware.ClientIPMiddleware(),
		Requests(log),
	)

	r := httptest.NewRequest(http.MethodPost, "/v1/commissions", nil)
	r.Header.Set("X-Real-IP", "192.168.1.100")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.NotNil(t, ctxLogger)
	require.NotEqual(t, zerolog.Disabled, ctxLogger.GetLevel())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http request", entry["message"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, float64(http.StatusUnprocessableEntity), entry["status"])
	require.Equal(t, "192.168.1.100", entry["addr"])
	require.Equal(t, "/v1/commissions", entry["path"])
	require.Equal(t, w.Header().Get(httpmiddleware.RequestIDHeader), entry["request_id"])
}

func TestRequests_defaultStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := Requests(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestSetup(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	require.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}
