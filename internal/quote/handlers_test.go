package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/parking-fee/internal/facility"
)

type quoteEnvelope struct {
	Data Response `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestHandler(t *testing.T, adminToken string) *Handler {
	t.Helper()
	svc := newTestService(t, facility.StaticSource{"Centro": centro(), "Aeroporto": centro()})
	return NewHandler(HandlerConfig{Service: svc, AdminToken: adminToken, Logger: zerolog.Nop()})
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/calcular", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestIndexListsFacilitiesSorted(t *testing.T) {
	handler := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Less(t, strings.Index(body, `value="Aeroporto"`), strings.Index(body, `value="Centro"`))
	require.NotContains(t, body, "Tempo de permanência")
}

func TestCalculateForm(t *testing.T) {
	handler := newTestHandler(t, "")

	t.Run("success", func(t *testing.T) {
		rec := postForm(handler.Calculate, url.Values{"patio": {"Centro"}, "hora_entrada": {"2025-03-10T13:00"}})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "1 hora(s) e 40 minuto(s)")
		require.Contains(t, body, "R$ 18,00")
		require.Contains(t, body, `<option value="Centro" selected>`)
		require.Contains(t, body, `value="2025-03-10T13:00"`)
	})

	t.Run("multi day", func(t *testing.T) {
		rec := postForm(handler.Calculate, url.Values{"patio": {"Centro"}, "hora_entrada": {"2025-03-09T10:00"}})
		require.Contains(t, rec.Body.String(), "1 dia(s), 4 hora(s) e 40 minuto(s)")
		require.Contains(t, rec.Body.String(), "R$ 80,00")
	})

	t.Run("unknown facility", func(t *testing.T) {
		rec := postForm(handler.Calculate, url.Values{"patio": {"Norte"}, "hora_entrada": {"2025-03-10T13:00"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), MsgUnknownFacility)
		require.Contains(t, rec.Body.String(), "R$ 0,00")
	})

	t.Run("entry after now", func(t *testing.T) {
		rec := postForm(handler.Calculate, url.Values{"patio": {"Centro"}, "hora_entrada": {"2025-03-10T15:00"}})
		require.Contains(t, rec.Body.String(), MsgNegativeDuration)
		require.Contains(t, rec.Body.String(), "R$ 0,00")
	})

	t.Run("malformed entry", func(t *testing.T) {
		rec := postForm(handler.Calculate, url.Values{"patio": {"Centro"}, "hora_entrada": {"ontem"}})
		require.Contains(t, rec.Body.String(), MsgInvalidTimestamp)
	})
}

func TestCreateQuote(t *testing.T) {
	handler := newTestHandler(t, "")

	rec := postJSON(handler.Create, `{"facility":"Centro","entry":"2025-03-10T10:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var env quoteEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "Centro", env.Data.Facility)
	require.Equal(t, "33.00", env.Data.Fee)
	require.Equal(t, "33,00", env.Data.FeeFormatted)
	require.InDelta(t, 280, env.Data.DurationMinutes, 1e-9)
	require.Equal(t, "4 hora(s) e 40 minuto(s)", env.Data.DurationFormatted)
	require.Equal(t, "2025-03-10T10:00", env.Data.Entry)
	require.Equal(t, "2025-03-10T14:40", env.Data.Exit)
	require.EqualValues(t, 3, env.Data.Breakdown.Intervals)
	require.NotEmpty(t, env.Data.ID)
}

func TestCreateQuoteErrors(t *testing.T) {
	handler := newTestHandler(t, "")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "malformed json", body: `{"facility":`, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "unknown field", body: `{"facility":"Centro","entry":"2025-03-10T10:00","plate":"ABC"}`, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "missing entry", body: `{"facility":"Centro"}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown facility", body: `{"facility":"Norte","entry":"2025-03-10T10:00"}`, status: http.StatusNotFound, code: "UNKNOWN_FACILITY"},
		{name: "bad timestamp", body: `{"facility":"Centro","entry":"2025-03-10 10:00"}`, status: http.StatusBadRequest, code: "INVALID_TIMESTAMP"},
		{name: "exit before entry", body: `{"facility":"Centro","entry":"2025-03-10T10:00","exit":"2025-03-10T09:00"}`, status: http.StatusBadRequest, code: "NEGATIVE_DURATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(handler.Create, tt.body)
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}

	rec := postJSON(handler.Create, `{"facility":"Centro"}`)
	require.Equal(t, "required", decodeError(t, rec).Error.Details["entry"])
}

func TestFacilitiesEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.Facilities(rec, httptest.NewRequest(http.MethodGet, "/api/v1/facilities", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":["Aeroporto","Centro"]}`, rec.Body.String())
}

func TestReloadEndpoint(t *testing.T) {
	reload := func(h *Handler, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/facilities/reload", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.Reload(rec, req)
		return rec
	}

	require.Equal(t, http.StatusNotFound, reload(newTestHandler(t, ""), "Bearer anything").Code)

	handler := newTestHandler(t, "s3cret")
	require.Equal(t, http.StatusUnauthorized, reload(handler, "").Code)
	require.Equal(t, http.StatusUnauthorized, reload(handler, "Bearer wrong").Code)

	rec := reload(handler, "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data ReloadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 2, env.Data.Facilities)
	require.Equal(t, "static", env.Data.Source)
}
