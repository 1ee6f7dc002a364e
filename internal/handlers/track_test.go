package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paraisocambury/checkout-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTrackingRouter(st TrackingStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterTrackingRoutes(r, st, testLogger())
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackEvent_PersistsAndReturnsIDs(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/track-checkout-event", map[string]any{
		"session_id": "sess-1",
		"event_type": "form_submitted",
		"user_email": "donor@example.com",
		"metadata":   map[string]any{"time_since_load": 1234},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrackEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.NotEmpty(t, resp.EventID)

	require.Len(t, st.events, 1)
	assert.Equal(t, "form_submitted", st.events[0].EventType)
	assert.Equal(t, "donor@example.com", st.events[0].UserEmail)
}

func TestTrackEvent_GeneratesSessionIDWhenOmitted(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/track-checkout-event", map[string]any{
		"event_type": "page_loaded",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrackEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)

	require.Len(t, st.events, 1)
	assert.Equal(t, resp.SessionID, st.events[0].SessionID)
}

func TestTrackEvent_MissingEventTypeRejectedAndNothingPersisted(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/track-checkout-event", map[string]any{
		"session_id": "sess-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "event_type")
	assert.Empty(t, st.events)
}

func TestTrackEvent_InsertFailureReturns500(t *testing.T) {
	st := &fakeStore{failInserts: true}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/track-checkout-event", map[string]any{
		"event_type": "page_loaded",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestTrackEvent_DuplicatesAcceptedAsSeparateRows(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	payload := map[string]any{"session_id": "sess-1", "event_type": "checkout_started"}
	require.Equal(t, http.StatusOK, postJSON(t, r, "/track-checkout-event", payload).Code)
	require.Equal(t, http.StatusOK, postJSON(t, r, "/track-checkout-event", payload).Code)

	assert.Len(t, st.events, 2)
}

func TestLogPayment_RequiresNameEmailMethod(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/log-payment", map[string]any{"name": "Ana", "email": "ana@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.logs)
}

func TestLogPayment_InsertsWithAceitouTrue(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	w := postJSON(t, r, "/log-payment", map[string]any{
		"name":           "Ana",
		"email":          "ana@example.com",
		"telefone":       "11999990000",
		"payment_method": "à vista",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LogPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)

	require.Len(t, st.logs, 1)
	assert.True(t, st.logs[0].Aceitou)
	assert.Nil(t, st.logs[0].PagouPix)
}

func TestLogPayment_PixConfirmationUpdatesNewestMatchingRow(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	first := map[string]any{"name": "Ana", "email": "ana@example.com", "payment_method": "PIX"}
	require.Equal(t, http.StatusOK, postJSON(t, r, "/log-payment", first).Code)

	confirm := map[string]any{"name": "Ana", "email": "ana@example.com", "payment_method": "PIX", "pagou_pix": true}
	w := postJSON(t, r, "/log-payment", confirm)
	require.Equal(t, http.StatusOK, w.Code)

	// The confirmation updated the existing row instead of adding one.
	require.Len(t, st.logs, 1)
	require.NotNil(t, st.logs[0].PagouPix)
	assert.True(t, *st.logs[0].PagouPix)
	assert.Len(t, st.confirmed, 1)
}

func TestLogPayment_PixConfirmationWithoutPriorRowInsertsFresh(t *testing.T) {
	st := &fakeStore{}
	r := newTrackingRouter(st)

	confirm := map[string]any{"name": "Bia", "email": "bia@example.com", "payment_method": "PIX", "pagou_pix": true}
	w := postJSON(t, r, "/log-payment", confirm)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, st.logs, 1)
	require.NotNil(t, st.logs[0].PagouPix)
	assert.True(t, *st.logs[0].PagouPix)
}
