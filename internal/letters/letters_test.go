package letters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ashaRequest = DraftRequest{Name: "Asha Rao", College: "REC", CertificateType: "Bonafide Certificate"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *AzureClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewAzureClient(AzureConfig{
		Endpoint:    srv.URL + "/",
		APIKey:      "k",
		Deployment:  "letter-generator",
		APIVersion:  "2024-02-15-preview",
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	c.delay = time.Millisecond
	return c
}

func TestAzureClientDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/letter-generator/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-15-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "k", r.Header.Get("api-key"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1000, req.MaxTokens)
		assert.Equal(t, 0.3, req.Temperature)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[1].Content, "Student Name: Asha Rao")
		}

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Dear Sir, ..."}}]}`))
	})

	letter, err := c.Draft(context.Background(), ashaRequest)
	require.NoError(t, err)
	assert.Equal(t, "Dear Sir, ...", letter)
}

func TestAzureClientRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	letter, err := c.Draft(context.Background(), ashaRequest)
	require.NoError(t, err)
	assert.Equal(t, "ok", letter)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAzureClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Access denied","code":"401"}}`))
	})

	_, err := c.Draft(context.Background(), ashaRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAzureClientRejectsEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Draft(context.Background(), ashaRequest)
	assert.Error(t, err)
}

func TestNewAzureClientRequiresSettings(t *testing.T) {
	_, err := NewAzureClient(AzureConfig{Endpoint: "https://x"})
	assert.Error(t, err)
	_, err = NewAzureClient(AzureConfig{Endpoint: "https://x", Deployment: "d"})
	assert.Error(t, err)
}

func TestTemplateDrafter(t *testing.T) {
	d := NewTemplateDrafter()
	d.now = func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) }

	letter, err := d.Draft(context.Background(), ashaRequest)
	require.NoError(t, err)
	assert.Contains(t, letter, "March 4, 2025")
	assert.Contains(t, letter, "Asha Rao is a bonafide student of REC")
	assert.Contains(t, letter, "Bonafide Certificate")

	_, err = d.Draft(context.Background(), DraftRequest{Name: "Asha"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestGenerateHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewTemplateDrafter(), nil).RegisterRoutes(r.Group("/api"))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/generate-letter", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"name":"Asha Rao","college":"REC","certificateType":"Study Certificate"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out["letter"], "Study Certificate")

	w = post(`{"name":"Asha Rao"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
