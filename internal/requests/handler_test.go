package requests

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smart-certify/certify-backend/internal/certificates"
	"smart-certify/certify-backend/pkg/workflows"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Submit(ctx context.Context, in SubmitInput) (*CertificateRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CertificateRequest), args.Error(1)
}

func (m *MockService) StatusByStudent(ctx context.Context, studentName string) ([]CertificateRequest, error) {
	args := m.Called(ctx, studentName)
	return args.Get(0).([]CertificateRequest), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context) ([]CertificateRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]CertificateRequest), args.Error(1)
}

func (m *MockService) Approve(ctx context.Context, id uint, approvedBy string) (*CertificateRequest, error) {
	args := m.Called(ctx, id, approvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CertificateRequest), args.Error(1)
}

func (m *MockService) Reject(ctx context.Context, id uint, rejectedBy string) (*CertificateRequest, error) {
	args := m.Called(ctx, id, rejectedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CertificateRequest), args.Error(1)
}

func (m *MockService) Export(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("PK"))
	}
	return args.Error(0)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group("/api"))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSubmitHandler(t *testing.T) {
	svc := new(MockService)
	in := SubmitInput{StudentName: "Asha Rao", College: "REC", CertificateType: "Study Certificate", GeneratedLetter: "text"}
	svc.On("Submit", mock.Anything, in).Return(&CertificateRequest{ID: 3, Status: workflows.StatusPending}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/submit-request",
		`{"studentName":"Asha Rao","college":"REC","certificateType":"Study Certificate","generatedLetter":"text"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Request submitted successfully", body["message"])
	assert.Equal(t, float64(3), body["requestId"])
	assert.Equal(t, "Pending", body["status"])
}

func TestSubmitHandlerMissingFields(t *testing.T) {
	svc := new(MockService)
	svc.On("Submit", mock.Anything, mock.Anything).Return(nil, ErrMissingFields)

	w := do(setupRouter(svc), http.MethodPost, "/api/submit-request", `{"studentName":"Asha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Missing required fields")
}

func TestStatusHandler(t *testing.T) {
	svc := new(MockService)
	pdf := "asharao-study.pdf"
	svc.On("StatusByStudent", mock.Anything, "Asha Rao").Return([]CertificateRequest{
		{ID: 2, Status: workflows.StatusApproved, PDFPath: &pdf},
		{ID: 1, Status: workflows.StatusPending},
	}, nil)

	r := setupRouter(svc)
	w := do(r, http.MethodGet, "/api/status?name=Asha+Rao", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Asha Rao", body["studentName"])
	list := body["requests"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "/certificates/asharao-study.pdf", list[0].(map[string]interface{})["downloadUrl"])
	assert.Nil(t, list[1].(map[string]interface{})["downloadUrl"])

	w = do(r, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Student name is required", decode(t, w)["error"])
}

func TestApproveHandler(t *testing.T) {
	svc := new(MockService)
	pdf := "asharao-study.pdf"
	svc.On("Approve", mock.Anything, uint(7), "admin").
		Return(&CertificateRequest{ID: 7, Status: workflows.StatusApproved, PDFPath: &pdf}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/approve/7", `{"approvedBy":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Approved", body["status"])
	assert.Equal(t, "/certificates/asharao-study.pdf", body["downloadUrl"])
	assert.Equal(t, "asharao-study.pdf", body["pdfFileName"])
	assert.Equal(t, true, body["sealApplied"])
}

func TestApproveHandlerErrors(t *testing.T) {
	genErr := &certificates.GenerationError{Op: "write", Reason: "disk full", Err: certificates.ErrStreamWrite}

	tests := []struct {
		name   string
		path   string
		err    error
		status int
		field  string
		want   string
	}{
		{"missing approver", "/api/admin/approve/7", ErrMissingDecider, http.StatusBadRequest, "error", "approvedBy field is required"},
		{"not pending", "/api/admin/approve/7", ErrRequestNotFound, http.StatusNotFound, "error", "Request not found or already processed"},
		{"render failed", "/api/admin/approve/7", genErr, http.StatusInternalServerError, "details", "PDF generation failed: disk full"},
		{"database down", "/api/admin/approve/7", errors.New("connection refused"), http.StatusInternalServerError, "error", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Approve", mock.Anything, uint(7), mock.Anything).Return(nil, tt.err)

			w := do(setupRouter(svc), http.MethodPost, tt.path, `{}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, decode(t, w)[tt.field])
		})
	}
}

func TestApproveHandlerInvalidID(t *testing.T) {
	svc := new(MockService)
	w := do(setupRouter(svc), http.MethodPost, "/api/admin/approve/abc", `{"approvedBy":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecisionHandlersRejectMalformedBody(t *testing.T) {
	for _, path := range []string{"/api/admin/approve/7", "/api/admin/reject/7"} {
		svc := new(MockService)
		w := do(setupRouter(svc), http.MethodPost, path, `{"approvedBy":`)

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "Invalid request body", decode(t, w)["error"], path)
		svc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
		svc.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestApproveHandlerEmptyBodyMeansMissingApprover(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, uint(7), "").Return(nil, ErrMissingDecider)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/approve/7", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "approvedBy field is required", decode(t, w)["error"])
	svc.AssertExpectations(t)
}

func TestRejectHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Reject", mock.Anything, uint(4), "admin").Return(&CertificateRequest{ID: 4, Status: workflows.StatusRejected}, nil)

	w := do(setupRouter(svc), http.MethodPost, "/api/admin/reject/4", `{"approvedBy":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Request rejected successfully", body["message"])
	assert.Equal(t, "Rejected", body["status"])
}

func TestListHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("ListAll", mock.Anything).Return([]CertificateRequest{{ID: 1, StudentName: "Asha Rao", GeneratedLetter: "text"}}, nil)

	w := do(setupRouter(svc), http.MethodGet, "/api/admin/requests", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["requests"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "text", list[0].(map[string]interface{})["generatedLetter"])
}

func TestExportHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Export", mock.Anything, mock.Anything).Return(nil)

	w := do(setupRouter(svc), http.MethodGet, "/api/admin/requests/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificate-requests.xlsx")
	assert.Equal(t, "PK", w.Body.String())
}

func TestAdminMiddlewareIsApplied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "denied"}) }
	NewHandler(new(MockService), nil).RegisterRoutes(r.Group("/api"), deny)

	w := do(r, http.MethodGet, "/api/admin/requests", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
