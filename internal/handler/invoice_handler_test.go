package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ridwanfathin/donation-invoice-service/internal/domain"
	"github.com/ridwanfathin/donation-invoice-service/internal/middleware"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

var admin = &domain.Identity{UserID: "user-1", Email: "admin@sahyog.org"}

func init() {
	gin.SetMode(gin.TestMode)
}

func newInvoiceRouter(svc service.InvoiceService) *gin.Engine {
	h := NewInvoiceHandler(svc, nil)
	router := gin.New()

	router.GET("/invoices/download", h.DownloadInvoice)
	router.GET("/invoices/regenerate", h.RegenerateInvoice)
	router.POST("/invoices/regenerate", h.RegenerateInvoice)

	protected := router.Group("/invoices", middleware.Auth(stubSessions{identity: admin}))
	protected.POST("", h.CreateInvoice)
	protected.GET("", h.ListInvoices)
	protected.GET("/:id/download", h.GetInvoiceLink)
	return router
}

func sampleRecord(serial string, created time.Time) *domain.InvoiceRecord {
	date, _ := domain.ParseDateOnly("2025-03-08")
	return &domain.InvoiceRecord{
		ID:           "id-" + serial,
		SerialNumber: serial,
		DonorDetails: domain.DonorDetails{Name: "Asha Rao", Email: "asha@example.com", Address: "12 MG Road"},
		Amount:       decimal.RequireFromString("1500"),
		Date:         date,
		Description:  "General donation",
		PDFURL:       "https://storage.example/" + serial + ".pdf?sig",
		Status:       domain.InvoiceStatusGenerated,
		CreatedAt:    created,
	}
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer token")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateInvoice_Success(t *testing.T) {
	svc := &mockInvoiceService{}
	record := sampleRecord("INV-20250308-1", time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC))
	svc.On("Create", mock.Anything, admin, mock.MatchedBy(func(in service.CreateInvoiceInput) bool {
		return in.DonorName == "Asha Rao" && in.Amount.Equal(decimal.RequireFromString("1500.00")) && in.Date == "2025-03-08"
	})).Return(&service.CreateInvoiceResult{
		SerialNumber: record.SerialNumber,
		PDFURL:       record.PDFURL,
		Invoice:      record,
		EmailSent:    true,
	}, nil)

	body := `{"donorName":"Asha Rao","donorEmail":"asha@example.com","donorAddress":"12 MG Road","amount":1500.00,"description":"General donation","date":"2025-03-08"}`
	req := authed(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(newInvoiceRouter(svc), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp model.CreateInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "INV-20250308-1", resp.SerialNumber)
	assert.Equal(t, record.PDFURL, resp.PDFURL)
	assert.Equal(t, "1500.00", resp.Invoice.Amount)
	assert.Equal(t, "Asha Rao", resp.Invoice.DonorDetails.Name)
	assert.Equal(t, "generated", resp.Invoice.Status)
	assert.Equal(t, "2025-03-08T09:00:00Z", resp.Invoice.CreatedAt)
}

func TestCreateInvoice_ValidationDetails(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil,
		domain.NewValidationError("create_invoice", map[string]string{"donorName": "is required", "amount": "must be greater than zero"}))

	req := authed(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(newInvoiceRouter(svc), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "amount", resp.Details[0].Field)
	assert.Equal(t, "donorName", resp.Details[1].Field)
}

func TestCreateInvoice_MalformedBody(t *testing.T) {
	svc := &mockInvoiceService{}

	req := authed(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{"amount":`)))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(newInvoiceRouter(svc), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvoice_ErrorMapping(t *testing.T) {
	tests := []struct {
		kind   domain.Kind
		status int
		code   string
	}{
		{domain.KindUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.KindForbidden, http.StatusForbidden, "forbidden"},
		{domain.KindUpstream, http.StatusInternalServerError, "upstream_failure"},
		{domain.KindDocumentGeneration, http.StatusInternalServerError, "document_generation_failed"},
		{domain.KindInternal, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := &mockInvoiceService{}
			svc.On("Create", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, domain.NewError(tt.kind, "create_invoice", errors.New("s3: AccessDenied bucket=invoices")))

			req := authed(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(`{}`)))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(newInvoiceRouter(svc), req)

			assert.Equal(t, tt.status, rec.Code)
			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.NotContains(t, rec.Body.String(), "AccessDenied")
		})
	}
}

func TestListInvoices_PreservesOrder(t *testing.T) {
	svc := &mockInvoiceService{}
	newer := sampleRecord("INV-2", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	older := sampleRecord("INV-1", time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC))
	svc.On("List", mock.Anything, admin).Return([]*domain.InvoiceRecord{newer, older}, nil)

	rec := serve(newInvoiceRouter(svc), authed(httptest.NewRequest(http.MethodGet, "/invoices", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.InvoicesListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Invoices, 2)
	assert.Equal(t, "INV-2", resp.Invoices[0].SerialNumber)
	assert.Equal(t, "INV-1", resp.Invoices[1].SerialNumber)
}

func TestListInvoices_Empty(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("List", mock.Anything, admin).Return([]*domain.InvoiceRecord{}, nil)

	rec := serve(newInvoiceRouter(svc), authed(httptest.NewRequest(http.MethodGet, "/invoices", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"invoices":[]}`, rec.Body.String())
}

func TestGetInvoiceLink(t *testing.T) {
	svc := &mockInvoiceService{}
	record := sampleRecord("INV-1", time.Now())
	svc.On("GetForAdmin", mock.Anything, admin, "id-1", service.PurposePreview).
		Return(&service.InvoiceLink{PDFURL: "https://signed/preview", Invoice: record}, nil)

	rec := serve(newInvoiceRouter(svc), authed(httptest.NewRequest(http.MethodGet, "/invoices/id-1/download?preview=true", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.InvoiceLinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://signed/preview", resp.PDFURL)
	assert.Equal(t, "INV-1", resp.Invoice.SerialNumber)
}

func TestGetInvoiceLink_NotFound(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("GetForAdmin", mock.Anything, admin, "missing", service.PurposeDownload).
		Return(nil, domain.NewError(domain.KindNotFound, "get_invoice", errors.New("no rows")))

	rec := serve(newInvoiceRouter(svc), authed(httptest.NewRequest(http.MethodGet, "/invoices/missing/download", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadInvoice(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Download", mock.Anything, "INV-1").Return(&service.Document{Filename: "INV-1.pdf", Data: []byte("%PDF-1.4")}, nil)

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/download?serialNumber=INV-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="INV-1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestDownloadInvoice_MissingSerial(t *testing.T) {
	svc := &mockInvoiceService{}

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/download", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestDownloadInvoice_NotFound(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("Download", mock.Anything, "INV-404").Return(nil, domain.NewError(domain.KindNotFound, "download_invoice", errors.New("missing")))

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/download?serialNumber=INV-404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegenerateInvoice_Get(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("FetchOrRegenerate", mock.Anything, "INV-1", service.PurposeDownload).
		Return(&service.DocumentLink{URL: "https://signed/INV-1.pdf", Regenerated: true}, nil)

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/regenerate?serialNumber=INV-1", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://signed/INV-1.pdf", rec.Header().Get("Location"))
}

func TestRegenerateInvoice_PostForm(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("FetchOrRegenerate", mock.Anything, "INV-1", service.PurposeDownload).
		Return(&service.DocumentLink{URL: "https://signed/INV-1.pdf"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/invoices/regenerate", strings.NewReader("serialNumber=INV-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(newInvoiceRouter(svc), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://signed/INV-1.pdf", rec.Header().Get("Location"))
}

func TestRegenerateInvoice_PostJSON(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("FetchOrRegenerate", mock.Anything, "INV-1", service.PurposeDownload).
		Return(&service.DocumentLink{URL: "https://signed/INV-1.pdf"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/invoices/regenerate", strings.NewReader(`{"serialNumber":"INV-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(newInvoiceRouter(svc), req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRegenerateInvoice_MissingSerial(t *testing.T) {
	svc := &mockInvoiceService{}

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/regenerate", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "FetchOrRegenerate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegenerateInvoice_NotFound(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("FetchOrRegenerate", mock.Anything, "INV-404", service.PurposeDownload).
		Return(nil, domain.NewError(domain.KindNotFound, "fetch_or_regenerate", errors.New("no record")))

	rec := serve(newInvoiceRouter(svc), httptest.NewRequest(http.MethodGet, "/invoices/regenerate?serialNumber=INV-404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}
