package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/donation-invoice-service/internal/middleware"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService service.InvoiceService, logger *slog.Logger) *InvoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger.With("component", "invoice_handler"),
	}
}

// CreateInvoice handles POST /invoices
// @Summary Create an invoice
// @Description Generates the invoice PDF, stores it, records it and emails it to the donor
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body model.CreateInvoiceRequest true "Invoice details"
// @Success 200 {object} model.CreateInvoiceResponse "Invoice created"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} model.ErrorResponse "Not the administrator"
// @Failure 500 {object} model.ErrorResponse "Generation, storage or database failure"
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req model.CreateInvoiceRequest
	if details, err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, details...)
		return
	}

	result, err := h.invoiceService.Create(c.Request.Context(), middleware.IdentityFrom(c), service.CreateInvoiceInput{
		DonorName:    req.DonorName,
		DonorEmail:   req.DonorEmail,
		DonorAddress: req.DonorAddress,
		Amount:       req.Amount,
		Description:  req.Description,
		Date:         req.Date,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.CreateInvoiceResponse{
		Success:      true,
		SerialNumber: result.SerialNumber,
		PDFURL:       result.PDFURL,
		EmailSent:    result.EmailSent,
		Invoice:      model.NewInvoiceResponse(result.Invoice),
	})
}

// ListInvoices handles GET /invoices
// @Summary List invoices
// @Description Returns every invoice, newest first
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.InvoicesListResponse "Invoice history"
// @Failure 401 {object} model.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} model.ErrorResponse "Not the administrator"
// @Failure 500 {object} model.ErrorResponse "Database failure"
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	records, err := h.invoiceService.List(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.NewInvoicesListResponse(records))
}

// GetInvoiceLink handles GET /invoices/:id/download
// @Summary Get a signed link to an invoice
// @Description Returns the invoice with a signed URL to its PDF, regenerating the PDF if it is missing
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param preview query bool false "Issue a short-lived URL for embedding"
// @Success 200 {object} model.InvoiceLinkResponse "Signed link"
// @Failure 400 {object} model.ErrorResponse "Missing ID"
// @Failure 401 {object} model.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} model.ErrorResponse "Not the administrator"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 500 {object} model.ErrorResponse "Storage failure"
// @Router /invoices/{id}/download [get]
func (h *InvoiceHandler) GetInvoiceLink(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, ErrInvalidID)
		return
	}

	purpose := service.PurposeDownload
	if getQueryBool(c, "preview") {
		purpose = service.PurposePreview
	}

	link, err := h.invoiceService.GetForAdmin(c.Request.Context(), middleware.IdentityFrom(c), id, purpose)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.InvoiceLinkResponse{
		PDFURL:  link.PDFURL,
		Invoice: model.NewInvoiceResponse(link.Invoice),
	})
}

// DownloadInvoice handles GET /invoices/download
// @Summary Download an invoice PDF
// @Description Streams the invoice PDF; the serial number is the capability
// @Tags invoices
// @Produce application/pdf
// @Param serialNumber query string true "Invoice serial number"
// @Success 200 {file} binary "Invoice PDF"
// @Failure 400 {object} model.ErrorResponse "Missing serial number"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 500 {object} model.ErrorResponse "Storage or generation failure"
// @Router /invoices/download [get]
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	serialNumber := getQueryString(c, "serialNumber")
	if serialNumber == "" {
		respondBadRequest(c, ErrMissingSerial, model.ErrorDetail{Field: "serialNumber", Message: "is required"})
		return
	}

	doc, err := h.invoiceService.Download(c.Request.Context(), serialNumber)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", attachmentDisposition(doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(StatusOK, "application/pdf", doc.Data)
}

// RegenerateInvoice handles GET and POST /invoices/regenerate
// @Summary Redirect to an invoice PDF
// @Description Issues a signed URL for the invoice PDF, regenerating the PDF from its record if it is missing, and redirects to it
// @Tags invoices
// @Accept json,x-www-form-urlencoded
// @Param serialNumber query string false "Invoice serial number (GET)"
// @Param request body model.RegenerateRequest false "Invoice serial number (POST)"
// @Success 303 "Redirect to the signed URL"
// @Failure 400 {object} model.ErrorResponse "Missing serial number"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 500 {object} model.ErrorResponse "Storage or generation failure"
// @Router /invoices/regenerate [get]
// @Router /invoices/regenerate [post]
func (h *InvoiceHandler) RegenerateInvoice(c *gin.Context) {
	var req model.RegenerateRequest
	if c.Request.Method == http.MethodPost {
		if details, err := bindForm(c, &req); err != nil {
			respondBadRequest(c, ErrInvalidInput, details...)
			return
		}
	} else {
		req.SerialNumber = getQueryString(c, "serialNumber")
	}

	if req.SerialNumber == "" {
		respondBadRequest(c, ErrMissingSerial, model.ErrorDetail{Field: "serialNumber", Message: "is required"})
		return
	}

	link, err := h.invoiceService.FetchOrRegenerate(c.Request.Context(), req.SerialNumber, service.PurposeDownload)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if link.Regenerated {
		h.logger.InfoContext(c.Request.Context(), "served regenerated invoice", "serial_number", req.SerialNumber)
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(StatusSeeOther, link.URL)
}
