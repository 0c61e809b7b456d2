package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridwanfathin/donation-invoice-service/internal/model"
	"github.com/ridwanfathin/donation-invoice-service/internal/service"
)

// PublicHandler handles the site's public forms and donation checkout
type PublicHandler struct {
	outreach service.OutreachService
	logger   *slog.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(outreach service.OutreachService, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{
		outreach: outreach,
		logger:   logger.With("component", "public_handler"),
	}
}

// SubmitContact handles POST /contact
// @Summary Send a contact message
// @Tags public
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param message body model.ContactRequest true "Contact message"
// @Success 200 {object} model.SuccessResponse "Message sent"
// @Failure 400 {object} model.ErrorResponse "Invalid input or CAPTCHA rejected"
// @Failure 500 {object} model.ErrorResponse "Delivery failure"
// @Router /contact [post]
func (h *PublicHandler) SubmitContact(c *gin.Context) {
	var req model.ContactRequest
	if details, err := bindForm(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, details...)
		return
	}

	err := h.outreach.SubmitContact(c.Request.Context(), service.ContactInput{
		Name:         req.Name,
		Email:        req.Email,
		Subject:      req.Subject,
		Message:      req.Message,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.SuccessResponse{Status: http.StatusText(StatusOK), Message: "Thank you, your message has been sent"})
}

// SubmitJoin handles POST /join
// @Summary Sign up as a volunteer
// @Tags public
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param signup body model.JoinRequest true "Volunteer details"
// @Success 200 {object} model.SuccessResponse "Sign-up received"
// @Failure 400 {object} model.ErrorResponse "Invalid input or CAPTCHA rejected"
// @Failure 500 {object} model.ErrorResponse "Delivery failure"
// @Router /join [post]
func (h *PublicHandler) SubmitJoin(c *gin.Context) {
	var req model.JoinRequest
	if details, err := bindForm(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, details...)
		return
	}

	err := h.outreach.SubmitJoin(c.Request.Context(), service.JoinInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Interest:     req.Interest,
		Message:      req.Message,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.SuccessResponse{Status: http.StatusText(StatusOK), Message: "Thank you for joining us"})
}

// CreateDonationOrder handles POST /donations/orders
// @Summary Start a donation payment
// @Description Opens a payment gateway order; the amount is given in rupees and returned in paise
// @Tags public
// @Accept json
// @Produce json
// @Param donation body model.DonationOrderRequest true "Donation"
// @Success 200 {object} model.DonationOrderResponse "Order created"
// @Failure 400 {object} model.ErrorResponse "Invalid amount"
// @Failure 500 {object} model.ErrorResponse "Payment gateway failure"
// @Router /donations/orders [post]
func (h *PublicHandler) CreateDonationOrder(c *gin.Context) {
	var req model.DonationOrderRequest
	if details, err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput, details...)
		return
	}

	order, err := h.outreach.CreateDonationOrder(c.Request.Context(), service.DonationInput{
		Amount: req.Amount,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, model.DonationOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    order.KeyID,
	})
}
