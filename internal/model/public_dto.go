package model

import "github.com/shopspring/decimal"

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name         string `json:"name" form:"name" binding:"max=200"`
	Email        string `json:"email" form:"email" binding:"max=254"`
	Subject      string `json:"subject" form:"subject" binding:"max=200"`
	Message      string `json:"message" form:"message" binding:"max=5000"`
	CaptchaToken string `json:"captchaToken" form:"g-recaptcha-response"`
}

// JoinRequest represents a volunteer sign-up
type JoinRequest struct {
	Name         string `json:"name" form:"name" binding:"max=200"`
	Email        string `json:"email" form:"email" binding:"max=254"`
	Phone        string `json:"phone" form:"phone" binding:"max=32"`
	Interest     string `json:"interest" form:"interest" binding:"max=200"`
	Message      string `json:"message" form:"message" binding:"max=5000"`
	CaptchaToken string `json:"captchaToken" form:"g-recaptcha-response"`
}

// DonationOrderRequest represents a request to start a donation payment
type DonationOrderRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number" example:"500"`
	Name   string          `json:"name" binding:"max=200"`
	Email  string          `json:"email" binding:"max=254"`
}

// DonationOrderResponse is what the browser checkout needs to collect a payment
type DonationOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount" example:"50000"` // paise
	Currency string `json:"currency" example:"INR"`
	KeyID    string `json:"keyId"`
}

// MeResponse describes the signed-in caller
type MeResponse struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
