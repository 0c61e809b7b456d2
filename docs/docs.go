// Package docs registers the service's OpenAPI document with swag.
//
// The document is maintained by hand alongside the handlers' swag annotations;
// keep both in sync when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/callback": {
            "get": {
                "description": "Exchanges the authorization code, applies the administrator check and sets the session cookie. A non-administrator session is signed out at the provider.",
                "tags": ["auth"],
                "summary": "Complete administrator sign-in",
                "parameters": [
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query", "required": true},
                    {"type": "string", "description": "CSRF state", "name": "state", "in": "query", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to the admin area"},
                    "400": {"description": "Missing authorization code", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Invalid state or code", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "403": {"description": "Not the administrator", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "get": {
                "description": "Redirects to the identity provider with a CSRF state and PKCE challenge",
                "tags": ["auth"],
                "summary": "Start administrator sign-in",
                "responses": {
                    "302": {"description": "Redirect to the identity provider"},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Signs the session out at the identity provider and clears the session cookie",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "Signed out", "schema": {"$ref": "#/definitions/model.SuccessResponse"}},
                    "500": {"description": "Identity provider failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current caller",
                "responses": {
                    "200": {"description": "Caller identity", "schema": {"$ref": "#/definitions/model.MeResponse"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/contact": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Send a contact message",
                "parameters": [
                    {"description": "Contact message", "name": "message", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ContactRequest"}}
                ],
                "responses": {
                    "200": {"description": "Message sent", "schema": {"$ref": "#/definitions/model.SuccessResponse"}},
                    "400": {"description": "Invalid input or CAPTCHA rejected", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Delivery failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/donations/orders": {
            "post": {
                "description": "Opens a payment gateway order; the amount is given in rupees and returned in paise",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Start a donation payment",
                "parameters": [
                    {"description": "Donation", "name": "donation", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.DonationOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "Order created", "schema": {"$ref": "#/definitions/model.DonationOrderResponse"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Payment gateway failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/invoices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every invoice, newest first",
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "List invoices",
                "responses": {
                    "200": {"description": "Invoice history", "schema": {"$ref": "#/definitions/model.InvoicesListResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "403": {"description": "Not the administrator", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Database failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Generates the invoice PDF, stores it, records it and emails it to the donor",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Create an invoice",
                "parameters": [
                    {"description": "Invoice details", "name": "invoice", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateInvoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Invoice created", "schema": {"$ref": "#/definitions/model.CreateInvoiceResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "403": {"description": "Not the administrator", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Generation, storage or database failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/invoices/download": {
            "get": {
                "description": "Streams the invoice PDF; the serial number is the capability",
                "produces": ["application/pdf"],
                "tags": ["invoices"],
                "summary": "Download an invoice PDF",
                "parameters": [
                    {"type": "string", "description": "Invoice serial number", "name": "serialNumber", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Invoice PDF", "schema": {"type": "file"}},
                    "400": {"description": "Missing serial number", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Invoice not found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Storage or generation failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/invoices/regenerate": {
            "get": {
                "description": "Issues a signed URL for the invoice PDF, regenerating the PDF from its record if it is missing, and redirects to it",
                "tags": ["invoices"],
                "summary": "Redirect to an invoice PDF",
                "parameters": [
                    {"type": "string", "description": "Invoice serial number", "name": "serialNumber", "in": "query", "required": true}
                ],
                "responses": {
                    "303": {"description": "Redirect to the signed URL"},
                    "400": {"description": "Missing serial number", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Invoice not found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Storage or generation failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Issues a signed URL for the invoice PDF, regenerating the PDF from its record if it is missing, and redirects to it",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "tags": ["invoices"],
                "summary": "Redirect to an invoice PDF",
                "parameters": [
                    {"description": "Invoice serial number", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegenerateRequest"}}
                ],
                "responses": {
                    "303": {"description": "Redirect to the signed URL"},
                    "400": {"description": "Missing serial number", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Invoice not found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Storage or generation failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/invoices/{id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the invoice with a signed URL to its PDF, regenerating the PDF if it is missing",
                "produces": ["application/json"],
                "tags": ["invoices"],
                "summary": "Get a signed link to an invoice",
                "parameters": [
                    {"type": "string", "description": "Invoice ID", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Issue a short-lived URL for embedding", "name": "preview", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Signed link", "schema": {"$ref": "#/definitions/model.InvoiceLinkResponse"}},
                    "400": {"description": "Missing ID", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "403": {"description": "Not the administrator", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "404": {"description": "Invoice not found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/join": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Sign up as a volunteer",
                "parameters": [
                    {"description": "Volunteer details", "name": "signup", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.JoinRequest"}}
                ],
                "responses": {
                    "200": {"description": "Sign-up received", "schema": {"$ref": "#/definitions/model.SuccessResponse"}},
                    "400": {"description": "Invalid input or CAPTCHA rejected", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "500": {"description": "Delivery failure", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.ContactRequest": {
            "type": "object",
            "properties": {
                "captchaToken": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"},
                "subject": {"type": "string"}
            }
        },
        "model.CreateInvoiceRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 1500},
                "date": {"type": "string", "example": "2025-03-08"},
                "description": {"type": "string", "example": "General donation"},
                "donorAddress": {"type": "string", "example": "12 MG Road"},
                "donorEmail": {"type": "string", "example": "asha@example.com"},
                "donorName": {"type": "string", "example": "Asha Rao"}
            }
        },
        "model.CreateInvoiceResponse": {
            "type": "object",
            "properties": {
                "emailSent": {"type": "boolean"},
                "invoice": {"$ref": "#/definitions/model.InvoiceResponse"},
                "pdfUrl": {"type": "string"},
                "serialNumber": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "model.DonationOrderRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 500},
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "model.DonationOrderResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "integer", "example": 50000},
                "currency": {"type": "string", "example": "INR"},
                "keyId": {"type": "string"},
                "orderId": {"type": "string"}
            }
        },
        "model.DonorDetailsResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "model.ErrorDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "array", "items": {"$ref": "#/definitions/model.ErrorDetail"}},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "model.InvoiceLinkResponse": {
            "type": "object",
            "properties": {
                "invoice": {"$ref": "#/definitions/model.InvoiceResponse"},
                "pdfUrl": {"type": "string"}
            }
        },
        "model.InvoiceResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "1500.00"},
                "createdAt": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "donorDetails": {"$ref": "#/definitions/model.DonorDetailsResponse"},
                "id": {"type": "string"},
                "pdfUrl": {"type": "string"},
                "serialNumber": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "model.InvoicesListResponse": {
            "type": "object",
            "properties": {
                "invoices": {"type": "array", "items": {"$ref": "#/definitions/model.InvoiceResponse"}}
            }
        },
        "model.JoinRequest": {
            "type": "object",
            "properties": {
                "captchaToken": {"type": "string"},
                "email": {"type": "string"},
                "interest": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "model.MeResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "isAdmin": {"type": "boolean"}
            }
        },
        "model.RegenerateRequest": {
            "type": "object",
            "properties": {
                "serialNumber": {"type": "string"}
            }
        },
        "model.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the identity provider access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Donation Invoice Service API",
	Description:      "Administrator-gated invoice generation and the public forms of the donation site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
