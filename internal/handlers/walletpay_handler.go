package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"walletpay-backend/internal/config"
	"walletpay-backend/internal/metrics"
	"walletpay-backend/internal/walletpay"
	"walletpay-backend/pkg/logger"
)

// WalletPayHandler serves the gateway routes the payment-session layer
// calls: merchant metadata, merchant validation, and tokenization.
type WalletPayHandler struct {
	cfg *config.Config
}

func NewWalletPayHandler(cfg *config.Config) *WalletPayHandler {
	return &WalletPayHandler{cfg: cfg}
}

type startRequest struct {
	ValidationURL string `json:"validationURL" binding:"required,url"`
	DisplayName   string `json:"displayName"`
}

type tokenRequest struct {
	Type          string                 `json:"type"`
	PaymentData   interface{}            `json:"paymentData"`
	PaymentMethod interface{}            `json:"paymentMethod"`
	Payload       map[string]interface{} `json:"payload"`
}

// Info returns the merchant/gateway metadata used during session assembly.
func (h *WalletPayHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, walletpay.GatewayInfo{
		Countries:            h.cfg.AllowedCountries,
		Currencies:           h.cfg.AllowedCurrencies,
		MerchantCapabilities: h.cfg.MerchantCapabilities,
		SupportedNetworks:    h.cfg.SupportedNetworks,
		DisplayName:          h.cfg.MerchantDisplayName,
		ApplicationData:      h.cfg.ApplicationData,
	})
}

// Start performs merchant validation and returns an opaque merchant
// session for the sheet.
func (h *WalletPayHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid-request", "validationURL is required and must be a URL")
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = h.cfg.MerchantDisplayName
	}

	logger.Info("Merchant validation requested", map[string]interface{}{
		"validation_url": req.ValidationURL,
		"display_name":   displayName,
	})

	c.JSON(http.StatusOK, gin.H{
		"merchantSessionIdentifier": uuid.New().String(),
		"displayName":               displayName,
		"epochTimestamp":            time.Now().UnixMilli(),
		"expiresAt":                 time.Now().Add(5 * time.Minute).UnixMilli(),
	})
}

// Token exchanges an authorized wallet payment for a gateway token.
// Bridge-wrapped payloads carry their token material under payload.
func (h *WalletPayHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.TokenRequests.WithLabelValues("invalid").Inc()
		errorResponse(c, http.StatusBadRequest, "invalid-request", "request body must be JSON")
		return
	}

	if req.PaymentData == nil && len(req.Payload) == 0 {
		metrics.TokenRequests.WithLabelValues("invalid").Inc()
		errorResponse(c, http.StatusUnprocessableEntity, "invalid-payment", "invalid payment token")
		return
	}

	metrics.TokenRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"id":   uuid.New().String(),
		"type": "wallet_pay",
	})
}

// PaymentMethodsHandler serves the stored payment method routes used by
// checkout forms alongside the wallet flow.
type PaymentMethodsHandler struct {
	cfg *config.Config
}

func NewPaymentMethodsHandler(cfg *config.Config) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{cfg: cfg}
}

// List returns the payment method kinds this merchant accepts.
func (h *PaymentMethodsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"methods": []gin.H{
			{"type": "wallet_pay", "supportedNetworks": h.cfg.SupportedNetworks},
			{"type": "card"},
		},
	})
}

type cardTokenRequest struct {
	Number     string `json:"number" binding:"required"`
	Month      string `json:"month" binding:"required"`
	Year       string `json:"year" binding:"required"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address1"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" binding:"omitempty,country_code"`
}

// Token tokenizes raw card details submitted by a fallback form.
func (h *PaymentMethodsHandler) Token(c *gin.Context) {
	var req cardTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid-request", "card number, month, and year are required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   uuid.New().String(),
		"type": "credit_card",
	})
}

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
