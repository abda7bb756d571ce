package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"walletpay-backend/internal/relay"
	"walletpay-backend/internal/walletpay"
)

// RelayHandler receives the terminal message a redirect frame posts back
// after an authentication flow and routes it to the waiting frame.
type RelayHandler struct {
	relay *relay.Relay
}

func NewRelayHandler(r *relay.Relay) *RelayHandler {
	return &RelayHandler{relay: r}
}

type relayResultRequest struct {
	RelayID string          `json:"relay_id" binding:"required"`
	Results json.RawMessage `json:"results"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Result delivers a frame's result or error by correlation id.
func (h *RelayHandler) Result(c *gin.Context) {
	var req relayResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid-request", "relay_id is required")
		return
	}

	if req.Error != nil {
		h.relay.Deliver(req.RelayID, nil, walletpay.APIError(req.Error.Code, req.Error.Message))
	} else {
		h.relay.Deliver(req.RelayID, req.Results, nil)
	}

	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}
