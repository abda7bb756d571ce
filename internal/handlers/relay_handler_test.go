package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"walletpay-backend/internal/relay"
	"walletpay-backend/internal/walletpay"
)

func relayRouter(t *testing.T) (*gin.Engine, *relay.Relay) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	frameRelay, err := relay.New("https://api.example.com/api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	router := gin.New()
	router.POST("/api/wallet_pay/relay", NewRelayHandler(frameRelay).Result)
	return router, frameRelay
}

func TestRelayResultDelivery(t *testing.T) {
	router, frameRelay := relayRouter(t)

	frame, err := frameRelay.OpenFrame("/wallet_pay/authenticate", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := frame.(*relay.Frame).ID()

	w := postJSON(router, "/api/wallet_pay/relay", map[string]interface{}{
		"relay_id": id,
		"results":  map[string]string{"resultCode": "Authorised"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	select {
	case result := <-frame.Results():
		if len(result) == 0 {
			t.Error("expected a result payload")
		}
	default:
		t.Fatal("expected the result delivered to the frame")
	}
}

func TestRelayErrorDelivery(t *testing.T) {
	router, frameRelay := relayRouter(t)

	frame, err := frameRelay.OpenFrame("/wallet_pay/authenticate", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := frame.(*relay.Frame).ID()

	w := postJSON(router, "/api/wallet_pay/relay", map[string]interface{}{
		"relay_id": id,
		"error":    map[string]string{"code": "auth-error", "message": "authentication failed"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	select {
	case deliveryErr := <-frame.Errors():
		coded, ok := deliveryErr.(*walletpay.Error)
		if !ok || string(coded.Code) != "auth-error" {
			t.Errorf("unexpected error: %v", deliveryErr)
		}
	default:
		t.Fatal("expected the error delivered to the frame")
	}
}

func TestRelayRequiresID(t *testing.T) {
	router, _ := relayRouter(t)

	w := postJSON(router, "/api/wallet_pay/relay", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
