package walletpay

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSelectStrategyNoSheet(t *testing.T) {
	_, err := SelectStrategy(CapabilityFacts{}, Deps{})
	if err == nil || err.Code != CodeNotSupported {
		t.Fatalf("expected not-supported, got %v", err)
	}
}

func TestSelectStrategyCannotMakePayments(t *testing.T) {
	sheet := newSheetAPIStub(14)
	sheet.canPay = false

	_, err := SelectStrategy(CapabilityFacts{Sheet: sheet}, Deps{})
	if err == nil || err.Code != CodeNotAvailable {
		t.Fatalf("expected not-available, got %v", err)
	}
}

func TestSelectStrategyProbesNewestVersionFirst(t *testing.T) {
	strategy, err := SelectStrategy(CapabilityFacts{Sheet: newSheetAPIStub(4, 10)}, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy.Name() != "direct" {
		t.Errorf("expected direct strategy, got %q", strategy.Name())
	}
	if strategy.APIVersion() != 10 {
		t.Errorf("expected version 10, got %d", strategy.APIVersion())
	}
}

func TestSelectStrategyNoUsableVersion(t *testing.T) {
	_, err := SelectStrategy(CapabilityFacts{Sheet: newSheetAPIStub(3)}, Deps{})
	if err == nil || err.Code != CodeNotSupported {
		t.Fatalf("expected not-supported, got %v", err)
	}
}

func TestSelectStrategyBridgeWins(t *testing.T) {
	facts := CapabilityFacts{
		Sheet:               newSheetAPIStub(14),
		BridgeAuthorization: "client-auth",
		Action:              &ActionToken{ChallengeToken: "challenge"},
	}
	strategy, err := SelectStrategy(facts, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy.Name() != "braintree" {
		t.Errorf("expected the bridge strategy to win, got %q", strategy.Name())
	}
}

func TestSelectStrategyActionBindsChallenge(t *testing.T) {
	facts := CapabilityFacts{
		Sheet:  newSheetAPIStub(14),
		Action: &ActionToken{ChallengeToken: "challenge"},
	}
	strategy, err := SelectStrategy(facts, Deps{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strategy.Name() != "challenge" {
		t.Errorf("expected challenge strategy, got %q", strategy.Name())
	}
}

func TestDirectTokenPayload(t *testing.T) {
	strategy := newDirectStrategy(Deps{Backend: newBackendStub()}, 14)

	cfg := &SessionConfig{Form: map[string]string{
		"email":      "ada@example.com",
		"first_name": "FormName",
		"country":    "GB",
	}}
	payment := &Payment{
		Token: PaymentToken{
			PaymentData:   map[string]interface{}{"data": "opaque"},
			PaymentMethod: map[string]interface{}{"network": "visa"},
		},
		BillingContact: &Contact{GivenName: "Ada", CountryCode: "US"},
	}

	payload, err := strategy.TokenPayload(context.Background(), payment, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["email"] != "ada@example.com" {
		t.Errorf("non-address form field should pass through, got %v", payload["email"])
	}
	if _, ok := payload["paymentData"]; !ok {
		t.Error("expected paymentData in payload")
	}
	if payload["first_name"] != "Ada" {
		t.Errorf("billing address must win over the form field, got %v", payload["first_name"])
	}
	if payload["country"] != "US" {
		t.Errorf("billing country must win over the form field, got %v", payload["country"])
	}
}

func TestChallengeInitializeRequiresMethod(t *testing.T) {
	strategy := newChallengeStrategy(Deps{}, &ActionToken{}, 14)
	err := strategy.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected error for an empty action token")
	}
	coded := asSessionError(err)
	if coded.Code != CodeAuthError {
		t.Errorf("expected auth-error, got %v", coded.Code)
	}
}

func TestChallengeTokenPayloadRunsChallenge(t *testing.T) {
	runner := &challengeRunnerStub{response: json.RawMessage(`{"resultCode":"Authorised"}`)}
	deps := Deps{Backend: newBackendStub(), Challenge: runner}
	strategy := newChallengeStrategy(deps, &ActionToken{ChallengeToken: "tok-123"}, 14)

	payment := &Payment{Token: PaymentToken{PaymentData: map[string]interface{}{"d": 1}}}
	payload, err := strategy.TokenPayload(context.Background(), payment, &SessionConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.tokens) != 1 || runner.tokens[0] != "tok-123" {
		t.Errorf("expected one challenge run, got %v", runner.tokens)
	}
	if _, ok := payload["authenticationResults"]; !ok {
		t.Error("expected authenticationResults in payload")
	}
}

func TestChallengeFallbackUsesRelayFrame(t *testing.T) {
	frame := newFrameStub()
	frame.results <- json.RawMessage(`{"resultCode":"Authorised"}`)
	opener := &frameOpenerStub{frame: frame}

	deps := Deps{Backend: newBackendStub(), Relay: opener}
	strategy := newChallengeStrategy(deps, &ActionToken{
		RedirectURL:  "https://issuer.example.com/3ds",
		RedirectData: map[string]string{"MD": "md-1"},
	}, 14)

	payment := &Payment{Token: PaymentToken{PaymentData: map[string]interface{}{"d": 1}}}
	if _, err := strategy.TokenPayload(context.Background(), payment, &SessionConfig{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(opener.paths) != 1 || opener.paths[0] != relayAuthenticatePath {
		t.Errorf("expected one frame on the authenticate path, got %v", opener.paths)
	}
	if opener.payload["redirect_url"] != "https://issuer.example.com/3ds" || opener.payload["MD"] != "md-1" {
		t.Errorf("unexpected frame payload: %v", opener.payload)
	}
	if !frame.closed {
		t.Error("expected the frame to be closed after the result")
	}
}

func TestBridgeInitializeBuildsClientChain(t *testing.T) {
	sdk := newBridgeSDKStub()
	strategy := newBridgeStrategy(Deps{Backend: newBackendStub(), BridgeSDK: sdk}, "client-auth")

	if err := strategy.Initialize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sdk.client.authorization != "client-auth" {
		t.Errorf("expected authorization handed to the SDK, got %q", sdk.client.authorization)
	}
	if strategy.deviceData != "device-data-1" {
		t.Errorf("expected device data collected, got %q", strategy.deviceData)
	}
}

func TestBridgeInitializeWithoutSDK(t *testing.T) {
	loader := &loaderStub{}
	strategy := newBridgeStrategy(Deps{Loader: loader}, "client-auth")

	err := strategy.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected load error without an SDK handle")
	}
	coded := asSessionError(err)
	if coded.Code != CodeLoadError || coded.Vendor != "braintree" {
		t.Errorf("expected braintree load-error, got %+v", coded)
	}
	if len(loader.scripts) != len(bridgeLibs) {
		t.Errorf("expected %d library loads, got %v", len(bridgeLibs), loader.scripts)
	}
}

func TestBridgeTokenPayloadEnvelope(t *testing.T) {
	sdk := newBridgeSDKStub()
	strategy := newBridgeStrategy(Deps{Backend: newBackendStub(), BridgeSDK: sdk}, "client-auth")
	if err := strategy.Initialize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment := &Payment{Token: PaymentToken{PaymentData: map[string]interface{}{"d": 1}}}
	payload, err := strategy.TokenPayload(context.Background(), payment, &SessionConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["type"] != "braintree" {
		t.Errorf("expected braintree envelope, got %v", payload["type"])
	}
	inner, ok := payload["payload"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested payload, got %T", payload["payload"])
	}
	if inner["deviceData"] != "device-data-1" {
		t.Errorf("expected device data in envelope, got %v", inner["deviceData"])
	}
	if _, ok := inner["walletPayment"]; !ok {
		t.Error("expected walletPayment in envelope")
	}
	if len(sdk.client.wallet.tokenized) != 1 {
		t.Errorf("expected one bridge tokenization, got %d", len(sdk.client.wallet.tokenized))
	}
}
