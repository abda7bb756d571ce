package walletpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// BridgeSDK is the third-party wallet bridge (braintree-shaped). The host
// supplies the handle once its scripts are loaded; the strategy never reads
// ambient global state.
type BridgeSDK interface {
	CreateClient(ctx context.Context, authorization string) (BridgeClient, error)
}

// BridgeClient is an authorized bridge SDK client.
type BridgeClient interface {
	CollectDeviceData(ctx context.Context) (string, error)
	CreateWalletClient(ctx context.Context) (BridgeWalletClient, error)
}

// BridgeWalletClient drives the bridge's wallet primitives: merchant
// validation, tokenization, and session teardown.
type BridgeWalletClient interface {
	PerformValidation(ctx context.Context, validationURL, displayName string) (json.RawMessage, error)
	Tokenize(ctx context.Context, token PaymentToken) (interface{}, error)
	Teardown(ctx context.Context) error
}

const bridgeVendor = "braintree"

// bridgeLibs are loaded in order before the SDK handle is usable.
var bridgeLibs = []string{"client", "wallet", "data-collector"}

func bridgeLibURL(name string) string {
	return fmt.Sprintf("https://js.braintreegateway.com/web/3.76.0/js/%s.min.js", name)
}

// bridgeStrategy delegates merchant validation and tokenization to the
// bridge SDK; the gateway backend only sees the final wrapped token
// request. The bridge path does not depend on the sheet API version.
type bridgeStrategy struct {
	backend       Backend
	loader        Loader
	sdk           BridgeSDK
	authorization string

	client     BridgeClient
	wallet     BridgeWalletClient
	deviceData string
}

func newBridgeStrategy(deps Deps, authorization string) *bridgeStrategy {
	return &bridgeStrategy{
		backend:       deps.Backend,
		loader:        deps.Loader,
		sdk:           deps.BridgeSDK,
		authorization: authorization,
	}
}

func (s *bridgeStrategy) Name() string    { return bridgeVendor }
func (s *bridgeStrategy) APIVersion() int { return sheetAPIVersions[len(sheetAPIVersions)-1] }

// Initialize loads the bridge libraries and builds the client chain:
// authorized client, device data, wallet client.
func (s *bridgeStrategy) Initialize(ctx context.Context) error {
	if s.sdk == nil && s.loader != nil {
		for _, lib := range bridgeLibs {
			if err := s.loader.LoadScript(ctx, bridgeLibURL(lib), nil); err != nil {
				return loadError(bridgeVendor, err)
			}
		}
	}
	if s.sdk == nil {
		return loadError(bridgeVendor, errors.New("bridge SDK is not present after loading its libraries"))
	}

	client, err := s.sdk.CreateClient(ctx, s.authorization)
	if err != nil {
		return err
	}
	deviceData, err := client.CollectDeviceData(ctx)
	if err != nil {
		return err
	}
	wallet, err := client.CreateWalletClient(ctx)
	if err != nil {
		return err
	}

	s.client = client
	s.deviceData = deviceData
	s.wallet = wallet
	return nil
}

// ValidateMerchant delegates to the bridge SDK's validation primitive. The
// backend validation route is never called on this path.
func (s *bridgeStrategy) ValidateMerchant(ctx context.Context, validationURL, displayName string) (json.RawMessage, error) {
	return s.wallet.PerformValidation(ctx, validationURL, displayName)
}

// TokenPayload wraps the direct payload in the bridge envelope together
// with the device data and the bridge's own tokenized payload.
func (s *bridgeStrategy) TokenPayload(ctx context.Context, payment *Payment, cfg *SessionConfig) (map[string]interface{}, error) {
	tokenizePayload, err := s.wallet.Tokenize(ctx, payment.Token)
	if err != nil {
		return nil, err
	}

	inner, err := (&directStrategy{backend: s.backend}).TokenPayload(ctx, payment, cfg)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"type": bridgeVendor,
		"payload": map[string]interface{}{
			"deviceData":      s.deviceData,
			"tokenizePayload": tokenizePayload,
			"walletPayment":   inner,
		},
	}, nil
}

// Teardown releases the bridge SDK's internal session resources.
func (s *bridgeStrategy) Teardown(ctx context.Context) error {
	if s.wallet == nil {
		return nil
	}
	return s.wallet.Teardown(ctx)
}
