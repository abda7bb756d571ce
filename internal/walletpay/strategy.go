package walletpay

import (
	"context"
	"encoding/json"
)

// Gateway routes consumed by the session layer.
const (
	routeInfo  = "/wallet_pay/info"
	routeStart = "/wallet_pay/start"
	routeToken = "/wallet_pay/token"
)

// sheetAPIVersions are probed newest-first when binding a direct strategy.
var sheetAPIVersions = []int{14, 10, 4}

// requiredContactFieldsVersion is the sheet version that introduced
// required contact field declarations.
const requiredContactFieldsVersion = 14

// networkMinVersions gates payment networks on the sheet API version that
// introduced them. Networks absent from the map are available everywhere.
var networkMinVersions = map[string]int{
	"girocard": 11,
	"mir":      12,
	"bancomat": 14,
}

// filterSupportedNetworks keeps the networks compatible with the host's
// sheet API version.
func filterSupportedNetworks(networks []string, sheet SheetAPI) []string {
	filtered := make([]string, 0, len(networks))
	for _, network := range networks {
		if min, gated := networkMinVersions[network]; gated && !sheet.SupportsVersion(min) {
			continue
		}
		filtered = append(filtered, network)
	}
	return filtered
}

// ActionToken carries the strong-authentication parameters that bind the
// challenge/redirect strategy: either an embedded challenge token or the
// redirect parameters for the frame fallback.
type ActionToken struct {
	ChallengeToken string
	RedirectURL    string
	RedirectData   map[string]string
}

// Strategy is one concrete integration path, bound once per session before
// configuration assembly.
type Strategy interface {
	Name() string
	APIVersion() int
	Initialize(ctx context.Context) error
	ValidateMerchant(ctx context.Context, validationURL, displayName string) (json.RawMessage, error)
	TokenPayload(ctx context.Context, payment *Payment, cfg *SessionConfig) (map[string]interface{}, error)
	Teardown(ctx context.Context) error
}

// CapabilityFacts are the detection inputs for strategy selection.
type CapabilityFacts struct {
	Sheet               SheetAPI
	BridgeAuthorization string
	Action              *ActionToken
}

// SelectStrategy binds exactly one strategy from the capability facts. The
// host must expose a working sheet API regardless of strategy; beyond that,
// a bridge credential wins unconditionally, then an action token, then the
// newest direct API version the host satisfies.
func SelectStrategy(facts CapabilityFacts, deps Deps) (Strategy, *Error) {
	if facts.Sheet == nil {
		return nil, notSupportedError()
	}
	if !facts.Sheet.CanMakePayments() {
		return nil, notAvailableError()
	}

	if facts.BridgeAuthorization != "" {
		return newBridgeStrategy(deps, facts.BridgeAuthorization), nil
	}

	version := 0
	for _, v := range sheetAPIVersions {
		if facts.Sheet.SupportsVersion(v) {
			version = v
			break
		}
	}
	if version == 0 {
		return nil, notSupportedError()
	}

	if facts.Action != nil {
		return newChallengeStrategy(deps, facts.Action, version), nil
	}
	return newDirectStrategy(deps, version), nil
}
