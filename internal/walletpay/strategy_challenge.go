package walletpay

import (
	"context"
	"encoding/json"
	"errors"
)

// ChallengeRunner is the vendor primitive that executes an embedded
// strong-authentication challenge and resolves with its results.
type ChallengeRunner interface {
	RunChallenge(ctx context.Context, challengeToken string) (json.RawMessage, error)
}

const (
	challengeVendor = "adyen"
	challengeLibURL = "https://checkoutshopper-live.adyen.com/checkoutshopper/sdk/3.15.1/adyen.js"

	// relayAuthenticatePath is the frame path for the redirect fallback.
	relayAuthenticatePath = "/wallet_pay/authenticate"
)

// challengeStrategy behaves like the direct strategy for merchant
// validation, but runs a strong-authentication sub-flow before building the
// token payload: an embedded challenge when the action token carries one,
// otherwise a redirect through a relay frame.
type challengeStrategy struct {
	directStrategy
	loader Loader
	runner ChallengeRunner
	relay  FrameOpener
	action *ActionToken
}

func newChallengeStrategy(deps Deps, action *ActionToken, version int) *challengeStrategy {
	return &challengeStrategy{
		directStrategy: directStrategy{backend: deps.Backend, version: version},
		loader:         deps.Loader,
		runner:         deps.Challenge,
		relay:          deps.Relay,
		action:         action,
	}
}

func (s *challengeStrategy) Name() string { return "challenge" }

func (s *challengeStrategy) Initialize(ctx context.Context) error {
	if s.action.ChallengeToken == "" && s.action.RedirectURL == "" {
		return authError(errors.New("could not determine an authentication method"))
	}
	if s.action.ChallengeToken != "" && s.runner == nil && s.loader != nil {
		if err := s.loader.LoadScript(ctx, challengeLibURL, nil); err != nil {
			return loadError(challengeVendor, err)
		}
	}
	if s.action.ChallengeToken != "" && s.runner == nil {
		return loadError(challengeVendor, errors.New("challenge runner is not present after loading its library"))
	}
	return nil
}

// TokenPayload runs the authentication sub-flow and attaches its results to
// the direct payload.
func (s *challengeStrategy) TokenPayload(ctx context.Context, payment *Payment, cfg *SessionConfig) (map[string]interface{}, error) {
	results, err := s.authenticate(ctx)
	if err != nil {
		return nil, authError(err)
	}

	payload, err := s.directStrategy.TokenPayload(ctx, payment, cfg)
	if err != nil {
		return nil, err
	}
	payload["authenticationResults"] = results
	return payload, nil
}

func (s *challengeStrategy) authenticate(ctx context.Context) (json.RawMessage, error) {
	if s.action.ChallengeToken != "" {
		return s.runner.RunChallenge(ctx, s.action.ChallengeToken)
	}
	return s.fallback(ctx)
}

// fallback opens a relay frame for the redirect flow and waits for the
// correlated result.
func (s *challengeStrategy) fallback(ctx context.Context) (json.RawMessage, error) {
	payload := map[string]string{"redirect_url": s.action.RedirectURL}
	for key, value := range s.action.RedirectData {
		payload[key] = value
	}

	frame, err := s.relay.OpenFrame(relayAuthenticatePath, payload)
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	select {
	case results := <-frame.Results():
		return results, nil
	case err := <-frame.Errors():
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
