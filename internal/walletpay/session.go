package walletpay

import (
	"context"
	"encoding/json"
	"sync"

	"walletpay-backend/internal/metrics"
	"walletpay-backend/pkg/logger"
)

// State is the session lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateActive        State = "active"
	StateCompleted     State = "completed"
	StateCancelled     State = "cancelled"
	StateErrored       State = "errored"
)

// Deps are the constructor-injected external collaborators. The session
// never reads ambient global state, only these handles.
type Deps struct {
	Backend   Backend
	Sheet     SheetAPI
	Loader    Loader
	BridgeSDK BridgeSDK
	Challenge ChallengeRunner
	Relay     FrameOpener
}

// Session orchestrates one payment-sheet session: strategy selection,
// configuration assembly, the callback-driven state machine, and the
// outbound token request.
//
// Construction is non-blocking: New returns immediately and initialization
// completes in the background. Callers observe the outcome through the
// ready and error events (both replayed to late listeners) or through
// Begin's synchronous error return.
type Session struct {
	emitter

	deps Deps
	opts Options

	mu       sync.Mutex
	state    State
	strategy Strategy
	config   *SessionConfig
	prices   *priceSync
	sheet    SheetSession
	initErr  *Error

	// Pricing addresses captured at Begin, restored on cancellation so an
	// abandoned session leaves no side effect on the shared model.
	preBilling  *Address
	preShipping *Address
}

// New builds a session and starts initialization. It never blocks and
// never panics on bad input; failures surface as an init error.
func New(deps Deps, opts Options) *Session {
	s := &Session{deps: deps, opts: opts, state: StateUninitialized}
	go s.initialize(context.Background())
	return s
}

func (s *Session) initialize(ctx context.Context) {
	facts := CapabilityFacts{Sheet: s.deps.Sheet, Action: s.opts.Action}
	if s.opts.Bridge != nil {
		facts.BridgeAuthorization = s.opts.Bridge.ClientAuthorization
	}

	strategy, serr := SelectStrategy(facts, s.deps)
	if serr != nil {
		s.failInit(serr)
		return
	}
	if err := strategy.Initialize(ctx); err != nil {
		s.failInit(initError(err))
		return
	}

	raw, err := s.deps.Backend.Get(ctx, routeInfo, map[string]string{"currency": s.opts.Currency})
	if err != nil {
		s.failInit(asSessionError(err))
		return
	}
	var info GatewayInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		s.failInit(asSessionError(err))
		return
	}

	cfg, aerr := assemble(s.opts, info, s.deps.Sheet)
	if aerr != nil {
		s.failInit(aerr)
		return
	}

	s.mu.Lock()
	s.strategy = strategy
	s.config = cfg
	if cfg.Pricing != nil {
		s.prices = newPriceSync(cfg.Pricing, cfg.I18n)
		cfg.Pricing.OnChange(s.onPricingChange)
	}
	s.state = StateReady
	s.mu.Unlock()

	metrics.SessionsReady.Inc()
	logger.Debug("Payment session ready", map[string]interface{}{
		"strategy": strategy.Name(),
		"country":  cfg.Country,
		"currency": cfg.Currency,
	})
	s.emitSticky(Event{Name: EventReady})
}

func (s *Session) failInit(e *Error) {
	s.mu.Lock()
	s.initErr = e
	s.state = StateErrored
	s.mu.Unlock()

	metrics.SessionsErrored.Inc()
	logger.Warn("Payment session failed to initialize", map[string]interface{}{
		"code": string(e.Code),
	})
	s.emitSticky(Event{Name: EventError, Err: e})
}

// Ready invokes fn once the session has finished initializing
// successfully. Late registrations fire immediately.
func (s *Session) Ready(fn func()) {
	s.On(EventReady, func(Event) { fn() })
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InitError returns the recorded initialization failure, if any.
func (s *Session) InitError() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initErr
}

// TotalLineItem returns the current grand total as presented to the sheet.
func (s *Session) TotalLineItem() LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prices != nil {
		return s.prices.snapshot().Total
	}
	if s.config != nil {
		return s.config.TotalItem
	}
	return LineItem{}
}

// LineItems returns the current secondary line items.
func (s *Session) LineItems() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prices != nil {
		return s.prices.snapshot().LineItems
	}
	if s.config != nil {
		return s.config.LineItems
	}
	return nil
}

// Begin constructs the external sheet session and presents it. Called
// against a session with a recorded initialization failure it returns an
// init-error value synchronously instead of emitting, so eager callers can
// branch without listeners.
func (s *Session) Begin() error {
	s.mu.Lock()
	if s.initErr != nil {
		e := initError(s.initErr)
		s.mu.Unlock()
		return e
	}
	if s.config == nil {
		s.mu.Unlock()
		return initError(&Error{Code: CodeInitError, Message: "the session has not finished initializing"})
	}

	req := s.buildPaymentRequestLocked()
	sheet := s.deps.Sheet.NewSession(req)
	sheet.SetHandler(&sessionHandler{s: s})
	s.sheet = sheet
	if s.config.Pricing != nil {
		s.preBilling = cloneAddress(s.config.Pricing.Address())
		s.preShipping = cloneAddress(s.config.Pricing.ShippingAddress())
	}
	s.state = StateActive
	s.mu.Unlock()

	metrics.SessionsStarted.Inc()
	sheet.Begin()
	return nil
}

// buildPaymentRequestLocked assembles the sheet request descriptor.
// Unrecognized extras go in first so assembled fields always win.
func (s *Session) buildPaymentRequestLocked() PaymentRequest {
	cfg := s.config
	req := make(PaymentRequest, len(cfg.Extra)+10)
	for key, value := range cfg.Extra {
		req[key] = value
	}

	total, lineItems := cfg.TotalItem, cfg.LineItems
	if s.prices != nil {
		snap := s.prices.snapshot()
		total, lineItems = snap.Total, snap.LineItems
	}

	req["countryCode"] = cfg.Country
	req["currencyCode"] = cfg.Currency
	req["total"] = total
	req["lineItems"] = lineItems
	req["merchantCapabilities"] = cfg.MerchantCapabilities
	req["supportedNetworks"] = cfg.SupportedNetworks
	if len(cfg.RequiredShippingContactFields) > 0 {
		req["requiredShippingContactFields"] = cfg.RequiredShippingContactFields
	}
	if cfg.Billing != nil {
		req["billingContact"] = cfg.Billing
	}
	if cfg.Shipping != nil {
		req["shippingContact"] = cfg.Shipping
	}
	if cfg.ApplicationData != "" {
		req["applicationData"] = cfg.ApplicationData
	}
	return req
}

func (s *Session) onPricingChange() {
	s.mu.Lock()
	prices := s.prices
	s.mu.Unlock()
	if prices == nil {
		return
	}
	snap := prices.snapshot()
	logger.Debug("Pricing changed", map[string]interface{}{
		"total": snap.Total.Amount,
	})
}

// currentUpdate derives the completion payload from the freshest state.
func (s *Session) currentUpdate() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prices != nil {
		snap := s.prices.snapshot()
		return Update{NewTotal: snap.Total, NewLineItems: snap.LineItems}
	}
	return Update{NewTotal: s.config.TotalItem, NewLineItems: s.config.LineItems}
}

// sessionHandler adapts the sheet callbacks onto the session. The sheet
// holds this, never the session itself, keeping the event surface private.
type sessionHandler struct {
	s *Session
}

func (h *sessionHandler) OnValidateMerchant(ev ValidateMerchantEvent) {
	s := h.s
	ctx := context.Background()

	merchantSession, err := s.strategy.ValidateMerchant(ctx, ev.ValidationURL, s.config.DisplayName)
	if err != nil {
		logger.Error(err, "Merchant validation failed", nil)
		s.emit(Event{Name: EventError, Err: authError(err)})
		return
	}
	s.sheet.CompleteMerchantValidation(merchantSession)
}

func (h *sessionHandler) OnPaymentMethodSelected(ev PaymentMethodSelectedEvent) {
	// Selection alone never forces an address-based reprice; the snapshot
	// is recomputed from whatever the pricing model currently holds.
	h.s.sheet.CompletePaymentMethodSelection(h.s.currentUpdate())
}

func (h *sessionHandler) OnShippingContactSelected(ev ShippingContactSelectedEvent) {
	s := h.s
	s.emit(Event{Name: EventShippingContactSelected, Data: ev})

	update := s.currentUpdate()
	if s.prices != nil && ev.ShippingContact != nil &&
		addressZoneChanged(s.config.Pricing.ShippingAddress(), ev.ShippingContact) {
		snap, err := s.prices.repriceWithShippingAddress(context.Background(), ev.ShippingContact)
		if err != nil {
			s.emit(Event{Name: EventError, Err: asSessionError(err)})
		}
		update = Update{NewTotal: snap.Total, NewLineItems: snap.LineItems}
	}

	update.NewShippingMethods = make([]ShippingMethod, 0)
	s.sheet.CompleteShippingContactSelection(update)
}

func (h *sessionHandler) OnShippingMethodSelected(ev ShippingMethodSelectedEvent) {
	s := h.s
	s.emit(Event{Name: EventShippingMethodSelected, Data: ev})

	update := s.currentUpdate()
	update.NewShippingMethods = make([]ShippingMethod, 0)
	s.sheet.CompleteShippingMethodSelection(update)
}

func (h *sessionHandler) OnPaymentAuthorized(ev PaymentAuthorizedEvent) {
	s := h.s
	ctx := context.Background()

	s.emit(Event{Name: EventPaymentAuthorized, Data: ev})

	s.mu.Lock()
	if s.state == StateCompleted {
		// One well-formed token request per successful session.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if ev.Payment.Token.PaymentData == nil {
		s.sheet.CompletePayment(StatusFailure)
		s.emit(Event{Name: EventError, Err: APIError("invalid-payment", "invalid payment token")})
		return
	}

	payload, err := s.strategy.TokenPayload(ctx, &ev.Payment, s.config)
	if err != nil {
		s.sheet.CompletePayment(StatusFailure)
		s.emit(Event{Name: EventError, Err: asSessionError(err)})
		return
	}

	token, err := s.deps.Backend.Post(ctx, routeToken, payload)
	if err != nil {
		metrics.TokenRequests.WithLabelValues("error").Inc()
		s.sheet.CompletePayment(StatusFailure)
		s.emit(Event{Name: EventError, Err: asSessionError(err)})
		return
	}

	s.mu.Lock()
	s.state = StateCompleted
	s.mu.Unlock()

	metrics.TokenRequests.WithLabelValues("ok").Inc()
	metrics.SessionsCompleted.Inc()
	s.sheet.CompletePayment(StatusSuccess)
	s.emit(Event{Name: EventToken, Data: token})
}

func (h *sessionHandler) OnCancel(ev CancelEvent) {
	s := h.s
	ctx := context.Background()

	s.emit(Event{Name: EventCancel, Data: ev})

	s.mu.Lock()
	pricing := s.config.Pricing
	preBilling, preShipping := s.preBilling, s.preShipping
	s.state = StateCancelled
	s.mu.Unlock()

	if pricing != nil {
		restored := false
		if addressesZoneDiffer(pricing.Address(), preBilling) {
			if err := pricing.SetAddress(ctx, preBilling); err != nil {
				logger.Error(err, "Failed to restore billing address after cancel", nil)
			}
			restored = true
		}
		if addressesZoneDiffer(pricing.ShippingAddress(), preShipping) {
			if err := pricing.SetShippingAddress(ctx, preShipping); err != nil {
				logger.Error(err, "Failed to restore shipping address after cancel", nil)
			}
			restored = true
		}
		if restored {
			if err := pricing.Reprice(ctx); err != nil {
				s.emit(Event{Name: EventError, Err: asSessionError(err)})
			}
		}
	}

	if err := s.strategy.Teardown(ctx); err != nil {
		logger.Error(err, "Strategy teardown failed", map[string]interface{}{
			"strategy": s.strategy.Name(),
		})
	}
	metrics.SessionsCancelled.Inc()
}

func addressesZoneDiffer(a, b *Address) bool {
	zone := func(addr *Address) string {
		if addr == nil {
			return normalizedZone("", "")
		}
		return normalizedZone(addr.PostalCode, addr.Country)
	}
	return zone(a) != zone(b)
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
