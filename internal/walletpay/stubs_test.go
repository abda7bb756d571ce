package walletpay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
)

// Shared collaborator stubs for the session layer tests.

type sheetAPIStub struct {
	versions map[int]bool
	canPay   bool

	mu       sync.Mutex
	sessions []*sheetSessionStub
}

func newSheetAPIStub(versions ...int) *sheetAPIStub {
	supported := make(map[int]bool, len(versions))
	for _, v := range versions {
		supported[v] = true
	}
	return &sheetAPIStub{versions: supported, canPay: true}
}

func (s *sheetAPIStub) SupportsVersion(version int) bool { return s.versions[version] }
func (s *sheetAPIStub) CanMakePayments() bool            { return s.canPay }

func (s *sheetAPIStub) NewSession(req PaymentRequest) SheetSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := &sheetSessionStub{request: req}
	s.sessions = append(s.sessions, session)
	return session
}

func (s *sheetAPIStub) lastSession() *sheetSessionStub {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return nil
	}
	return s.sessions[len(s.sessions)-1]
}

type sheetSessionStub struct {
	request PaymentRequest
	handler SessionHandler
	began   bool

	merchantSessions []json.RawMessage
	methodUpdates    []Update
	contactUpdates   []Update
	shippingUpdates  []Update
	completions      []Status
}

func (s *sheetSessionStub) SetHandler(h SessionHandler) { s.handler = h }
func (s *sheetSessionStub) Begin()                      { s.began = true }

func (s *sheetSessionStub) CompleteMerchantValidation(merchantSession json.RawMessage) {
	s.merchantSessions = append(s.merchantSessions, merchantSession)
}

func (s *sheetSessionStub) CompletePaymentMethodSelection(u Update) {
	s.methodUpdates = append(s.methodUpdates, u)
}

func (s *sheetSessionStub) CompleteShippingContactSelection(u Update) {
	s.contactUpdates = append(s.contactUpdates, u)
}

func (s *sheetSessionStub) CompleteShippingMethodSelection(u Update) {
	s.shippingUpdates = append(s.shippingUpdates, u)
}

func (s *sheetSessionStub) CompletePayment(status Status) {
	s.completions = append(s.completions, status)
}

type backendCall struct {
	route string
	data  interface{}
}

type backendStub struct {
	mu    sync.Mutex
	gets  []backendCall
	posts []backendCall

	infoResponse  json.RawMessage
	getErr        error
	startResponse json.RawMessage
	startErr      error
	tokenResponse json.RawMessage
	tokenErr      error
}

func newBackendStub() *backendStub {
	return &backendStub{
		infoResponse: json.RawMessage(`{
			"countries": ["US", "CA"],
			"currencies": ["USD", "CAD"],
			"merchantCapabilities": ["supports3DS"],
			"supportedNetworks": ["visa", "masterCard", "mir"],
			"displayName": "Test Store",
			"applicationData": "app-data"
		}`),
		startResponse: json.RawMessage(`{"merchantSessionIdentifier":"ms-1"}`),
		tokenResponse: json.RawMessage(`{"id":"tok-1","type":"wallet_pay"}`),
	}
}

func (b *backendStub) Get(ctx context.Context, route string, data map[string]string) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gets = append(b.gets, backendCall{route: route, data: data})
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.infoResponse, nil
}

func (b *backendStub) Post(ctx context.Context, route string, data interface{}) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append(b.posts, backendCall{route: route, data: data})
	switch route {
	case routeStart:
		return b.startResponse, b.startErr
	case routeToken:
		return b.tokenResponse, b.tokenErr
	}
	return json.RawMessage(`{}`), nil
}

func (b *backendStub) postsTo(route string) []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var calls []backendCall
	for _, call := range b.posts {
		if call.route == route {
			calls = append(calls, call)
		}
	}
	return calls
}

type loaderStub struct {
	scripts []string
	styles  []string
	err     error
}

func (l *loaderStub) LoadScript(ctx context.Context, url string, attrs map[string]string) error {
	l.scripts = append(l.scripts, url)
	return l.err
}

func (l *loaderStub) LoadStyle(ctx context.Context, url string, attrs map[string]string) error {
	l.styles = append(l.styles, url)
	return l.err
}

type pricingStub struct {
	mu sync.Mutex

	priced   bool
	total    decimal.Decimal
	subtotal decimal.Decimal
	discount decimal.Decimal
	giftCard decimal.Decimal
	tax      decimal.Decimal

	address         *Address
	shippingAddress *Address

	repriceCount int
	repriceErr   error
	onReprice    func(p *pricingStub)

	listeners []func()
}

func newPricingStub(total string) *pricingStub {
	return &pricingStub{priced: true, total: decimal.RequireFromString(total)}
}

func (p *pricingStub) HasPrice() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.priced
}

func (p *pricingStub) Total() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *pricingStub) Subtotal() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subtotal
}

func (p *pricingStub) Discount() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discount
}

func (p *pricingStub) GiftCard() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.giftCard
}

func (p *pricingStub) Tax() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tax
}

func (p *pricingStub) Address() *Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.address
}

func (p *pricingStub) ShippingAddress() *Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shippingAddress
}

func (p *pricingStub) SetAddress(ctx context.Context, a *Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.address = a
	return nil
}

func (p *pricingStub) SetShippingAddress(ctx context.Context, a *Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shippingAddress = a
	return nil
}

func (p *pricingStub) Reprice(ctx context.Context) error {
	p.mu.Lock()
	p.repriceCount++
	hook := p.onReprice
	err := p.repriceErr
	p.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (p *pricingStub) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *pricingStub) reprices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repriceCount
}

type bridgeSDKStub struct {
	client    *bridgeClientStub
	createErr error
}

func newBridgeSDKStub() *bridgeSDKStub {
	return &bridgeSDKStub{
		client: &bridgeClientStub{
			deviceData: "device-data-1",
			wallet: &bridgeWalletStub{
				validationResponse: json.RawMessage(`{"merchantSessionIdentifier":"bridge-ms"}`),
				tokenizeResponse:   map[string]interface{}{"nonce": "nonce-1"},
			},
		},
	}
}

func (s *bridgeSDKStub) CreateClient(ctx context.Context, authorization string) (BridgeClient, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.client.authorization = authorization
	return s.client, nil
}

type bridgeClientStub struct {
	authorization string
	deviceData    string
	wallet        *bridgeWalletStub
}

func (c *bridgeClientStub) CollectDeviceData(ctx context.Context) (string, error) {
	return c.deviceData, nil
}

func (c *bridgeClientStub) CreateWalletClient(ctx context.Context) (BridgeWalletClient, error) {
	return c.wallet, nil
}

type bridgeWalletStub struct {
	validations        []string
	tokenized          []PaymentToken
	tornDown           bool
	validationResponse json.RawMessage
	tokenizeResponse   interface{}
	tokenizeErr        error
}

func (w *bridgeWalletStub) PerformValidation(ctx context.Context, validationURL, displayName string) (json.RawMessage, error) {
	w.validations = append(w.validations, validationURL)
	return w.validationResponse, nil
}

func (w *bridgeWalletStub) Tokenize(ctx context.Context, token PaymentToken) (interface{}, error) {
	w.tokenized = append(w.tokenized, token)
	return w.tokenizeResponse, w.tokenizeErr
}

func (w *bridgeWalletStub) Teardown(ctx context.Context) error {
	w.tornDown = true
	return nil
}

type challengeRunnerStub struct {
	tokens   []string
	response json.RawMessage
	err      error
}

func (r *challengeRunnerStub) RunChallenge(ctx context.Context, challengeToken string) (json.RawMessage, error) {
	r.tokens = append(r.tokens, challengeToken)
	if r.err != nil {
		return nil, r.err
	}
	return r.response, nil
}

type frameStub struct {
	results chan json.RawMessage
	errs    chan error
	closed  bool
}

func newFrameStub() *frameStub {
	return &frameStub{
		results: make(chan json.RawMessage, 1),
		errs:    make(chan error, 1),
	}
}

func (f *frameStub) Results() <-chan json.RawMessage { return f.results }
func (f *frameStub) Errors() <-chan error            { return f.errs }
func (f *frameStub) Close()                          { f.closed = true }

type frameOpenerStub struct {
	frame   *frameStub
	paths   []string
	payload map[string]string
	err     error
}

func (o *frameOpenerStub) OpenFrame(path string, payload map[string]string) (Frame, error) {
	o.paths = append(o.paths, path)
	o.payload = payload
	if o.err != nil {
		return nil, o.err
	}
	return o.frame, nil
}
