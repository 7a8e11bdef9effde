package checkout

import "encoding/json"

// OutcomeKind discriminates the possible results of creating a checkout
// session. The server response is decoded into exactly one variant at
// the network boundary instead of testing optional fields downstream.
type OutcomeKind int

const (
	// OutcomeError is a server rejection or malformed response
	OutcomeError OutcomeKind = iota
	// OutcomeFree means no payment is required and the order is finalized
	OutcomeFree
	// OutcomePaymentRequired carries a client secret for an embedded payment form
	OutcomePaymentRequired
	// OutcomeHostedRedirect carries a hosted checkout URL (legacy path)
	OutcomeHostedRedirect
)

// Outcome is the tagged result of a payment-intent or hosted-session
// request. Only the fields relevant to Kind are populated.
type Outcome struct {
	Kind         OutcomeKind
	OrderRef     string
	Message      string
	ClientSecret string
	CheckoutURL  string
	TestMode     bool
	Err          string
}

// outcomeWire mirrors the server's response shape, every field optional
type outcomeWire struct {
	IsFree       bool            `json:"isFree"`
	OrderID      string          `json:"orderId"`
	Message      string          `json:"message"`
	ClientSecret string          `json:"clientSecret"`
	CheckoutURL  string          `json:"checkoutUrl"`
	TestMode     bool            `json:"testMode"`
	Error        json.RawMessage `json:"error"`
}

// DecodeOutcome discriminates a raw checkout response body into exactly
// one outcome. Responses with neither a free marker, a client secret,
// nor a checkout URL are treated as server errors.
func DecodeOutcome(body []byte) *Outcome {
	var wire outcomeWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return &Outcome{Kind: OutcomeError, Err: "malformed checkout response"}
	}

	if len(wire.Error) > 0 {
		return &Outcome{Kind: OutcomeError, Err: decodeErrorMessage(wire.Error)}
	}

	switch {
	case wire.IsFree:
		return &Outcome{
			Kind:     OutcomeFree,
			OrderRef: wire.OrderID,
			Message:  wire.Message,
		}
	case wire.ClientSecret != "":
		return &Outcome{
			Kind:         OutcomePaymentRequired,
			ClientSecret: wire.ClientSecret,
			OrderRef:     wire.OrderID,
		}
	case wire.CheckoutURL != "":
		return &Outcome{
			Kind:        OutcomeHostedRedirect,
			CheckoutURL: wire.CheckoutURL,
			OrderRef:    wire.OrderID,
			TestMode:    wire.TestMode,
		}
	default:
		return &Outcome{Kind: OutcomeError, Err: "unexpected checkout response"}
	}
}

// decodeErrorMessage handles both error shapes the server may produce:
// a bare string or an object with a message field.
func decodeErrorMessage(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString
	}

	var asObject struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Message != "" {
		return asObject.Message
	}

	return "checkout failed"
}
