package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bjoelf/pocketoption-core/pocketoption/model"
)

// Transfer is the tagged union of every concrete message payload the
// codec can produce. Each variant owns its parsed body and exposes the
// three capabilities below. spec.md §3 also names a fourth, "a
// user-request accessor for the reconnect-callback path" — that
// capability is deliberately not a Transfer method here: the §4.E
// router redesign keeps every waiter's intent on the caller side, so
// there is no boxed user-request object left on a variant to expose.
// The reconnect callback gets what it needs from
// session.State.StreamAssets() instead (see client/reconnect.go),
// which is the asset-subscription state the original accessor would
// have been used to recover.
type Transfer interface {
	Info() InfoKind
	// ErrorInfo returns the kinds whose waiters should also be woken
	// when this transfer is itself an error variant. Nil for every
	// non-error variant.
	ErrorInfo() []InfoKind
	// Encode renders the outbound Socket.IO event name and JSON
	// payload for this transfer. Only meaningful for variants the
	// client sends; inbound-only variants return an error if asked.
	Encode() (name string, payload []byte, err error)
}

// UpdateStream carries one or more ticks for one asset, as sent either
// inline (42[...]) or announced+binary (451-[...] + binary frame).
type UpdateStream []model.Tick

func (UpdateStream) Info() InfoKind        { return InfoUpdateStream }
func (UpdateStream) ErrorInfo() []InfoKind { return nil }
func (UpdateStream) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateStream is never sent by the client")
}

// UnmarshalJSON accepts either a single [asset,time,price] tuple — the
// shape the live stream actually sends per tick, e.g.
// ["AUS200_otc",1732830010,6436.06] — or an array of such tuples, seen
// on batched announcements. model.Tick's own UnmarshalJSON always
// expects one tuple, so the two shapes are told apart by peeking at
// the first element: a JSON string means the whole payload is one
// tuple, anything else means it's already an array of tuples.
func (u *UpdateStream) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("decoding updateStream: %w", err)
	}
	if len(elems) == 0 {
		*u = nil
		return nil
	}

	var probe string
	if err := json.Unmarshal(elems[0], &probe); err == nil {
		var tick model.Tick
		if err := json.Unmarshal(data, &tick); err != nil {
			return fmt.Errorf("decoding updateStream tick: %w", err)
		}
		*u = UpdateStream{tick}
		return nil
	}

	ticks := make([]model.Tick, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &ticks[i]); err != nil {
			return fmt.Errorf("decoding updateStream tick %d: %w", i, err)
		}
	}
	*u = UpdateStream(ticks)
	return nil
}

// UpdateHistoryNew is the server's priming response after a
// ChangeSymbol request: recent history for the requested asset/period.
type UpdateHistoryNew struct {
	Asset   string       `json:"asset"`
	Period  int          `json:"period"`
	History []model.Tick `json:"history"`
}

func (UpdateHistoryNew) Info() InfoKind        { return InfoUpdateHistoryNew }
func (UpdateHistoryNew) ErrorInfo() []InfoKind { return nil }
func (UpdateHistoryNew) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateHistoryNew is never sent by the client")
}

// AssetDescriptor is one row of the UpdateAssets payload: an asset's
// current payout percentage and open/closed status.
type AssetDescriptor struct {
	Asset  string `json:"asset"`
	Payout int    `json:"payout"`
	IsOpen bool   `json:"isOpen"`
}

// UpdateAssets rebuilds the payout table.
type UpdateAssets []AssetDescriptor

func (UpdateAssets) Info() InfoKind        { return InfoUpdateAssets }
func (UpdateAssets) ErrorInfo() []InfoKind { return nil }
func (UpdateAssets) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateAssets is never sent by the client")
}

// UpdateBalance carries the last observed account balance.
type UpdateBalance struct {
	Balance float64 `json:"balance"`
	IsDemo  int     `json:"isDemo"`
}

func (UpdateBalance) Info() InfoKind        { return InfoUpdateBalance }
func (UpdateBalance) ErrorInfo() []InfoKind { return nil }
func (UpdateBalance) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateBalance is never sent by the client")
}

// SuccessCloseOrder carries the deal(s) the server just closed.
type SuccessCloseOrder struct {
	Deals []model.Deal `json:"deals"`
}

func (SuccessCloseOrder) Info() InfoKind        { return InfoSuccesscloseOrder }
func (SuccessCloseOrder) ErrorInfo() []InfoKind { return nil }
func (SuccessCloseOrder) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("successcloseOrder is never sent by the client")
}

// SuccessOpenOrder acknowledges a buy/sell request; RequestID lets the
// facade match it against its own originating OpenOrder.
type SuccessOpenOrder struct {
	RequestID string     `json:"requestId"`
	Deal      model.Deal `json:"deal"`
}

func (SuccessOpenOrder) Info() InfoKind        { return InfoSuccessopenOrder }
func (SuccessOpenOrder) ErrorInfo() []InfoKind { return nil }
func (SuccessOpenOrder) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("successopenOrder is never sent by the client")
}

// SuccessAuth acknowledges the auth envelope.
type SuccessAuth struct {
	Raw json.RawMessage `json:"-"`
}

func (SuccessAuth) Info() InfoKind        { return InfoSuccessAuth }
func (SuccessAuth) ErrorInfo() []InfoKind { return nil }
func (SuccessAuth) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("successauth is never sent by the client")
}

// ChangeSymbol is an outbound request that primes the server to begin
// streaming an asset at the given candle period (seconds).
type ChangeSymbol struct {
	Asset  string `json:"asset"`
	Period int    `json:"period"`
}

func (ChangeSymbol) Info() InfoKind        { return InfoChangeSymbol }
func (ChangeSymbol) ErrorInfo() []InfoKind { return nil }
func (c ChangeSymbol) Encode() (string, []byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", nil, fmt.Errorf("encoding changeSymbol: %w", err)
	}
	return wireNames["ChangeSymbol"], payload, nil
}

// SubscribeSymbol is an outbound request to subscribe to raw tick
// updates for an asset.
type SubscribeSymbol struct {
	Asset string `json:"asset"`
}

func (SubscribeSymbol) Info() InfoKind        { return InfoSubscribeSymbol }
func (SubscribeSymbol) ErrorInfo() []InfoKind { return nil }
func (s SubscribeSymbol) Encode() (string, []byte, error) {
	payload, err := json.Marshal(s.Asset)
	if err != nil {
		return "", nil, fmt.Errorf("encoding subscribeSymbol: %w", err)
	}
	return wireNames["SubscribeSymbol"], payload, nil
}

// LoadHistoryPeriod is an outbound request for a window of history.
type LoadHistoryPeriod struct {
	Asset  string `json:"asset"`
	Period int    `json:"period"`
	Offset int    `json:"offset"`
}

func (LoadHistoryPeriod) Info() InfoKind        { return InfoLoadHistoryPeriod }
func (LoadHistoryPeriod) ErrorInfo() []InfoKind { return nil }
func (l LoadHistoryPeriod) Encode() (string, []byte, error) {
	payload, err := json.Marshal(l)
	if err != nil {
		return "", nil, fmt.Errorf("encoding loadHistoryPeriod: %w", err)
	}
	return wireNames["LoadHistoryPeriod"], payload, nil
}

// OpenOrder is an outbound buy/sell request. OptionType is always 100
// on the wire; the upstream source never explains why and we preserve
// the magic number rather than guess at its meaning.
type OpenOrder struct {
	Asset      string  `json:"asset"`
	Amount     float64 `json:"amount"`
	Action     string  `json:"action"` // "call" or "put"
	IsDemo     int     `json:"isDemo"`
	RequestID  string  `json:"requestId"`
	Time       int     `json:"time"`
	OptionType int     `json:"optionType"`
}

// OptionTypeTurbo is the magic constant observed in every OpenOrder the
// upstream source ever sent. "Check why it always is 100" per the
// original author; preserved, not fixed.
const OptionTypeTurbo = 100

func (OpenOrder) Info() InfoKind        { return InfoOpenOrder }
func (OpenOrder) ErrorInfo() []InfoKind { return nil }
func (o OpenOrder) Encode() (string, []byte, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return "", nil, fmt.Errorf("encoding openOrder: %w", err)
	}
	return wireNames["OpenOrder"], payload, nil
}

// FailOpenOrder reports that a buy/sell request was rejected. Per
// spec.md's error-info contract, this also wakes any waiter on
// SuccessopenOrder so a caller blocked on the happy path unblocks with
// the error instead of timing out.
type FailOpenOrder struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason"`
}

func (FailOpenOrder) Info() InfoKind        { return InfoFailOpenOrder }
func (FailOpenOrder) ErrorInfo() []InfoKind { return []InfoKind{InfoSuccessopenOrder} }
func (FailOpenOrder) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("failOpenOrder is never sent by the client")
}

// UpdateOpenedDeals replaces the opened-deals list wholesale; it is
// authoritative from the server side.
type UpdateOpenedDeals struct {
	Deals []model.Deal `json:"deals"`
}

func (UpdateOpenedDeals) Info() InfoKind        { return InfoUpdateOpenedDeals }
func (UpdateOpenedDeals) ErrorInfo() []InfoKind { return nil }
func (UpdateOpenedDeals) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateOpenedDeals is never sent by the client")
}

// UpdateClosedDeals merges into the closed-deals list by id; entries
// already present are left unchanged.
type UpdateClosedDeals struct {
	Deals []model.Deal `json:"deals"`
}

func (UpdateClosedDeals) Info() InfoKind        { return InfoUpdateClosedDeals }
func (UpdateClosedDeals) ErrorInfo() []InfoKind { return nil }
func (UpdateClosedDeals) Encode() (string, []byte, error) {
	return "", nil, fmt.Errorf("updateClosedDeals is never sent by the client")
}

// GetCandles is an outbound request for a block of candles.
type GetCandles struct {
	Asset  string `json:"asset"`
	Period int    `json:"period"`
	Offset int    `json:"offset"`
}

func (GetCandles) Info() InfoKind        { return InfoGetCandles }
func (GetCandles) ErrorInfo() []InfoKind { return nil }
func (g GetCandles) Encode() (string, []byte, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return "", nil, fmt.Errorf("encoding getCandles: %w", err)
	}
	return wireNames["GetCandles"], payload, nil
}

// Raw is the catch-all for an event name the codec has no typed
// variant for. It still routes through the router under RawInfo(name)
// instead of being dropped.
type Raw struct {
	Name    string
	Payload json.RawMessage
}

func (r Raw) Info() InfoKind        { return RawInfo(r.Name) }
func (Raw) ErrorInfo() []InfoKind { return nil }
func (r Raw) Encode() (string, []byte, error) {
	return r.Name, r.Payload, nil
}
