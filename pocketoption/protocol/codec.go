package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
)

// untaggedTryOrder is the fixed, disambiguation-friendly order phase-1
// tries candidate shapes in. UpdateAssets, UpdateHistoryNew,
// UpdateStream and UpdateBalance share enough shape that a generic
// "try each and keep the first that both unmarshals cleanly and
// round-trips its required fields" approach is what the upstream
// source relies on; this order is load-bearing and must not be
// reordered.
var untaggedTryOrder = []string{"UpdateAssets", "UpdateHistoryNew", "UpdateStream", "UpdateBalance"}

// namedKinds maps every event name the codec recognizes outright (no
// ambiguity, no need for phase-1's try-list) to a decode function.
var namedKinds = map[string]func(json.RawMessage) (Transfer, error){
	"successcloseOrder": func(b json.RawMessage) (Transfer, error) {
		var v SuccessCloseOrder
		return v, json.Unmarshal(b, &v)
	},
	"successopenOrder": func(b json.RawMessage) (Transfer, error) {
		var v SuccessOpenOrder
		return v, json.Unmarshal(b, &v)
	},
	"successauth": func(b json.RawMessage) (Transfer, error) {
		return SuccessAuth{Raw: b}, nil
	},
	"failOpenOrder": func(b json.RawMessage) (Transfer, error) {
		var v FailOpenOrder
		return v, json.Unmarshal(b, &v)
	},
	"updateOpenedDeals": func(b json.RawMessage) (Transfer, error) {
		var v UpdateOpenedDeals
		return v, json.Unmarshal(b, &v)
	},
	"updateClosedDeals": func(b json.RawMessage) (Transfer, error) {
		var v UpdateClosedDeals
		return v, json.Unmarshal(b, &v)
	},
}

// DecodeInline implements phase 1 of the message codec: decode an
// inline 42[name,payload] event. Named, unambiguous event names decode
// directly; everything else falls back to the speculative untagged
// try-list, and finally to the Raw catch-all if nothing matches.
func DecodeInline(name string, payload json.RawMessage) (Transfer, error) {
	if decode, ok := namedKinds[name]; ok {
		t, err := decode(payload)
		if err != nil {
			return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
		}
		return t, nil
	}
	if t, ok := tryUntagged(payload); ok {
		return t, nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
	}
	return Raw{Name: name, Payload: payload}, nil
}

// DecodePhase2 implements phase 2 of the message codec: a binary frame
// whose payload type is ambiguous without the preceding 451- event
// name. previousInfo selects the target variant directly.
func DecodePhase2(previousInfo InfoKind, payload []byte) (Transfer, error) {
	switch previousInfo {
	case InfoUpdateAssets:
		var v UpdateAssets
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
		}
		return v, nil
	case InfoUpdateHistoryNew:
		var v UpdateHistoryNew
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
		}
		return v, nil
	case InfoUpdateStream:
		var v UpdateStream
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
		}
		return v, nil
	case InfoUpdateBalance:
		var v UpdateBalance
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
		}
		return v, nil
	default:
		if decode, ok := namedKinds[previousInfo.String()]; ok {
			t, err := decode(payload)
			if err != nil {
				return nil, &pocketerr.MessageParseError{Body: string(payload), Err: err}
			}
			return t, nil
		}
		return Raw{Name: previousInfo.String(), Payload: payload}, nil
	}
}

// tryUntagged attempts each shape in untaggedTryOrder in turn, keeping
// the first that both unmarshals without error and satisfies that
// shape's minimal structural requirement (so e.g. an empty object
// doesn't falsely match every variant in the list).
func tryUntagged(payload json.RawMessage) (Transfer, bool) {
	for _, name := range untaggedTryOrder {
		switch name {
		case "UpdateAssets":
			var v UpdateAssets
			if err := json.Unmarshal(payload, &v); err == nil && len(v) > 0 && v[0].Asset != "" {
				return v, true
			}
		case "UpdateHistoryNew":
			var v UpdateHistoryNew
			if err := json.Unmarshal(payload, &v); err == nil && v.Asset != "" {
				return v, true
			}
		case "UpdateStream":
			var v UpdateStream
			if err := json.Unmarshal(payload, &v); err == nil && len(v) > 0 && v[0].Asset != "" {
				return v, true
			}
		case "UpdateBalance":
			var probe struct {
				Balance *float64 `json:"balance"`
			}
			var v UpdateBalance
			if err := json.Unmarshal(payload, &probe); err == nil && probe.Balance != nil {
				if err := json.Unmarshal(payload, &v); err == nil {
					return v, true
				}
			}
		}
	}
	return nil, false
}

// EncodeFrame renders a Transfer into the `42[name,payload]` inline
// event frame body (without the leading "42" Engine.IO prefix, which
// belongs to package wire).
func EncodeFrame(t Transfer) (string, error) {
	name, payload, err := t.Encode()
	if err != nil {
		return "", fmt.Errorf("encoding transfer %s: %w", t.Info(), err)
	}
	body, err := json.Marshal([]json.RawMessage{mustRawString(name), payload})
	if err != nil {
		return "", fmt.Errorf("marshalling frame body: %w", err)
	}
	return string(body), nil
}

func mustRawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
