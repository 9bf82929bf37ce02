package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeInlineNamedKind(t *testing.T) {
	payload := json.RawMessage(`{"requestId":"r1","deal":{"id":"6c7c61c6-2e9f-4a1c-9e6a-1f2f2f2f2f2f","asset":"EURUSD_otc"}}`)
	tr, err := DecodeInline("successopenOrder", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := tr.(SuccessOpenOrder)
	if !ok {
		t.Fatalf("expected SuccessOpenOrder, got %T", tr)
	}
	if s.RequestID != "r1" {
		t.Fatalf("expected requestId r1, got %q", s.RequestID)
	}
}

func TestDecodeInlineUntaggedUpdateAssets(t *testing.T) {
	payload := json.RawMessage(`[{"asset":"EURUSD_otc","payout":92,"isOpen":true}]`)
	tr, err := DecodeInline("unknownEventName", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assets, ok := tr.(UpdateAssets)
	if !ok {
		t.Fatalf("expected UpdateAssets via untagged try-list, got %T", tr)
	}
	if len(assets) != 1 || assets[0].Asset != "EURUSD_otc" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
}

func TestDecodeInlineFallsBackToRaw(t *testing.T) {
	payload := json.RawMessage(`{"foo":"bar"}`)
	tr, err := DecodeInline("totallyUnknown", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := tr.(Raw)
	if !ok {
		t.Fatalf("expected Raw catch-all, got %T", tr)
	}
	if r.Info() != RawInfo("totallyUnknown") {
		t.Fatalf("expected raw info to preserve event name, got %v", r.Info())
	}
}

func TestDecodePhase2UsesPreviousInfo(t *testing.T) {
	payload := []byte(`{"asset":"EURUSD_otc","period":60,"history":[]}`)
	tr, err := DecodePhase2(InfoUpdateHistoryNew, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, ok := tr.(UpdateHistoryNew)
	if !ok {
		t.Fatalf("expected UpdateHistoryNew, got %T", tr)
	}
	if h.Asset != "EURUSD_otc" || h.Period != 60 {
		t.Fatalf("unexpected history: %+v", h)
	}
}

func TestDecodeInlineUpdateStreamSingleTuple(t *testing.T) {
	payload := json.RawMessage(`["AUS200_otc",1732830010,6436.06]`)
	tr, err := DecodeInline("updateStream", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream, ok := tr.(UpdateStream)
	if !ok {
		t.Fatalf("expected UpdateStream, got %T", tr)
	}
	if len(stream) != 1 {
		t.Fatalf("expected a single tick, got %d", len(stream))
	}
	tick := stream[0]
	if tick.Asset != "AUS200_otc" {
		t.Fatalf("expected asset AUS200_otc, got %q", tick.Asset)
	}
	if tick.Timestamp != 1732830010 {
		t.Fatalf("expected timestamp 1732830010, got %v", tick.Timestamp)
	}
	if tick.Price != 6436.06 {
		t.Fatalf("expected price 6436.06, got %v", tick.Price)
	}
}

func TestDecodePhase2UpdateStreamBatchOfTuples(t *testing.T) {
	payload := []byte(`[["AUS200_otc",1732830010,6436.06],["AUS200_otc",1732830011,6436.50]]`)
	tr, err := DecodePhase2(InfoUpdateStream, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stream, ok := tr.(UpdateStream)
	if !ok {
		t.Fatalf("expected UpdateStream, got %T", tr)
	}
	if len(stream) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(stream))
	}
	if stream[0].Price != 6436.06 || stream[1].Price != 6436.50 {
		t.Fatalf("unexpected ticks: %+v", stream)
	}
}

func TestEncodeFrameChangeSymbol(t *testing.T) {
	body, err := EncodeFrame(ChangeSymbol{Asset: "EURUSD_otc", Period: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(body), &arr); err != nil {
		t.Fatalf("unmarshalling frame body: %v", err)
	}
	if len(arr) != 2 {
		t.Fatalf("expected 2-element frame body, got %d", len(arr))
	}
	var name string
	if err := json.Unmarshal(arr[0], &name); err != nil {
		t.Fatalf("unmarshalling name: %v", err)
	}
	if name != "changeSymbol" {
		t.Fatalf("expected changeSymbol, got %q", name)
	}

	var obj struct {
		Asset  string `json:"asset"`
		Period int    `json:"period"`
	}
	if err := json.Unmarshal(arr[1], &obj); err != nil {
		t.Fatalf("expected changeSymbol payload to be a {asset,period} object, got %s: %v", arr[1], err)
	}
	if obj.Asset != "EURUSD_otc" || obj.Period != 1 {
		t.Fatalf("unexpected changeSymbol payload: %+v", obj)
	}
}
