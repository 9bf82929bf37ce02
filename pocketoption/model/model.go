// Package model holds the plain data records shared between the
// protocol codec and the session state container: deals, ticks, and
// payout entries. None of it knows about the wire format or the event
// loop; it is pure data following the legacy convert* struct style from
// the adapter this module grew out of.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Deal is a trade record. Id is a 128-bit UUID, as required by
// spec.md's data model; timestamps are fractional epoch seconds to
// preserve the server's exact decimal precision.
type Deal struct {
	ID            uuid.UUID `json:"id"`
	Asset         string    `json:"asset"`
	Amount        float64   `json:"amount"`
	Profit        float64   `json:"profit"`
	PercentProfit float64   `json:"percentProfit"`
	PercentLoss   float64   `json:"percentLoss"`
	OpenTime      float64   `json:"openTimestamp"`
	CloseTime     float64   `json:"closeTimestamp"`
	OptionType    int       `json:"optionType"`
	IsDemo        bool      `json:"isDemo"`
	Currency      string    `json:"currency"`
}

// Tick is a single (asset, time, price) observation. The server sends
// it as a positional tuple, e.g. ["AUS200_otc",1732830010,6436.06], not
// a JSON object, so Tick supplies its own UnmarshalJSON.
type Tick struct {
	Asset     string
	Timestamp float64
	Price     float64
}

// UnmarshalJSON decodes the [asset, time, price] tuple the server
// sends in place of a JSON object. The time element goes through
// ParseEpochSeconds to preserve its full fractional precision.
func (t *Tick) UnmarshalJSON(data []byte) error {
	var tuple [3]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("decoding tick tuple: %w", err)
	}
	if err := json.Unmarshal(tuple[0], &t.Asset); err != nil {
		return fmt.Errorf("decoding tick asset: %w", err)
	}
	var rawTime float64
	if err := json.Unmarshal(tuple[1], &rawTime); err != nil {
		return fmt.Errorf("decoding tick time: %w", err)
	}
	ts, err := ParseEpochSeconds(rawTime)
	if err != nil {
		return fmt.Errorf("decoding tick time: %w", err)
	}
	t.Timestamp = ts
	if err := json.Unmarshal(tuple[2], &t.Price); err != nil {
		return fmt.Errorf("decoding tick price: %w", err)
	}
	return nil
}

// PayoutEntry is one row of the per-asset payout table.
type PayoutEntry struct {
	Asset  string `json:"asset"`
	Payout int    `json:"payout"`
	IsOpen bool   `json:"isOpen"`
}
