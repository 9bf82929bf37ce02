// Package wire implements the Engine.IO/Socket.IO v4 framing layer: the
// direct websocket dial (no polling probe sequence, see Dial) and the
// string-prefix frame dispatch,
// grounded on the Engine.IO client found in the example pack
// (internal p2c-socket), generalized from its hardcoded single-event
// loop into a typed Frame value the protocol codec can switch on.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FrameKind tags the recognized Engine.IO/Socket.IO frame shapes.
type FrameKind int

const (
	FrameOpen FrameKind = iota
	FrameConnect
	FramePing
	FramePong
	FrameEvent          // 42[name,payload]
	FrameBinaryAnnounce // 451-[name,{_placeholder:true,num:0}]
	FrameClose
)

// Frame is a single decoded text frame from the Engine.IO stream.
type Frame struct {
	Kind    FrameKind
	SID     string          // set on FrameOpen
	Name    string          // set on FrameEvent, FrameBinaryAnnounce
	Payload json.RawMessage // set on FrameEvent
}

type openBody struct {
	SID          string `json:"sid"`
	PingInterval int64  `json:"pingInterval"`
	PingTimeout  int64  `json:"pingTimeout"`
}

// ParseTextFrame classifies one inbound text frame per the table in
// spec.md §4.B.
func ParseTextFrame(s string) (Frame, error) {
	switch {
	case strings.HasPrefix(s, "0"):
		var body openBody
		if err := json.Unmarshal([]byte(s[1:]), &body); err != nil {
			return Frame{}, fmt.Errorf("parsing open frame: %w", err)
		}
		return Frame{Kind: FrameOpen, SID: body.SID}, nil

	case strings.HasPrefix(s, "40"):
		return Frame{Kind: FrameConnect}, nil

	case s == "2":
		return Frame{Kind: FramePing}, nil

	case s == "3":
		return Frame{Kind: FramePong}, nil

	case strings.HasPrefix(s, "451-"):
		name, err := parseAnnounceName(s[len("451-"):])
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: FrameBinaryAnnounce, Name: name}, nil

	case strings.HasPrefix(s, "42"):
		name, payload, err := parseEvent(s[len("42"):])
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: FrameEvent, Name: name, Payload: payload}, nil

	case strings.HasPrefix(s, "41"):
		return Frame{Kind: FrameClose}, nil

	default:
		return Frame{}, fmt.Errorf("unrecognized frame prefix in %q", truncate(s))
	}
}

// parseEvent splits a `[name,payload]` array body into its event name
// and raw payload.
func parseEvent(body string) (string, json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(body), &arr); err != nil {
		return "", nil, fmt.Errorf("parsing event array: %w", err)
	}
	if len(arr) == 0 {
		return "", nil, fmt.Errorf("empty event array")
	}
	var name string
	if err := json.Unmarshal(arr[0], &name); err != nil {
		return "", nil, fmt.Errorf("parsing event name: %w", err)
	}
	var payload json.RawMessage
	if len(arr) > 1 {
		payload = arr[1]
	}
	return name, payload, nil
}

// parseAnnounceName extracts the event name from a 451- announcement
// body shaped `[name,{_placeholder:true,num:0}]`.
func parseAnnounceName(body string) (string, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(body), &arr); err != nil {
		return "", fmt.Errorf("parsing binary-announce array: %w", err)
	}
	if len(arr) == 0 {
		return "", fmt.Errorf("empty binary-announce array")
	}
	var name string
	if err := json.Unmarshal(arr[0], &name); err != nil {
		return "", fmt.Errorf("parsing binary-announce name: %w", err)
	}
	return name, nil
}

// EncodeEvent renders an outbound `42[name,payload]` frame body.
func EncodeEvent(name string, payload json.RawMessage) (string, error) {
	if payload == nil {
		payload = json.RawMessage("null")
	}
	body, err := json.Marshal([]json.RawMessage{mustQuote(name), payload})
	if err != nil {
		return "", fmt.Errorf("encoding event %s: %w", name, err)
	}
	return "42" + string(body), nil
}

func mustQuote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func truncate(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
