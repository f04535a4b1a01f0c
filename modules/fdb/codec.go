package fdb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Textual record layout: five name=value fields in fixed order, separated
// by commas. Handles are hexadecimal with a 0x prefix, the MAC is in its
// canonical colon form and the timestamp is a full-width unsigned
// decimal, so the encoding round-trips every value a record can hold.
const (
	fieldSwitchID     = "switch_id"
	fieldBridgeDomain = "bv_id"
	fieldMAC          = "mac"
	fieldBridgePort   = "bridge_port_id"
	fieldLastSeen     = "last_seen"

	fieldSep = ","
	kvSep    = "="
)

var fieldOrder = [...]string{
	fieldSwitchID,
	fieldBridgeDomain,
	fieldMAC,
	fieldBridgePort,
	fieldLastSeen,
}

// Serialize encodes the record as a single deterministic line of text.
func (m Record) Serialize() string {
	return strings.Join([]string{
		fmt.Sprintf("%s=0x%x", fieldSwitchID, m.switchID),
		fmt.Sprintf("%s=0x%x", fieldBridgeDomain, m.bridgeDomain),
		fmt.Sprintf("%s=%s", fieldMAC, m.mac),
		fmt.Sprintf("%s=0x%x", fieldBridgePort, m.bridgePort),
		fmt.Sprintf("%s=%s", fieldLastSeen, strconv.FormatUint(m.lastActivity, 10)),
	}, fieldSep)
}

// Deserialize parses text produced by Serialize. Malformed text is
// rejected with a *FormatError; a record is reconstructed only when every
// field parses, so no field can come back silently defaulted or
// truncated.
func Deserialize(text string) (Record, error) {
	parts := strings.Split(text, fieldSep)
	if len(parts) != len(fieldOrder) {
		return Record{}, &FormatError{
			Text:  text,
			cause: fmt.Errorf("expected %d fields, got %d", len(fieldOrder), len(parts)),
		}
	}

	values := [len(fieldOrder)]string{}
	for i, part := range parts {
		name, value, ok := strings.Cut(part, kvSep)
		if !ok {
			return Record{}, &FormatError{
				Field: fieldOrder[i],
				Text:  part,
				cause: errors.New("missing '=' separator"),
			}
		}
		if name != fieldOrder[i] {
			return Record{}, &FormatError{
				Field: fieldOrder[i],
				Text:  part,
				cause: fmt.Errorf("unexpected field %q", name),
			}
		}
		values[i] = value
	}

	switchID, err := parseHandle(fieldSwitchID, values[0])
	if err != nil {
		return Record{}, err
	}
	bridgeDomain, err := parseHandle(fieldBridgeDomain, values[1])
	if err != nil {
		return Record{}, err
	}
	mac, err := ParseMAC(values[2])
	if err != nil {
		return Record{}, &FormatError{Field: fieldMAC, Text: values[2], cause: err}
	}
	bridgePort, err := parseHandle(fieldBridgePort, values[3])
	if err != nil {
		return Record{}, err
	}
	// ParseUint covers the whole unsigned 64-bit range, so timestamps
	// beyond 2^31 and 2^32 come back exact.
	lastSeen, err := strconv.ParseUint(values[4], 10, 64)
	if err != nil {
		return Record{}, &FormatError{Field: fieldLastSeen, Text: values[4], cause: err}
	}

	return Record{
		switchID:     switchID,
		bridgeDomain: bridgeDomain,
		mac:          mac,
		bridgePort:   bridgePort,
		lastActivity: lastSeen,
	}, nil
}

func parseHandle(field, text string) (uint64, error) {
	hexDigits, ok := strings.CutPrefix(text, "0x")
	if !ok {
		return 0, &FormatError{Field: field, Text: text, cause: errors.New("missing 0x prefix")}
	}
	v, err := strconv.ParseUint(hexDigits, 16, 64)
	if err != nil {
		return 0, &FormatError{Field: field, Text: text, cause: err}
	}
	return v, nil
}
