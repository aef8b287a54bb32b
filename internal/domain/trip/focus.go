package trip

import (
	"errors"
	"strings"
)

// FocusMode is the camera follow mode.
type FocusMode string

const (
	FocusOff     FocusMode = "off"
	FocusCenter  FocusMode = "center"
	FocusForward FocusMode = "forward"
)

var ErrInvalidFocusMode = errors.New("invalid focus mode")

// ParseFocusMode normalizes (lowercases+trims) and validates a focus mode string.
func ParseFocusMode(in string) (FocusMode, error) {
	mode := FocusMode(strings.ToLower(strings.TrimSpace(in)))
	if mode.Valid() {
		return mode, nil
	}
	return "", ErrInvalidFocusMode
}

// Valid reports whether mode is one of the focus mode constants.
func (mode FocusMode) Valid() bool {
	switch mode {
	case FocusOff, FocusCenter, FocusForward:
		return true
	default:
		return false
	}
}

// String returns the string representation of the FocusMode.
func (mode FocusMode) String() string {
	return string(mode)
}

// Next cycles off -> center -> forward -> off.
func (mode FocusMode) Next() FocusMode {
	switch mode {
	case FocusOff:
		return FocusCenter
	case FocusCenter:
		return FocusForward
	default:
		return FocusOff
	}
}
