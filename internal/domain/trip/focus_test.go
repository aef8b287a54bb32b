package trip

import "testing"

func TestFocusMode_Next(t *testing.T) {
	mode := FocusOff
	want := []FocusMode{FocusCenter, FocusForward, FocusOff, FocusCenter}
	for i, w := range want {
		mode = mode.Next()
		if mode != w {
			t.Fatalf("step %d: got %s, want %s", i, mode, w)
		}
	}
}

func TestParseFocusMode(t *testing.T) {
	if m, err := ParseFocusMode(" Forward "); err != nil || m != FocusForward {
		t.Errorf("ParseFocusMode() = %s, %v", m, err)
	}
	if _, err := ParseFocusMode("orbit"); err != ErrInvalidFocusMode {
		t.Errorf("expected ErrInvalidFocusMode, got %v", err)
	}
}
