package maneuver

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantLabel string
		wantIcon  string
		rotated   bool
	}{
		{name: "left turn", code: "TURN_LEFT", wantLabel: "Turn left", wantIcon: IconTurnLeft},
		{name: "lowercase input", code: " turn_right ", wantLabel: "Turn right", wantIcon: IconTurnRight},
		{name: "slight left is rotated", code: "TURN_SLIGHT_LEFT", wantLabel: "Turn slightly left", wantIcon: IconTurnLeft, rotated: true},
		{name: "roundabout right", code: "ROUNDABOUT_RIGHT", wantLabel: "Enter the roundabout and turn right", wantIcon: IconRoundabout, rotated: true},
		{name: "destination on the left", code: "DESTINATION_LEFT", wantLabel: "Your destination is on the left", wantIcon: IconFlag},
		{name: "ferry", code: "FERRY", wantLabel: "Take the ferry", wantIcon: IconFerry},
		{name: "unknown code", code: "UNKNOWN_CODE_X", wantLabel: Fallback.Label, wantIcon: IconUnknown},
		{name: "empty code", code: "", wantLabel: Fallback.Label, wantIcon: IconUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.code)
			if got.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.IconKey != tt.wantIcon {
				t.Errorf("IconKey = %q, want %q", got.IconKey, tt.wantIcon)
			}
			if (got.IconTransform != nil) != tt.rotated {
				t.Errorf("IconTransform = %v, rotated want %v", got.IconTransform, tt.rotated)
			}
		})
	}
}

func TestClassify_CoversEveryCode(t *testing.T) {
	for _, code := range Codes() {
		if !code.Known() {
			t.Errorf("code %s has no table entry", code)
		}
		got := Classify(code.String())
		if got.Label == "" || got.IconKey == "" {
			t.Errorf("code %s classified to an empty instruction: %+v", code, got)
		}
	}
	if len(Codes()) != len(table) {
		t.Errorf("Codes() lists %d codes, table has %d", len(Codes()), len(table))
	}
}
