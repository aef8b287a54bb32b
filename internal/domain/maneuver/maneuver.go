package maneuver

import "strings"

// Code is a maneuver code as emitted by the routing service.
type Code string

const (
	Unspecified           Code = "MANEUVER_UNSPECIFIED"
	Depart                Code = "DEPART"
	Straight              Code = "STRAIGHT"
	NameChange            Code = "NAME_CHANGE"
	TurnSlightLeft        Code = "TURN_SLIGHT_LEFT"
	TurnSharpLeft         Code = "TURN_SHARP_LEFT"
	TurnLeft              Code = "TURN_LEFT"
	TurnSlightRight       Code = "TURN_SLIGHT_RIGHT"
	TurnSharpRight        Code = "TURN_SHARP_RIGHT"
	TurnRight             Code = "TURN_RIGHT"
	UturnLeft             Code = "UTURN_LEFT"
	UturnRight            Code = "UTURN_RIGHT"
	RampLeft              Code = "RAMP_LEFT"
	RampRight             Code = "RAMP_RIGHT"
	Merge                 Code = "MERGE"
	ForkLeft              Code = "FORK_LEFT"
	ForkRight             Code = "FORK_RIGHT"
	Ferry                 Code = "FERRY"
	FerryTrain            Code = "FERRY_TRAIN"
	RoundaboutLeft        Code = "ROUNDABOUT_LEFT"
	RoundaboutRight       Code = "ROUNDABOUT_RIGHT"
	RoundaboutClockwise   Code = "ROUNDABOUT_CLOCKWISE"
	RoundaboutCounterwise Code = "ROUNDABOUT_COUNTERCLOCKWISE"
	Destination           Code = "DESTINATION"
	DestinationLeft       Code = "DESTINATION_LEFT"
	DestinationRight      Code = "DESTINATION_RIGHT"
)

// Icon keys understood by the client icon set.
const (
	IconStraight   = "arrow-up"
	IconTurnLeft   = "arrow-left"
	IconTurnRight  = "arrow-right"
	IconUturnLeft  = "arrow-u-left"
	IconUturnRight = "arrow-u-right"
	IconRampLeft   = "ramp-left"
	IconRampRight  = "ramp-right"
	IconMerge      = "merge"
	IconForkLeft   = "fork-left"
	IconForkRight  = "fork-right"
	IconFerry      = "ferry"
	IconTrain      = "train"
	IconRoundabout = "roundabout"
	IconDepart     = "navigation"
	IconFlag       = "flag"
	IconUnknown    = "help-circle"
)

// Rotation is an icon rotation in degrees, clockwise positive.
type Rotation struct {
	Degrees float64 `json:"degrees"`
}

// Instruction is the display form of a maneuver.
type Instruction struct {
	Code          Code      `json:"code"`
	Label         string    `json:"label"`
	IconKey       string    `json:"icon_key"`
	IconTransform *Rotation `json:"icon_transform,omitempty"`
}

// Fallback is returned for codes the table does not know.
var Fallback = Instruction{Code: Unspecified, Label: "Unknown direction", IconKey: IconUnknown}

func rotate(deg float64) *Rotation { return &Rotation{Degrees: deg} }

var table = map[Code]Instruction{
	Unspecified:           Fallback,
	Depart:                {Label: "Depart", IconKey: IconDepart},
	Straight:              {Label: "Continue straight", IconKey: IconStraight},
	NameChange:            {Label: "Continue onto the road", IconKey: IconStraight},
	TurnSlightLeft:        {Label: "Turn slightly left", IconKey: IconTurnLeft, IconTransform: rotate(45)},
	TurnSharpLeft:         {Label: "Turn sharp left", IconKey: IconTurnLeft, IconTransform: rotate(-45)},
	TurnLeft:              {Label: "Turn left", IconKey: IconTurnLeft},
	TurnSlightRight:       {Label: "Turn slightly right", IconKey: IconTurnRight, IconTransform: rotate(-45)},
	TurnSharpRight:        {Label: "Turn sharp right", IconKey: IconTurnRight, IconTransform: rotate(45)},
	TurnRight:             {Label: "Turn right", IconKey: IconTurnRight},
	UturnLeft:             {Label: "Make a U-turn to the left", IconKey: IconUturnLeft},
	UturnRight:            {Label: "Make a U-turn to the right", IconKey: IconUturnRight},
	RampLeft:              {Label: "Take the ramp on the left", IconKey: IconRampLeft},
	RampRight:             {Label: "Take the ramp on the right", IconKey: IconRampRight},
	Merge:                 {Label: "Merge", IconKey: IconMerge},
	ForkLeft:              {Label: "Keep left at the fork", IconKey: IconForkLeft},
	ForkRight:             {Label: "Keep right at the fork", IconKey: IconForkRight},
	Ferry:                 {Label: "Take the ferry", IconKey: IconFerry},
	FerryTrain:            {Label: "Take the train ferry", IconKey: IconTrain},
	RoundaboutLeft:        {Label: "Enter the roundabout and turn left", IconKey: IconRoundabout, IconTransform: rotate(-90)},
	RoundaboutRight:       {Label: "Enter the roundabout and turn right", IconKey: IconRoundabout, IconTransform: rotate(90)},
	RoundaboutClockwise:   {Label: "Go clockwise around the roundabout", IconKey: IconRoundabout},
	RoundaboutCounterwise: {Label: "Go counterclockwise around the roundabout", IconKey: IconRoundabout, IconTransform: rotate(180)},
	Destination:           {Label: "Arrive at your destination", IconKey: IconFlag},
	DestinationLeft:       {Label: "Your destination is on the left", IconKey: IconFlag},
	DestinationRight:      {Label: "Your destination is on the right", IconKey: IconFlag},
}

// Known reports whether code has an entry in the table.
func (code Code) Known() bool {
	_, ok := table[code]
	return ok
}

// String returns the string representation of the Code.
func (code Code) String() string {
	return string(code)
}

// Classify maps a routing-service maneuver code to its instruction.
// It never fails: unknown or empty codes yield Fallback.
func Classify(raw string) Instruction {
	code := Code(strings.ToUpper(strings.TrimSpace(raw)))
	in, ok := table[code]
	if !ok {
		return Fallback
	}
	in.Code = code
	return in
}

// Codes lists every code the table covers.
func Codes() []Code {
	return []Code{
		Unspecified, Depart, Straight, NameChange,
		TurnSlightLeft, TurnSharpLeft, TurnLeft,
		TurnSlightRight, TurnSharpRight, TurnRight,
		UturnLeft, UturnRight, RampLeft, RampRight, Merge, ForkLeft, ForkRight,
		Ferry, FerryTrain,
		RoundaboutLeft, RoundaboutRight, RoundaboutClockwise, RoundaboutCounterwise,
		Destination, DestinationLeft, DestinationRight,
	}
}
