// Package detector provides hand detection interfaces and landmark types for letter recognition.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the landmark pairs that make up the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a landmark as reported by the detector, with x and y
// normalized to the frame size (0..1) and z relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel is a landmark position in frame pixels. Y grows downward.
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LandmarkSet is one hand's landmarks in pixel coordinates.
type LandmarkSet [NumLandmarks]Pixel

// Project converts the normalized landmarks to pixel coordinates for a
// frame of the given size. Coordinates are truncated, not rounded.
func (h *HandLandmarks) Project(width, height int) LandmarkSet {
	var set LandmarkSet
	if h == nil {
		return set
	}

	for i, p := range h.Points {
		set[i] = Pixel{
			X: int(p.X * float64(width)),
			Y: int(p.Y * float64(height)),
		}
	}

	return set
}
