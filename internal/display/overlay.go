// Package display draws the recognizer overlay onto camera frames and shows
// them in an OpenCV window.
package display

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
)

// Title is the window title and the heading drawn on every frame.
const Title = "Isaret Dili Tercumani"

// HelpText lists the key bindings.
const HelpText = "Q: Quit | S: Save | C: Clear"

const font = gocv.FontHersheySimplex

var (
	textColor       = color.RGBA{0, 0, 0, 255}
	landmarkColor   = color.RGBA{255, 0, 0, 255}
	connectionColor = color.RGBA{224, 224, 224, 255}
	progressColor   = color.RGBA{0, 160, 0, 255}
)

// Layout of the letter table on the right edge.
const (
	tableInset    = 500
	tableTop      = 60
	tableLineStep = 30
)

// Overlay is everything drawn on top of a frame. Hand is nil when no hand
// was detected; the static parts are drawn regardless.
type Overlay struct {
	Hand     *detector.LandmarkSet
	Letter   gesture.Letter
	Fingers  gesture.FingerState
	Word     string
	Progress float64
}

// Draw renders o onto img in place.
func Draw(img *gocv.Mat, o Overlay) {
	width, height := img.Cols(), img.Rows()

	drawCentered(img, Title, 40, 1.5, 3)
	gocv.PutText(img, HelpText, image.Pt(10, 30), font, 0.8, textColor, 2)

	for i, line := range TableLines() {
		org := image.Pt(width-tableInset, tableTop+i*tableLineStep)
		gocv.PutText(img, line, org, font, 0.7, textColor, 2)
	}

	if o.Hand == nil {
		return
	}

	drawHand(img, o.Hand)

	drawCentered(img, "Word: "+o.Word, height-200, 1.2, 2)
	drawCentered(img, "Letter: "+o.Letter.String(), height-150, 2, 3)
	if desc, ok := o.Letter.Description(); ok {
		drawCentered(img, "How: "+desc, height-100, 1, 2)
	}
	drawCentered(img, "Fingers: "+o.Fingers.String(), height-50, 0.8, 2)

	drawProgress(img, o.Progress, height-135)
}

// TableLines returns the "<letter>: <description>" rows in alphabet order.
func TableLines() []string {
	lines := make([]string, 0, len(gesture.Alphabet))
	for _, l := range gesture.Alphabet {
		desc, _ := l.Description()
		lines = append(lines, fmt.Sprintf("%s: %s", l, desc))
	}
	return lines
}

// CenteredX returns the x origin that centers a text of textWidth pixels.
func CenteredX(imgWidth, textWidth int) int {
	return (imgWidth - textWidth) / 2
}

func drawCentered(img *gocv.Mat, text string, y int, scale float64, thickness int) {
	size := gocv.GetTextSize(text, font, scale, thickness)
	org := image.Pt(CenteredX(img.Cols(), size.X), y)
	gocv.PutText(img, text, org, font, scale, textColor, thickness)
}

func drawHand(img *gocv.Mat, set *detector.LandmarkSet) {
	for _, c := range detector.Connections {
		a, b := set[c[0]], set[c[1]]
		gocv.Line(img, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), connectionColor, 2)
	}
	for _, p := range set {
		gocv.Circle(img, image.Pt(p.X, p.Y), 3, landmarkColor, -1)
	}
}

// drawProgress shows how far the held letter is toward being committed.
func drawProgress(img *gocv.Mat, progress float64, y int) {
	if progress <= 0 {
		return
	}
	if progress > 1 {
		progress = 1
	}

	const barWidth, barHeight = 300, 8
	x := CenteredX(img.Cols(), barWidth)
	filled := int(progress * barWidth)

	gocv.Rectangle(img, image.Rect(x, y, x+barWidth, y+barHeight), textColor, 1)
	gocv.Rectangle(img, image.Rect(x, y, x+filled, y+barHeight), progressColor, -1)
}
