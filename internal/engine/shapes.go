package engine

import (
	"encoding/base64"
	"math"
	"net/http"

	"collaborative-whiteboard/internal/shape"
)

const (
	defaultFill        = "#aabbcc"
	defaultStroke      = "#aabbcc"
	defaultStrokeWidth = 2
	defaultFontSize    = 36
	defaultFontFamily  = "Helvetica"
	defaultFontWeight  = "400"
)

// KindOf maps a drawing tool to the shape kind it produces.
func KindOf(tool Tool) shape.Kind {
	switch tool {
	case ToolRectangle:
		return shape.KindRectangle
	case ToolTriangle:
		return shape.KindTriangle
	case ToolCircle:
		return shape.KindCircle
	case ToolLine:
		return shape.KindLine
	case ToolText:
		return shape.KindText
	case ToolFreeform:
		return shape.KindFreeform
	case ToolImage:
		return shape.KindImage
	}
	return ""
}

// newShapeAt builds the initial draft for a drawing gesture anchored at p.
func newShapeAt(tool Tool, p Point, id string) *shape.Snapshot {
	s := &shape.Snapshot{
		ObjectID: id,
		Kind:     KindOf(tool),
		Left:     p.X,
		Top:      p.Y,
		Fill:     defaultFill,
	}

	switch tool {
	case ToolLine:
		s.Fill = ""
		s.Stroke = defaultStroke
		s.StrokeWidth = defaultStrokeWidth
	case ToolText:
		s.Text = ""
		s.FontSize = defaultFontSize
		s.FontFamily = defaultFontFamily
		s.FontWeight = defaultFontWeight
		s.Fill = defaultFill
	}

	return s
}

// stretchShape resizes an in-progress draft to span from the gesture
// origin to the current pointer position.
func stretchShape(s *shape.Snapshot, origin, p Point) {
	w := p.X - origin.X
	h := p.Y - origin.Y

	s.Left = math.Min(origin.X, p.X)
	s.Top = math.Min(origin.Y, p.Y)

	switch s.Kind {
	case shape.KindCircle:
		// Circles keep a square bounding box sized by the larger span.
		d := math.Max(math.Abs(w), math.Abs(h))
		s.Width = d
		s.Height = d
	case shape.KindLine:
		s.Left = origin.X
		s.Top = origin.Y
		s.Width = w
		s.Height = h
	default:
		s.Width = math.Abs(w)
		s.Height = math.Abs(h)
	}
}

// imageSnapshot wraps raw image bytes into an image shape placed at p.
// The payload is embedded as a data URL so the snapshot alone is enough
// to redraw the object on every peer.
func imageSnapshot(data []byte, p Point, id string) shape.Snapshot {
	mime := http.DetectContentType(data)
	return shape.Snapshot{
		ObjectID: id,
		Kind:     shape.KindImage,
		Left:     p.X,
		Top:      p.Y,
		Src:      "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

// Attributes are the style fields of the current selection the property
// panel reads and writes.
type Attributes struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	FontSize    float64 `json:"fontSize"`
	FontFamily  string  `json:"fontFamily"`
	FontWeight  string  `json:"fontWeight"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func attributesOf(s shape.Snapshot) Attributes {
	return Attributes{
		Width:       s.Width,
		Height:      s.Height,
		FontSize:    s.FontSize,
		FontFamily:  s.FontFamily,
		FontWeight:  s.FontWeight,
		Fill:        s.Fill,
		Stroke:      s.Stroke,
		StrokeWidth: s.StrokeWidth,
	}
}
