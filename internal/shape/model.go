package shape

import (
	"errors"
	"reflect"
)

type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindTriangle  Kind = "triangle"
	KindCircle    Kind = "circle"
	KindLine      Kind = "line"
	KindText      Kind = "text"
	KindFreeform  Kind = "freeform"
	KindImage     Kind = "image"
)

// PathPoint is one vertex of a freeform stroke.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot is the full redraw-sufficient state of one drawable object.
// The object id is duplicated inside the payload so a snapshot is
// self-describing on the wire and in storage.
type Snapshot struct {
	ObjectID    string      `json:"objectId"`
	Kind        Kind        `json:"type"`
	Left        float64     `json:"left"`
	Top         float64     `json:"top"`
	Width       float64     `json:"width,omitempty"`
	Height      float64     `json:"height,omitempty"`
	Angle       float64     `json:"angle,omitempty"`
	ScaleX      float64     `json:"scaleX,omitempty"`
	ScaleY      float64     `json:"scaleY,omitempty"`
	Fill        string      `json:"fill,omitempty"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"strokeWidth,omitempty"`
	Text        string      `json:"text,omitempty"`
	FontSize    float64     `json:"fontSize,omitempty"`
	FontFamily  string      `json:"fontFamily,omitempty"`
	FontWeight  string      `json:"fontWeight,omitempty"`
	Path        []PathPoint `json:"path,omitempty"`
	Src         string      `json:"src,omitempty"`
}

var ErrMalformedSnapshot = errors.New("malformed shape snapshot")

// Validate reports whether a snapshot carries enough to be applied.
func (s Snapshot) Validate() error {
	if s.ObjectID == "" || s.Kind == "" {
		return ErrMalformedSnapshot
	}
	return nil
}

// Equal reports whether two snapshots serialize to the same payload.
func (s Snapshot) Equal(o Snapshot) bool {
	return reflect.DeepEqual(s, o)
}

type OpType string

const (
	OpPut    OpType = "put"
	OpDelete OpType = "delete"
	OpClear  OpType = "clear"
)

// Op is one durable mutation of the shape collection. Seq is assigned by
// the room sequencer; zero means the op has not been sequenced yet.
type Op struct {
	Type  OpType    `json:"type"`
	ID    string    `json:"id,omitempty"`
	Shape *Snapshot `json:"shape,omitempty"`
	Seq   uint64    `json:"seq,omitempty"`
}

// PutOp builds a put op for a snapshot.
func PutOp(s Snapshot) Op {
	return Op{Type: OpPut, ID: s.ObjectID, Shape: &s}
}

func DeleteOp(id string) Op {
	return Op{Type: OpDelete, ID: id}
}

func ClearOp() Op {
	return Op{Type: OpClear}
}
