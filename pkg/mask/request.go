// Package mask turns client-side region selections into the black and white
// raster that tells the inpainting model which pixels it may regenerate.
package mask

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMaskRequest is returned for requests that carry no usable selection.
var ErrInvalidMaskRequest = errors.New("invalid mask request")

// Kind discriminates the selection carried by a Request.
type Kind string

const (
	KindBox   Kind = "bbox"
	KindBrush Kind = "brush"
)

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pixel coordinate of a brush stroke. It decodes from either
// [x, y] or {"x": .., "y": ..}.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("%w: point needs 2 coordinates, got %d", ErrInvalidMaskRequest, len(pair))
		}
		p.X, p.Y = pair[0], pair[1]
		return nil
	}
	var obj struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: point: %v", ErrInvalidMaskRequest, err)
	}
	if obj.X == nil || obj.Y == nil {
		return fmt.Errorf("%w: point is missing a coordinate", ErrInvalidMaskRequest)
	}
	p.X, p.Y = *obj.X, *obj.Y
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// Request is either a box or a set of freehand strokes.
type Request struct {
	Kind    Kind
	Box     *Box
	Strokes [][]Point
}

// NewBox builds a bbox request.
func NewBox(x, y, width, height float64) Request {
	return Request{Kind: KindBox, Box: &Box{X: x, Y: y, Width: width, Height: height}}
}

// NewBrush builds a brush request.
func NewBrush(strokes ...[]Point) Request {
	if strokes == nil {
		strokes = [][]Point{}
	}
	return Request{Kind: KindBrush, Strokes: strokes}
}

type wireRequest struct {
	Type    Kind            `json:"type"`
	BBox    []float64       `json:"bbox,omitempty"`
	X       *float64        `json:"x,omitempty"`
	Y       *float64        `json:"y,omitempty"`
	Width   *float64        `json:"width,omitempty"`
	Height  *float64        `json:"height,omitempty"`
	Strokes json.RawMessage `json:"strokes,omitempty"`
}

// UnmarshalJSON accepts {"type":"bbox","bbox":[x,y,w,h]},
// {"type":"bbox","x":..,"y":..,"width":..,"height":..} and
// {"type":"brush","strokes":[[[x,y],...],...]}. A box with a missing field
// decodes without a Box so that Validate rejects it.
func (r *Request) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMaskRequest, err)
	}

	*r = Request{Kind: w.Type}
	switch w.Type {
	case KindBox:
		switch {
		case w.BBox != nil:
			if len(w.BBox) == 4 {
				r.Box = &Box{X: w.BBox[0], Y: w.BBox[1], Width: w.BBox[2], Height: w.BBox[3]}
			}
		case w.X != nil && w.Y != nil && w.Width != nil && w.Height != nil:
			r.Box = &Box{X: *w.X, Y: *w.Y, Width: *w.Width, Height: *w.Height}
		}
	case KindBrush:
		if len(w.Strokes) == 0 || string(w.Strokes) == "null" {
			return nil
		}
		var strokes [][]Point
		if err := json.Unmarshal(w.Strokes, &strokes); err != nil {
			return fmt.Errorf("%w: strokes: %v", ErrInvalidMaskRequest, err)
		}
		if strokes == nil {
			strokes = [][]Point{}
		}
		r.Strokes = strokes
	}
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	w := wireRequest{Type: r.Kind}
	if r.Box != nil {
		w.BBox = []float64{r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height}
	}
	if r.Strokes != nil {
		raw, err := json.Marshal(r.Strokes)
		if err != nil {
			return nil, err
		}
		w.Strokes = raw
	}
	return json.Marshal(w)
}

// Validate reports whether the request carries the fields its kind requires.
func (r Request) Validate() error {
	switch r.Kind {
	case KindBox:
		if r.Box == nil {
			return fmt.Errorf("%w: bbox needs x, y, width and height", ErrInvalidMaskRequest)
		}
	case KindBrush:
		if r.Strokes == nil {
			return fmt.Errorf("%w: brush needs a strokes list", ErrInvalidMaskRequest)
		}
	case "":
		return fmt.Errorf("%w: missing type", ErrInvalidMaskRequest)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMaskRequest, r.Kind)
	}
	return nil
}
