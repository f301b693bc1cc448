// Package diagnostics renders the evaluation plots returned by the training
// endpoint. Rendering is kept behind a small Renderer capability so the
// handlers only ever deal with opaque image payloads.
package diagnostics

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/svrkit/pkg/errors"
)

// Point is a single scatter mark.
type Point struct {
	X, Y float64
}

// ScatterSpec describes one scatter diagram: the marks, axis labels, and an
// optional straight reference line between two points.
type ScatterSpec struct {
	Title    string
	XLabel   string
	YLabel   string
	Points   []Point
	RefLine  [2]Point
	RefLabel string
	HasRef   bool
}

// Renderer turns a scatter spec into image bytes. The concrete image format
// is the renderer's business; callers treat the payload as opaque.
type Renderer interface {
	Render(spec ScatterSpec) ([]byte, error)
}

// PNGRenderer renders scatter specs to PNG via gonum/plot.
type PNGRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer returns a renderer with the plot size used by the frontend
// cards.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 8 * vg.Inch, Height: 6 * vg.Inch}
}

var (
	markColor = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	refColor  = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
)

// Render implements Renderer.
func (r *PNGRenderer) Render(spec ScatterSpec) ([]byte, error) {
	if len(spec.Points) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "PNGRenderer.Render")
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(spec.Points))
	for i, pt := range spec.Points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "PNGRenderer.Render: scatter")
	}
	scatter.GlyphStyle.Color = markColor
	scatter.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(scatter)

	if spec.HasRef {
		ref := plotter.XYs{
			{X: spec.RefLine[0].X, Y: spec.RefLine[0].Y},
			{X: spec.RefLine[1].X, Y: spec.RefLine[1].Y},
		}
		line, err := plotter.NewLine(ref)
		if err != nil {
			return nil, errors.Wrap(err, "PNGRenderer.Render: reference line")
		}
		line.LineStyle.Color = refColor
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
		p.Add(line)
		if spec.RefLabel != "" {
			p.Legend.Add(spec.RefLabel, line)
			p.Legend.Top = true
		}
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, errors.Wrap(err, "PNGRenderer.Render: encode")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "PNGRenderer.Render: write")
	}
	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes into a self-contained embeddable payload.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// ActualVsPredicted builds the actual-versus-predicted diagram for the test
// partition: one mark per sample plus the identity diagonal a perfect model
// would follow.
func ActualVsPredicted(r Renderer, actual, predicted []float64, r2 float64) (string, error) {
	if len(actual) != len(predicted) {
		return "", errors.NewDimensionError("ActualVsPredicted", len(actual), len(predicted), 0)
	}

	points := make([]Point, len(actual))
	lo, hi := actual[0], actual[0]
	for i := range actual {
		points[i] = Point{X: actual[i], Y: predicted[i]}
		lo = min(lo, min(actual[i], predicted[i]))
		hi = max(hi, max(actual[i], predicted[i]))
	}

	png, err := r.Render(ScatterSpec{
		Title:    fmt.Sprintf("Test Set - Actual vs Predicted (R² = %.3f)", r2),
		XLabel:   "Actual Values",
		YLabel:   "Predicted Values",
		Points:   points,
		RefLine:  [2]Point{{X: lo, Y: lo}, {X: hi, Y: hi}},
		RefLabel: "Perfect Prediction",
		HasRef:   true,
	})
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}

// Residuals builds the residual diagram for the test partition: residual
// (actual - predicted) against predicted value, with the zero-error line.
func Residuals(r Renderer, actual, predicted []float64) (string, error) {
	if len(actual) != len(predicted) {
		return "", errors.NewDimensionError("Residuals", len(actual), len(predicted), 0)
	}

	points := make([]Point, len(actual))
	lo, hi := predicted[0], predicted[0]
	for i := range predicted {
		points[i] = Point{X: predicted[i], Y: actual[i] - predicted[i]}
		lo = min(lo, predicted[i])
		hi = max(hi, predicted[i])
	}

	png, err := r.Render(ScatterSpec{
		Title:    "Test Set - Residuals",
		XLabel:   "Predicted Values",
		YLabel:   "Residuals (Actual - Predicted)",
		Points:   points,
		RefLine:  [2]Point{{X: lo, Y: 0}, {X: hi, Y: 0}},
		RefLabel: "Zero Error Line",
		HasRef:   true,
	})
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}
