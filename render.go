package sloper

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/innermond/sloper/internal/geom"
	"github.com/innermond/sloper/internal/svg"
	"github.com/pkg/errors"
)

// SVG is a Renderer producing an SVG document the size of the canvas.
// Each piece goes on its own layer. It keeps the last rendering only and is
// not safe for concurrent use.
type SVG struct {
	width, height float64
	plain, labels bool

	doc string
}

func NewSVG(width, height int) *SVG {
	return &SVG{
		width:  float64(width),
		height: float64(height),
		plain:  true,
	}
}

// Appearance chooses plain SVG or inkscape layers, and point labels.
func (s *SVG) Appearance(yesno ...bool) *SVG {
	switch len(yesno) {
	case 0:
		s.plain = true
		s.labels = false
	case 1:
		s.plain = yesno[0]
	default:
		s.plain = yesno[0]
		s.labels = yesno[1]
	}
	return s
}

func (s *SVG) Render(elements []PathElement, scale float64, offset geom.Vec) error {
	if len(elements) == 0 {
		return errors.New("nothing to render")
	}
	project := func(p geom.Vec) geom.Vec {
		return Project(p, scale, offset)
	}
	doc := svg.Start(s.width, s.height, "", s.plain)
	doc += drawElements(elements, project, s.plain, s.labels, 1.5)
	s.doc = svg.End(doc)
	return nil
}

func (s *SVG) Bytes() []byte {
	return []byte(s.doc)
}

func (s *SVG) String() string {
	return s.doc
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.Copy(w, strings.NewReader(s.doc))
	return n, errors.Wrap(err, "write svg")
}

func roleStyle(r Role, stroke float64) string {
	switch r {
	case RoleDart:
		return fmt.Sprintf("stroke:#000;stroke-width:%g;fill:none", stroke*0.6)
	case RoleGuide:
		return fmt.Sprintf("stroke:#888;stroke-width:%g;stroke-dasharray:%g,%g;fill:none", stroke*0.5, stroke*4, stroke*2)
	case RoleAllowance:
		return fmt.Sprintf("stroke:#555;stroke-width:%g;stroke-dasharray:%g,%g;fill:none", stroke*0.6, stroke*6, stroke*3)
	}
	return fmt.Sprintf("stroke:#000;stroke-width:%g;fill:none", stroke)
}

// drawElements writes one layer per piece, in the order pieces first
// appear. Consecutive outline elements are joined into a single closed path.
func drawElements(elements []PathElement, project func(geom.Vec) geom.Vec, plain, labels bool, stroke float64) string {
	var order []string
	byPiece := map[string][]PathElement{}
	for _, e := range elements {
		if _, ok := byPiece[e.Piece]; !ok {
			order = append(order, e.Piece)
		}
		byPiece[e.Piece] = append(byPiece[e.Piece], e)
	}

	var out bytes.Buffer
	for _, piece := range order {
		g := svg.Layer(piece, plain)

		outline := &svg.PathData{}
		var text string
		for _, e := range byPiece[piece] {
			pts := make([]geom.Vec, len(e.Points))
			for i, p := range e.Points {
				pts[i] = project(p)
			}
			if e.Role != RoleOutline {
				g += svg.Path("", pathData(&svg.PathData{}, e.Kind, pts, true).String(), roleStyle(e.Role, stroke))
				continue
			}
			pathData(outline, e.Kind, pts, outline.String() == "")
			if labels && len(e.Refs) > 0 {
				name := strings.TrimPrefix(e.Refs[0], e.Piece+".")
				text += svg.Circle(pts[0], stroke, "fill:#c00") +
					svg.Text(pts[0].X+2*stroke, pts[0].Y-2*stroke, "", name, fmt.Sprintf("font-size:%g;fill:#c00", stroke*6))
			}
		}
		if outline.String() != "" {
			g += svg.Path(piece+".outline", outline.Close().String(), roleStyle(RoleOutline, stroke))
		}
		out.WriteString(svg.GroupEnd(g + text))
	}
	return out.String()
}

func pathData(d *svg.PathData, k Kind, pts []geom.Vec, move bool) *svg.PathData {
	if move {
		d.MoveTo(pts[0])
	}
	switch k {
	case Curve:
		d.CurveTo(pts[1:len(pts)-1], pts[len(pts)-1], pts[0])
	default:
		for _, p := range pts[1:] {
			d.LineTo(p)
		}
	}
	return d
}
