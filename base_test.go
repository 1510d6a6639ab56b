package sloper

import (
	"fmt"
	"math"
	"testing"

	"github.com/innermond/sloper/internal/geom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls    int
	elements []PathElement
	scale    float64
	offset   geom.Vec
}

func (r *recorder) Render(elements []PathElement, scale float64, offset geom.Vec) error {
	r.calls++
	r.elements = elements
	r.scale = scale
	r.offset = offset
	return nil
}

// drawn lists the canvas points a renderer would draw, curves flattened.
func (r *recorder) drawn() []geom.Vec {
	var out []geom.Vec
	for _, e := range r.elements {
		pts := e.Points
		if e.Kind == Curve {
			pts = geom.NewBezier(pts...).Flatten(geom.FlattenSteps)
		}
		for _, p := range pts {
			out = append(out, Project(p, r.scale, r.offset))
		}
	}
	return out
}

func TestNewBase(t *testing.T) {
	d := drafter(t)
	b, err := d.NewBase(example(t), 14)
	require.NoError(t, err)

	assert.Equal(t, Ease(14), b.Ease())
	assert.Equal(t, example(t), b.Measurements())
	assert.InDelta(t, 18.5, b.Values().QuarterWaist, 1e-9)
	assert.Zero(t, b.SeamAllowance())
	g := b.Geometry()
	assert.Equal(t,
		fmt.Sprintf("base(ease 14): front %d points, back %d points", len(g.Labels("front")), len(g.Labels("back"))),
		b.String())

	summary := b.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, "front", summary[0].Name)
	assert.Equal(t, 2, summary[0].Darts)
	assert.Equal(t, 3, summary[1].Darts)
	assert.Equal(t, len(g.Pieces[1].Outline), summary[1].Elements)
	assert.InDelta(t, g.PieceBounds(g.Pieces[1]).Width(), summary[1].Width, 1e-9)

	t.Run("geometry is a copy", func(t *testing.T) {
		g := b.Geometry()
		g.Points["front.cf_waist"] = geom.V(5, 5)
		g.Pieces[0].Outline[0].Refs[0] = "front.nowhere"
		again := b.Geometry()
		assert.Equal(t, geom.V(0, 0), again.Points["front.cf_waist"])
		assert.Equal(t, "front.cf_waist", again.Pieces[0].Outline[0].Refs[0])
	})

	t.Run("bases are independent", func(t *testing.T) {
		other, err := d.NewBase(example(t), 14)
		require.NoError(t, err)
		assert.Equal(t, b.Geometry(), other.Geometry())

		wider, err := d.NewBase(example(t), 20)
		require.NoError(t, err)
		assert.Greater(t, wider.Bounds().Width(), b.Bounds().Width())
		assert.Equal(t, b.Geometry(), other.Geometry())
	})

	t.Run("invalid measurements fail before drawing", func(t *testing.T) {
		_, err := exampleBuilder().Waist(-5).Build()
		assert.Equal(t, []string{"waist"}, problemFields(t, err))

		_, err = d.NewBase(Measurements{}, 14)
		assert.True(t, IsValidation(err))
	})

	t.Run("negative seam allowance", func(t *testing.T) {
		_, err := d.NewBase(example(t), 14, WithSeamAllowance(-1))
		assert.Equal(t, []string{"seam_allowance"}, problemFields(t, err))
	})
}

func TestNewBaseSeamAllowance(t *testing.T) {
	d := drafter(t)
	plain, err := d.NewBase(example(t), 14)
	require.NoError(t, err)
	b, err := d.NewBase(example(t), 14, WithSeamAllowance(1))
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.SeamAllowance())

	bb, pb := b.Bounds(), plain.Bounds()
	assert.InDelta(t, pb.Min.X-1, bb.Min.X, 1e-6)
	assert.InDelta(t, pb.Min.Y-1, bb.Min.Y, 1e-6)
	assert.Greater(t, bb.Max.X, pb.Max.X)
	assert.Greater(t, bb.Max.Y, pb.Max.Y)

	roles := map[Role]int{}
	for _, e := range b.PathElements() {
		roles[e.Role]++
	}
	assert.Equal(t, 2, roles[RoleAllowance])
}

func TestDraw(t *testing.T) {
	d := drafter(t)
	b, err := d.NewBase(example(t), 14)
	require.NoError(t, err)

	r := &recorder{}
	require.NoError(t, b.Draw(r, 900, 900))
	assert.Equal(t, 1, r.calls)
	assert.Greater(t, r.scale, 0.0)

	canvas := geom.Bounds(r.drawn()...)
	assert.GreaterOrEqual(t, canvas.Min.X, 0.0)
	assert.GreaterOrEqual(t, canvas.Min.Y, 0.0)
	assert.LessOrEqual(t, canvas.Max.X, 900.0)
	assert.LessOrEqual(t, canvas.Max.Y, 900.0)
	// the taller side fills the canvas between the margins
	assert.InDelta(t, 45, canvas.Min.Y, 1e-6)
	assert.InDelta(t, 855, canvas.Max.Y, 1e-6)
	// centred horizontally
	assert.InDelta(t, 900-canvas.Max.X, canvas.Min.X, 1e-6)

	t.Run("again", func(t *testing.T) {
		again := &recorder{}
		require.NoError(t, b.Draw(again, 900, 900))
		assert.Equal(t, r.elements, again.elements)
		assert.Equal(t, r.scale, again.scale)
		assert.Equal(t, r.offset, again.offset)
	})

	t.Run("with a sleeve", func(t *testing.T) {
		m, err := exampleBuilder().SleeveLen(60).Build()
		require.NoError(t, err)
		b, err := d.NewBase(m, 14)
		require.NoError(t, err)

		r := &recorder{}
		require.NoError(t, b.Draw(r, 800, 600))
		canvas := geom.Bounds(r.drawn()...)
		// the wide side fills the canvas between the margins
		assert.InDelta(t, 30, canvas.Min.X, 1e-6)
		assert.InDelta(t, 770, canvas.Max.X, 1e-6)
		assert.LessOrEqual(t, canvas.Max.Y, 600.0)
	})

	t.Run("invalid canvas", func(t *testing.T) {
		for _, size := range [][2]int{{0, 900}, {900, 0}, {-1, -1}} {
			err := b.Draw(&recorder{}, size[0], size[1])
			assert.Equal(t, []string{"canvas"}, problemFields(t, err), "%v", size)
		}
	})

	t.Run("renderer failure", func(t *testing.T) {
		boom := errors.New("disk full")
		err := b.Draw(RenderFunc(func([]PathElement, float64, geom.Vec) error { return boom }), 900, 900)
		require.Error(t, err)
		assert.Equal(t, boom, errors.Cause(err))
		assert.Contains(t, err.Error(), "render: disk full")
	})

	assert.Error(t, b.Draw(nil, 900, 900))
}

func TestProject(t *testing.T) {
	p := Project(geom.V(2, 3), 10, geom.V(5, 100))
	assert.Equal(t, geom.V(25, 70), p)
	assert.False(t, math.IsNaN(p.X))
}
