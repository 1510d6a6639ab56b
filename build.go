package sloper

import (
	"fmt"
	"math"

	"github.com/innermond/sloper/internal/geom"
	"go.uber.org/zap"
)

// BuildGeometry places the anchor points of every piece and joins them.
// The result is checked before it is returned; a draft that cannot be drawn
// gives a *GeometryError.
func (d *Drafter) BuildGeometry(v Values) (*Geometry, error) {
	if err := v.check(); err != nil {
		return nil, err
	}

	g := &Geometry{Points: map[string]geom.Vec{}}
	frontArmhole, err := d.buildFront(g, v)
	if err != nil {
		return nil, err
	}
	backArmhole, err := d.buildBack(g, v)
	if err != nil {
		return nil, err
	}
	if v.SleeveLength > 0 {
		if err := d.buildSleeve(g, v, frontArmhole, backArmhole); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	d.log.Debug("built geometry",
		zap.Int("pieces", len(g.Pieces)),
		zap.Int("points", len(g.Points)),
		zap.Float64("front_armhole", frontArmhole),
		zap.Float64("back_armhole", backArmhole),
	)
	return g, nil
}

// pen adds the points and elements of one piece. The first error sticks and
// every later call is a no-op.
type pen struct {
	g     *Geometry
	piece Piece
	err   error
}

func (g *Geometry) pen(name string) *pen {
	return &pen{g: g, piece: Piece{Name: name}}
}

func (p *pen) at(name string, v geom.Vec) string {
	label := p.piece.Name + "." + name
	if p.err != nil {
		return label
	}
	if !v.Finite() {
		p.err = infeasible(p.piece.Name, "point %s is not finite", name)
		return label
	}
	if _, dup := p.g.Points[label]; dup {
		p.err = infeasible(p.piece.Name, "point %s placed twice", name)
		return label
	}
	p.g.Points[label] = v
	return label
}

// lines joins the labels in order, skipping empty ones.
func (p *pen) lines(labels ...string) {
	prev := ""
	for _, l := range labels {
		if l == "" {
			continue
		}
		if prev != "" {
			p.piece.Outline = append(p.piece.Outline, Element{Kind: Segment, Refs: []string{prev, l}})
		}
		prev = l
	}
}

// curve adds b to the outline from start to end. Its control points are
// named after the curve.
func (p *pen) curve(name string, b geom.Bezier, start, end string) {
	refs := []string{start}
	for i, c := range b.P[1 : len(b.P)-1] {
		refs = append(refs, p.at(fmt.Sprintf("%s.c%d", name, i+1), c))
	}
	refs = append(refs, end)
	p.piece.Outline = append(p.piece.Outline, Element{Kind: Curve, Refs: refs})
}

func (p *pen) fail(err error) {
	if p.err == nil && err != nil {
		p.err = infeasible(p.piece.Name, "%v", err)
	}
}

func (p *pen) dart(name, left, apex, right string) {
	p.piece.Darts = append(p.piece.Darts, Dart{Name: name, Left: left, Apex: apex, Right: right})
}

func (p *pen) guide(a, b string) {
	p.piece.Guides = append(p.piece.Guides, Element{Kind: Segment, Refs: []string{a, b}})
}

func (p *pen) done() error {
	if p.err != nil {
		return p.err
	}
	p.g.Pieces = append(p.g.Pieces, p.piece)
	return nil
}

// buildFront drafts the front bodice from the centre front waist, walking
// counter-clockwise. It returns the armhole length.
func (d *Drafter) buildFront(g *Geometry, v Values) (float64, error) {
	r := d.rules
	p := g.pen("front")

	cfWaist := p.at("cf_waist", geom.V(0, 0))
	var dartLeft, dartRight string
	if v.FrontDart > 0 {
		dartLeft = p.at("dart.left", geom.V(v.FrontDartX-v.FrontDart/2, 0))
		dartRight = p.at("dart.right", geom.V(v.FrontDartX+v.FrontDart/2, 0))
	}
	sideWaist := p.at("side_waist", geom.V(v.SideSeamX-v.SideDart/2, 0))

	sideChestAt := geom.V(v.SideSeamX, v.ChestLevel)
	acrossAt := geom.V(v.AcrossFrontX, v.ChestLevel+v.LowerArmholeRise)
	neckSideAt := geom.V(v.FrontNeckWidth, v.FrontLength)
	shoulderAt := neckSideAt.Polar(-v.FrontShoulderSlope, v.Shoulder)
	cfNeckAt := geom.V(0, v.FrontLength-v.FrontNeckDepth)

	sideChest := p.at("side_chest", sideChestAt)
	across := p.at("across", acrossAt)
	shoulder := p.at("shoulder", shoulderAt)
	neckSide := p.at("neck_side", neckSideAt)
	cfNeck := p.at("cf_neck", cfNeckAt)

	p.lines(cfWaist, dartLeft, dartRight, sideWaist, sideChest)

	lower := geom.NewBezier(sideChestAt, geom.V(v.AcrossFrontX, v.ChestLevel), acrossAt)
	p.curve("armhole.lower", lower, sideChest, across)

	// the chest dart breaks the armhole at the across point; its upper leg
	// is as long as the lower one and ChestDart further in
	armholeTop, armholeTopAt := across, acrossAt
	if v.ChestDart > 0 {
		leg := v.ChestDartApex.Dist(acrossAt)
		dx := acrossAt.X - v.ChestDart - v.ChestDartApex.X
		armholeTopAt = geom.V(acrossAt.X-v.ChestDart, v.ChestDartApex.Y+math.Sqrt(leg*leg-dx*dx))
		armholeTop = p.at("chest_dart.upper", armholeTopAt)
		p.lines(across, armholeTop)
	}
	upper := geom.NewBezier(
		armholeTopAt,
		geom.V(armholeTopAt.X, armholeTopAt.Y+(shoulderAt.Y-armholeTopAt.Y)*r.ArmholeControlRatio),
		shoulderAt,
	)
	p.curve("armhole.upper", upper, armholeTop, shoulder)
	p.lines(shoulder, neckSide)

	nd := v.FrontNeckDepth
	neck, err := geom.ThroughUniform(cfNeckAt, cfNeckAt.To(2*nd/3, nd/3), neckSideAt)
	p.fail(err)
	if err == nil {
		p.curve("neck", neck.Reverse(), neckSide, cfNeck)
	}
	p.lines(cfNeck, cfWaist)

	if v.FrontDart > 0 {
		p.dart("dart", dartLeft, p.at("dart.apex", v.BustPoint), dartRight)
	}
	if v.ChestDart > 0 {
		p.dart("chest_dart", across, p.at("chest_dart.apex", v.ChestDartApex), armholeTop)
	}
	p.guide(p.at("cf_chest", geom.V(0, v.ChestLevel)), sideChest)

	return lower.Length() + upper.Length(), p.done()
}

// buildBack drafts the back bodice from the side waist, walking
// counter-clockwise: waist, centre back, neck, shoulder, armhole.
// It returns the armhole length.
func (d *Drafter) buildBack(g *Geometry, v Values) (float64, error) {
	r := d.rules
	p := g.pen("back")

	waist := []string{p.at("side_waist", geom.V(v.SideSeamX+v.SideDart/2, 0))}
	type waistDart struct {
		name        string
		x, w        float64
		apex        geom.Vec
		left, right string
	}
	darts := []*waistDart{
		{name: "back_dart", x: v.BackDartX, w: v.BackDart, apex: v.BackDartApex},
		{name: "blade_dart", x: v.BladeDartX, w: v.BladeDart, apex: v.BladeDartApex},
	}
	for _, wd := range darts {
		if wd.w <= 0 {
			continue
		}
		wd.left = p.at(wd.name+".left", geom.V(wd.x-wd.w/2, 0))
		wd.right = p.at(wd.name+".right", geom.V(wd.x+wd.w/2, 0))
		waist = append(waist, wd.left, wd.right)
	}

	cbWaistAt := geom.V(v.CentreBackWaist, 0)
	cbBladeAt := geom.V(v.HalfBlock, (v.NapeHeight+v.ChestLevel)/2)
	napeAt := geom.V(v.HalfBlock, v.NapeHeight)
	neckSideAt := napeAt.To(-v.BackNeckWidth, v.BackNeckRise)
	shoulderAt := neckSideAt.Polar(180+v.BackShoulderSlope, v.BackShoulder)
	acrossAt := geom.V(v.AcrossBackX, v.ChestLevel+v.LowerArmholeRise)
	sideChestAt := geom.V(v.SideSeamX, v.ChestLevel)

	cbWaist := p.at("cb_waist", cbWaistAt)
	cbBlade := p.at("cb_blade", cbBladeAt)
	nape := p.at("cb_nape", napeAt)
	neckSide := p.at("neck_side", neckSideAt)
	shoulder := p.at("shoulder", shoulderAt)
	across := p.at("across", acrossAt)
	sideChest := p.at("side_chest", sideChestAt)

	waist = append(waist, cbWaist, cbBlade, nape)
	p.lines(waist...)

	neck, err := geom.ThroughUniform(
		neckSideAt,
		geom.V(neckSideAt.X+(napeAt.X-neckSideAt.X)/3, v.NapeHeight+r.BackNeckLift),
		napeAt,
	)
	p.fail(err)
	if err == nil {
		p.curve("neck", neck.Reverse(), nape, neckSide)
	}

	var sdNeck, sdArm string
	if v.ShoulderDart > 0 {
		sdNeckAt := neckSideAt.Towards(shoulderAt, v.ShoulderDart*r.ShoulderDartPosition)
		sdNeck = p.at("shoulder_dart.neck", sdNeckAt)
		sdArm = p.at("shoulder_dart.arm", sdNeckAt.Towards(shoulderAt, v.ShoulderDart))
	}
	p.lines(neckSide, sdNeck, sdArm, shoulder)

	upper := geom.NewBezier(
		shoulderAt,
		geom.V(v.AcrossBackX, acrossAt.Y+(shoulderAt.Y-acrossAt.Y)*r.ArmholeControlRatio),
		acrossAt,
	)
	p.curve("armhole.upper", upper, shoulder, across)
	lower := geom.NewBezier(acrossAt, geom.V(v.AcrossBackX, v.ChestLevel), sideChestAt)
	p.curve("armhole.lower", lower, across, sideChest)
	p.lines(sideChest, waist[0])

	for _, wd := range darts {
		if wd.w > 0 {
			p.dart(wd.name, wd.left, p.at(wd.name+".apex", wd.apex), wd.right)
		}
	}
	if v.ShoulderDart > 0 {
		p.dart("shoulder_dart", sdNeck, p.at("shoulder_dart.apex", v.ShoulderApex), sdArm)
	}
	cbChestAt := geom.L(cbBladeAt, cbWaistAt).AtY(v.ChestLevel)
	p.guide(sideChest, p.at("cb_chest", cbChestAt))

	return upper.Length() + lower.Length(), p.done()
}
