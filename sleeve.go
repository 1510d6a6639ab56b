package sloper

import (
	"math"

	"github.com/innermond/sloper/internal/geom"
)

// buildSleeve drafts a short sleeve whose cap fits the front and back
// armholes. It is drafted on the cap line and then moved right of the back
// with the hem on the waist line.
func (d *Drafter) buildSleeve(g *Geometry, v Values, frontArmhole, backArmhole float64) error {
	r := d.rules
	p := g.pen("sleeve")

	capHeight := (frontArmhole + backArmhole) / r.SleeveCapDivisor
	front := frontArmhole - r.SleeveCapEase
	back := backArmhole + r.SleeveCapEase
	if front <= capHeight || back <= capHeight {
		return infeasible("sleeve", "cap height %.2f does not fit armholes of %.2f and %.2f", capHeight, frontArmhole, backArmhole)
	}
	if v.SleeveLength <= capHeight {
		return infeasible("sleeve", "length %.2f does not clear the cap height %.2f", v.SleeveLength, capHeight)
	}
	leftWidth := math.Sqrt(front*front - capHeight*capHeight)
	rightWidth := math.Sqrt(back*back - capHeight*capHeight)
	width := leftWidth + rightWidth
	inset := width/r.SleeveHemDivisor - r.SleeveHemInset
	if 2*inset >= width {
		return infeasible("sleeve", "hem inset %.2f closes the hem", inset)
	}

	topLeft := geom.V(0, 0)
	topRight := geom.V(width, 0)
	crown := topLeft.Mid(topRight).To(0, capHeight)
	frontHollow := topLeft.Mid(crown).Towards(topLeft, r.SleeveCapHollow)
	backRise := geom.L(topRight, crown).Offset(-r.SleeveCapBackRise).At(2.0 / 3)
	frontRise := geom.L(crown, topLeft).Offset(-r.SleeveCapFrontRise).At(0.25)

	hemY := -(v.SleeveLength - capHeight)
	hemLeft := geom.V(inset, hemY)
	hemRight := geom.V(width-inset, hemY)

	cap, err := geom.Through(
		[]geom.Vec{topRight, backRise, crown, frontRise, frontHollow, topLeft},
		capParams,
	)
	if err != nil {
		return infeasible("sleeve", "cap: %v", err)
	}
	right := geom.NewBezier(hemRight, hemRight.To(-r.SleeveSeamInset, 0).Mid(topRight), topRight)
	left := geom.NewBezier(topLeft, hemLeft.To(r.SleeveSeamInset, 0).Mid(topLeft), hemLeft)

	shift := geom.V(v.HalfBlock+r.PieceGap, -hemY)
	at := func(name string, q geom.Vec) string {
		return p.at(name, q.Add(shift))
	}

	hemStart := at("hem_left", hemLeft)
	hemEnd := at("hem_right", hemRight)
	backNotch := at("back_notch", topRight)
	frontNotch := at("front_notch", topLeft)
	crownLabel := at("crown", crown)

	p.lines(hemStart, hemEnd)
	p.curve("seam.back", right.Translate(shift), hemEnd, backNotch)
	p.curve("cap", cap.Translate(shift), backNotch, frontNotch)
	p.curve("seam.front", left.Translate(shift), frontNotch, hemStart)

	p.guide(crownLabel, at("hem_centre", hemLeft.Mid(hemRight)))
	return p.done()
}
