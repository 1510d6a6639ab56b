package sloper

import (
	"math"

	"github.com/innermond/sloper/internal/geom"
	"go.uber.org/zap"
)

// Ease is the wearing allowance in centimetres added to the waist before
// the block is divided into quarters.
type Ease float64

// Values are the scalar construction values of one draft. All lengths are
// in centimetres, x grows from the centre front towards the centre back and
// y grows from the waist line up.
type Values struct {
	Ease Ease `json:"ease"`

	QuarterWaist float64 `json:"quarter_waist"`
	HalfBlock    float64 `json:"half_block"`
	DartIntake   float64 `json:"dart_intake"`

	// per dart intake, zero when the dart is not drawn
	FrontDart      float64 `json:"front_dart"`
	SideDart       float64 `json:"side_dart"`
	BackDart       float64 `json:"back_dart"`
	BladeDart      float64 `json:"blade_dart"`
	CentreBackDart float64 `json:"centre_back_dart"`
	ChestDart      float64 `json:"chest_dart"`

	NeckRadius     float64 `json:"neck_radius"`
	FrontNeckDepth float64 `json:"front_neck_depth"`
	FrontNeckWidth float64 `json:"front_neck_width"`
	BackNeckWidth  float64 `json:"back_neck_width"`
	BackNeckRise   float64 `json:"back_neck_rise"`

	FrontLength  float64 `json:"front_length"`
	NapeHeight   float64 `json:"nape_height"`
	ChestLevel   float64 `json:"chest_level"`
	ArmholeDepth float64 `json:"armhole_depth"`

	AcrossFrontX     float64 `json:"across_front_x"`
	AcrossBackX      float64 `json:"across_back_x"`
	SideSeamX        float64 `json:"side_seam_x"`
	ArmscyeWidth     float64 `json:"armscye_width"`
	LowerArmholeRise float64 `json:"lower_armhole_rise"`

	Shoulder           float64 `json:"shoulder"`
	FrontShoulderSlope float64 `json:"front_shoulder_slope"`
	BackShoulderSlope  float64 `json:"back_shoulder_slope"`
	ShoulderDart       float64 `json:"shoulder_dart"`
	BackShoulder       float64 `json:"back_shoulder"`

	FrontDartX      float64  `json:"front_dart_x"`
	BustPoint       geom.Vec `json:"bust_point"`
	BackDartX       float64  `json:"back_dart_x"`
	BackDartApex    geom.Vec `json:"back_dart_apex"`
	BladeDartX      float64  `json:"blade_dart_x"`
	BladeDartApex   geom.Vec `json:"blade_dart_apex"`
	ShoulderApex    geom.Vec `json:"shoulder_apex"`
	ChestDartApex   geom.Vec `json:"chest_dart_apex"`
	CentreBackWaist float64  `json:"centre_back_waist"`

	// zero when no sleeve is drafted
	SleeveLength float64 `json:"sleeve_length,omitempty"`
}

// ComputeValues derives the construction values for m and ease. It is pure:
// equal inputs give bit identical results.
func (d *Drafter) ComputeValues(m Measurements, ease Ease) (Values, error) {
	r := d.rules
	e := float64(ease)

	if !m.valid() {
		// the zero Measurements did not come out of a Builder
		return Values{}, invalid("measurements", "are incomplete, build them with NewBuilder")
	}
	if math.IsNaN(e) || e < r.MinEase || e > r.MaxEase {
		return Values{}, invalid("ease", "must be within [%g, %g], got %g", r.MinEase, r.MaxEase, e)
	}

	v := Values{Ease: ease}
	v.QuarterWaist = (m.Waist() + e) / 4
	v.HalfBlock = 2*v.QuarterWaist + r.WaistEase
	v.DartIntake = e / 2

	dart := func(share float64) float64 {
		w := v.DartIntake * share
		if w < r.MinDartIntake {
			return 0
		}
		return w
	}
	v.FrontDart = dart(r.FrontDartShare)
	v.SideDart = dart(r.SideDartShare)
	v.BackDart = dart(r.BackDartShare)
	v.BladeDart = dart(r.BladeDartShare)
	v.CentreBackDart = dart(r.CentreBackDartShare)

	v.NeckRadius = m.NeckSize() / (2 * math.Pi)
	v.FrontNeckDepth = v.NeckRadius * r.NeckDepthRatio
	v.FrontNeckWidth = v.FrontNeckDepth
	v.BackNeckWidth = v.FrontNeckWidth + r.BackNeckExtra
	v.BackNeckRise = (v.FrontNeckDepth+r.BackNeckRiseOffset)/r.BackNeckRiseDivisor - r.BackNeckExtra

	v.FrontLength = m.HPSToWaist() - r.NeckDrop
	v.NapeHeight = m.NapeToWaist()
	v.ChestLevel = m.NapeToWaist() - m.ArmscyeDepth() - r.ArmscyeDrop
	v.ArmholeDepth = m.ArmscyeDepth() + r.ArmscyeDrop

	v.AcrossFrontX = m.XFront()/2 + r.FrontArmholeAllowance
	v.AcrossBackX = v.HalfBlock - m.XBack()/2
	v.SideSeamX = (v.AcrossFrontX + v.AcrossBackX) / 2
	v.ArmscyeWidth = v.AcrossBackX - v.AcrossFrontX
	v.LowerArmholeRise = v.ArmscyeWidth / 2

	v.Shoulder = m.Shoulder()
	v.FrontShoulderSlope = r.FrontShoulderSlope
	v.BackShoulderSlope = r.BackShoulderSlope
	v.ShoulderDart = (m.XFront() + m.XBack()) / r.ShoulderDartDivisor
	if v.ShoulderDart < r.MinDartIntake {
		v.ShoulderDart = 0
	}
	v.BackShoulder = m.Shoulder() + v.ShoulderDart

	v.FrontDartX = v.AcrossFrontX - r.FrontDartInset
	v.BustPoint = geom.V(v.FrontDartX, v.ChestLevel-r.BustPointDrop)
	if r.ChestDartIntake >= r.MinDartIntake {
		v.ChestDart = r.ChestDartIntake
		v.ChestDartApex = geom.V((v.AcrossFrontX-v.ChestDart)/2+v.ChestDart, v.ChestLevel)
	}
	v.BackDartX = v.AcrossBackX + r.BackDartOffset
	v.BackDartApex = geom.V(v.BackDartX, v.ChestLevel+v.ArmholeDepth/6)
	v.ShoulderApex = geom.V(
		v.AcrossBackX+m.XBack()/4+r.ShoulderDartApexInset,
		v.ChestLevel+v.ArmholeDepth/2+r.ShoulderDartApexLift,
	)
	v.BladeDartX = v.ShoulderApex.X - r.BladeDartShift
	v.BladeDartApex = geom.V(v.BladeDartX, v.ChestLevel+r.BladeDartLift)
	v.CentreBackWaist = v.HalfBlock - v.CentreBackDart

	if m.SleeveLen() > 0 {
		v.SleeveLength = m.SleeveLen() * r.ShortSleeveRatio
	}

	if err := v.check(); err != nil {
		return Values{}, err
	}
	d.log.Debug("computed construction values",
		zap.Float64("ease", e),
		zap.Float64("quarter_waist", v.QuarterWaist),
		zap.Float64("armscye_width", v.ArmscyeWidth),
		zap.Float64("dart_intake", v.DartIntake),
	)
	return v, nil
}

// check rejects measurements whose derived widths collapse or whose darts
// would overlap on the waist line.
func (v Values) check() error {
	verr := &ValidationError{}
	if v.ChestLevel <= 0 {
		verr.add("chest_level", "must be above the waist, got %g (armscye_depth too long for nape_to_waist)", v.ChestLevel)
	}
	if v.ArmscyeWidth <= 0 {
		verr.add("armscye_width", "must be positive, got %g (x_front or x_back too wide for the waist)", v.ArmscyeWidth)
	}
	if v.FrontLength <= v.ChestLevel {
		verr.add("front_length", "must reach above the chest line")
	}
	if v.FrontNeckDepth >= v.FrontLength-v.ChestLevel {
		verr.add("neck_size", "neck is deeper than the space above the chest line")
	}
	if v.FrontNeckWidth >= v.AcrossFrontX {
		verr.add("neck_size", "neck is wider than the across front line")
	}
	if len(verr.Problems) > 0 {
		return verr
	}

	if !increasing(v.frontWaist()) || !increasing(v.backWaist()) {
		verr.add("ease", "darts overlap on the waist line")
	}
	return verr.orNil()
}

// frontWaist lists the x of every waist point of the front, centre front first.
func (v Values) frontWaist() []float64 {
	xs := []float64{0}
	if v.FrontDart > 0 {
		xs = append(xs, v.FrontDartX-v.FrontDart/2, v.FrontDartX+v.FrontDart/2)
	}
	return append(xs, v.SideSeamX-v.SideDart/2)
}

// backWaist lists the x of every waist point of the back, side seam first.
func (v Values) backWaist() []float64 {
	xs := []float64{v.SideSeamX + v.SideDart/2}
	if v.BackDart > 0 {
		xs = append(xs, v.BackDartX-v.BackDart/2, v.BackDartX+v.BackDart/2)
	}
	if v.BladeDart > 0 {
		xs = append(xs, v.BladeDartX-v.BladeDart/2, v.BladeDartX+v.BladeDart/2)
	}
	return append(xs, v.CentreBackWaist)
}

func increasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}
