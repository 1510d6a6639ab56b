package sloper

import (
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Rules holds every drafting coefficient. Lengths are in centimetres and
// angles in degrees. The defaults follow the classic close fitting bodice
// block for a woven fabric; each value notes what it controls.
type Rules struct {
	// finished half waist = (waist + WaistEase·2) / 2
	WaistEase float64 `yaml:"waist_ease" json:"waist_ease"`

	// front neck depth and width = neck radius · NeckDepthRatio
	NeckDepthRatio float64 `yaml:"neck_depth_ratio" json:"neck_depth_ratio"`
	// the front neck point sits this much below the high point shoulder line
	NeckDrop float64 `yaml:"neck_drop" json:"neck_drop"`
	// back neck width = front neck width + BackNeckExtra
	BackNeckExtra float64 `yaml:"back_neck_extra" json:"back_neck_extra"`
	// back neck rise = (front neck depth + BackNeckRiseOffset) / BackNeckRiseDivisor - BackNeckExtra
	BackNeckRiseOffset  float64 `yaml:"back_neck_rise_offset" json:"back_neck_rise_offset"`
	BackNeckRiseDivisor float64 `yaml:"back_neck_rise_divisor" json:"back_neck_rise_divisor"`
	// the back neckline passes this much above the nape, a third of the way in
	BackNeckLift float64 `yaml:"back_neck_lift" json:"back_neck_lift"`

	FrontShoulderSlope float64 `yaml:"front_shoulder_slope" json:"front_shoulder_slope"`
	BackShoulderSlope  float64 `yaml:"back_shoulder_slope" json:"back_shoulder_slope"`

	// chest line = nape to waist - armscye depth - ArmscyeDrop
	ArmscyeDrop float64 `yaml:"armscye_drop" json:"armscye_drop"`
	// across front line = x_front / 2 + FrontArmholeAllowance
	FrontArmholeAllowance float64 `yaml:"front_armhole_allowance" json:"front_armhole_allowance"`
	// where the upper armhole control sits between the across line and the shoulder
	ArmholeControlRatio float64 `yaml:"armhole_control_ratio" json:"armhole_control_ratio"`

	// share of the total dart intake (ease / 2) taken by each dart; they add up to 1
	FrontDartShare      float64 `yaml:"front_dart_share" json:"front_dart_share"`
	SideDartShare       float64 `yaml:"side_dart_share" json:"side_dart_share"`
	BackDartShare       float64 `yaml:"back_dart_share" json:"back_dart_share"`
	BladeDartShare      float64 `yaml:"blade_dart_share" json:"blade_dart_share"`
	CentreBackDartShare float64 `yaml:"centre_back_dart_share" json:"centre_back_dart_share"`
	// darts narrower than this are not drawn
	MinDartIntake float64 `yaml:"min_dart_intake" json:"min_dart_intake"`

	FrontDartInset float64 `yaml:"front_dart_inset" json:"front_dart_inset"`
	BustPointDrop  float64 `yaml:"bust_point_drop" json:"bust_point_drop"`
	BackDartOffset float64 `yaml:"back_dart_offset" json:"back_dart_offset"`
	BladeDartShift float64 `yaml:"blade_dart_shift" json:"blade_dart_shift"`
	BladeDartLift  float64 `yaml:"blade_dart_lift" json:"blade_dart_lift"`

	// opening of the front chest dart where it breaks the armhole; its apex
	// sits on the chest line halfway to the centre front, shifted by the
	// same amount towards the armhole
	ChestDartIntake float64 `yaml:"chest_dart_intake" json:"chest_dart_intake"`

	// back shoulder dart width = (x_front + x_back) / ShoulderDartDivisor
	ShoulderDartDivisor float64 `yaml:"shoulder_dart_divisor" json:"shoulder_dart_divisor"`
	// distance of the dart from the neck, in dart widths
	ShoulderDartPosition  float64 `yaml:"shoulder_dart_position" json:"shoulder_dart_position"`
	ShoulderDartApexInset float64 `yaml:"shoulder_dart_apex_inset" json:"shoulder_dart_apex_inset"`
	ShoulderDartApexLift  float64 `yaml:"shoulder_dart_apex_lift" json:"shoulder_dart_apex_lift"`

	// short sleeve length as a share of shoulder to wrist
	ShortSleeveRatio float64 `yaml:"short_sleeve_ratio" json:"short_sleeve_ratio"`
	// cap height = (front + back armhole) / SleeveCapDivisor
	SleeveCapDivisor float64 `yaml:"sleeve_cap_divisor" json:"sleeve_cap_divisor"`
	// the cap front is shortened and the back lengthened by this much
	SleeveCapEase float64 `yaml:"sleeve_cap_ease" json:"sleeve_cap_ease"`
	// hem inset = sleeve width / SleeveHemDivisor - SleeveHemInset
	SleeveHemDivisor float64 `yaml:"sleeve_hem_divisor" json:"sleeve_hem_divisor"`
	SleeveHemInset   float64 `yaml:"sleeve_hem_inset" json:"sleeve_hem_inset"`
	// underarm seams bow inwards by this much at the hem
	SleeveSeamInset float64 `yaml:"sleeve_seam_inset" json:"sleeve_seam_inset"`
	// the front of the cap dips towards the chord by this much, the back
	// and the crown rise above it
	SleeveCapHollow    float64 `yaml:"sleeve_cap_hollow" json:"sleeve_cap_hollow"`
	SleeveCapBackRise  float64 `yaml:"sleeve_cap_back_rise" json:"sleeve_cap_back_rise"`
	SleeveCapFrontRise float64 `yaml:"sleeve_cap_front_rise" json:"sleeve_cap_front_rise"`

	// horizontal gap between the bodice and the sleeve
	PieceGap float64 `yaml:"piece_gap" json:"piece_gap"`

	MinEase float64 `yaml:"min_ease" json:"min_ease"`
	MaxEase float64 `yaml:"max_ease" json:"max_ease"`

	// canvas margin as a share of the shorter canvas side
	CanvasMarginRatio float64 `yaml:"canvas_margin_ratio" json:"canvas_margin_ratio"`
}

// capParams are the curve parameters at which the sleeve cap passes
// through back notch, back rise, crown, front rise, front hollow and front
// notch.
var capParams = []float64{0, 0.24, 0.38, 0.52, 0.76, 1}

func DefaultRules() Rules {
	return Rules{
		WaistEase: 2.0,

		NeckDepthRatio:      1.7,
		NeckDrop:            0.5,
		BackNeckExtra:       0.3,
		BackNeckRiseOffset:  3.0,
		BackNeckRiseDivisor: 3.0,
		BackNeckLift:        0.5,

		FrontShoulderSlope: 22,
		BackShoulderSlope:  21,

		ArmscyeDrop:           3.0,
		FrontArmholeAllowance: 1.7,
		ArmholeControlRatio:   0.5,

		FrontDartShare:      0.16,
		SideDartShare:       0.16,
		BackDartShare:       0.36,
		BladeDartShare:      0.24,
		CentreBackDartShare: 0.08,
		MinDartIntake:       0.5,

		FrontDartInset: 1.5,
		BustPointDrop:  2.5,
		BackDartOffset: 1.0,
		BladeDartShift: 1.0,
		BladeDartLift:  2.5,

		ChestDartIntake: 0.7,

		ShoulderDartDivisor:   32,
		ShoulderDartPosition:  0.9,
		ShoulderDartApexInset: 0.5,
		ShoulderDartApexLift:  1.5,

		ShortSleeveRatio: 0.416,
		SleeveCapDivisor: 6,
		SleeveCapEase:    0.5,
		SleeveHemDivisor: 8,
		SleeveHemInset:   1.5,
		SleeveSeamInset:  1.5,

		SleeveCapHollow:    2.5,
		SleeveCapBackRise:  1.9,
		SleeveCapFrontRise: 1.0,

		PieceGap: 5,

		MinEase: 0,
		MaxEase: 40,

		CanvasMarginRatio: 0.05,
	}
}

// Validate checks the table is usable. Every problem is reported at once.
func (r Rules) Validate() error {
	verr := &ValidationError{}
	positive := map[string]float64{
		"neck_depth_ratio":       r.NeckDepthRatio,
		"back_neck_rise_divisor": r.BackNeckRiseDivisor,
		"shoulder_dart_divisor":  r.ShoulderDartDivisor,
		"short_sleeve_ratio":     r.ShortSleeveRatio,
		"sleeve_cap_divisor":     r.SleeveCapDivisor,
		"sleeve_hem_divisor":     r.SleeveHemDivisor,
	}
	for _, name := range sortedKeys(positive) {
		if !(positive[name] > 0) {
			verr.add(name, "must be positive, got %g", positive[name])
		}
	}
	nonNegative := map[string]float64{
		"waist_ease":              r.WaistEase,
		"neck_drop":               r.NeckDrop,
		"back_neck_extra":         r.BackNeckExtra,
		"armscye_drop":            r.ArmscyeDrop,
		"front_armhole_allowance": r.FrontArmholeAllowance,
		"min_dart_intake":         r.MinDartIntake,
		"front_dart_share":        r.FrontDartShare,
		"side_dart_share":         r.SideDartShare,
		"back_dart_share":         r.BackDartShare,
		"blade_dart_share":        r.BladeDartShare,
		"centre_back_dart_share":  r.CentreBackDartShare,
		"chest_dart_intake":       r.ChestDartIntake,
		"shoulder_dart_position":  r.ShoulderDartPosition,
		"piece_gap":               r.PieceGap,
		"min_ease":                r.MinEase,
	}
	for _, name := range sortedKeys(nonNegative) {
		if !(nonNegative[name] >= 0) {
			verr.add(name, "must not be negative, got %g", nonNegative[name])
		}
	}

	sum := r.FrontDartShare + r.SideDartShare + r.BackDartShare + r.BladeDartShare + r.CentreBackDartShare
	if math.Abs(sum-1) > 1e-9 {
		verr.add("dart_shares", "must add up to 1, got %g", sum)
	}
	if !(r.ArmholeControlRatio > 0 && r.ArmholeControlRatio < 1) {
		verr.add("armhole_control_ratio", "must be between 0 and 1, got %g", r.ArmholeControlRatio)
	}
	if !(r.MaxEase > r.MinEase) {
		verr.add("max_ease", "must be greater than min_ease")
	}
	if !(r.CanvasMarginRatio >= 0 && r.CanvasMarginRatio < 0.5) {
		verr.add("canvas_margin_ratio", "must be in [0, 0.5), got %g", r.CanvasMarginRatio)
	}
	if !(r.FrontShoulderSlope > 0 && r.FrontShoulderSlope < 90) {
		verr.add("front_shoulder_slope", "must be between 0 and 90 degrees")
	}
	if !(r.BackShoulderSlope > 0 && r.BackShoulderSlope < 90) {
		verr.add("back_shoulder_slope", "must be between 0 and 90 degrees")
	}
	return verr.orNil()
}

// LoadRules reads a YAML file of overrides on top of DefaultRules.
// Unknown keys are rejected.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	f, err := os.Open(path)
	if err != nil {
		return r, errors.Wrap(err, "open rules")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && err != io.EOF {
		return DefaultRules(), errors.Wrapf(err, "decode rules %s", path)
	}
	return r, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
