package sloper

import "math"

// Fields is the plain, serialisable form of a measurement record.
// Lengths are in centimetres; a zero value means "not given".
type Fields struct {
	Waist        float64 `json:"waist" yaml:"waist"`
	HPSToWaist   float64 `json:"hps_to_waist" yaml:"hps_to_waist"`
	NapeToWaist  float64 `json:"nape_to_waist" yaml:"nape_to_waist"`
	ArmscyeDepth float64 `json:"armscye_depth" yaml:"armscye_depth"`
	NeckSize     float64 `json:"neck_size" yaml:"neck_size"`
	Shoulder     float64 `json:"shoulder" yaml:"shoulder"`
	XFront       float64 `json:"x_front" yaml:"x_front"`

	// optional
	XBack     float64 `json:"x_back,omitempty" yaml:"x_back,omitempty"`
	SleeveLen float64 `json:"sleeve_len,omitempty" yaml:"sleeve_len,omitempty"`
}

// Build finalises the fields into a validated record.
func (f Fields) Build() (Measurements, error) {
	b := NewBuilder().
		Waist(f.Waist).
		HPSToWaist(f.HPSToWaist).
		NapeToWaist(f.NapeToWaist).
		ArmscyeDepth(f.ArmscyeDepth).
		NeckSize(f.NeckSize).
		Shoulder(f.Shoulder).
		XFront(f.XFront)
	if f.XBack != 0 {
		b.XBack(f.XBack)
	}
	if f.SleeveLen != 0 {
		b.SleeveLen(f.SleeveLen)
	}
	return b.Build()
}

// Measurements is an immutable, validated body measurement record.
// Obtain one from Builder.Build or Fields.Build.
type Measurements struct {
	f Fields
}

func (m Measurements) Waist() float64        { return m.f.Waist }
func (m Measurements) HPSToWaist() float64   { return m.f.HPSToWaist }
func (m Measurements) NapeToWaist() float64  { return m.f.NapeToWaist }
func (m Measurements) ArmscyeDepth() float64 { return m.f.ArmscyeDepth }
func (m Measurements) NeckSize() float64     { return m.f.NeckSize }
func (m Measurements) Shoulder() float64     { return m.f.Shoulder }
func (m Measurements) XFront() float64       { return m.f.XFront }

// XBack falls back to the across front width when no back width was given.
func (m Measurements) XBack() float64 {
	if m.f.XBack == 0 {
		return m.f.XFront
	}
	return m.f.XBack
}

// SleeveLen is zero when no sleeve was requested.
func (m Measurements) SleeveLen() float64 { return m.f.SleeveLen }

// Fields returns a copy of the record in its serialisable form.
func (m Measurements) Fields() Fields { return m.f }

func (m Measurements) valid() bool {
	return m.f.Waist > 0 && m.f.HPSToWaist > 0 && m.f.NapeToWaist > 0 &&
		m.f.ArmscyeDepth > 0 && m.f.NeckSize > 0 && m.f.Shoulder > 0 && m.f.XFront > 0
}

type field struct {
	name     string
	value    float64
	set      bool
	optional bool
}

// Builder collects measurements one by one. Nothing is checked until Build.
type Builder struct {
	fields [9]field
}

const (
	fWaist = iota
	fHPSToWaist
	fNapeToWaist
	fArmscyeDepth
	fNeckSize
	fShoulder
	fXFront
	fXBack
	fSleeveLen
)

func NewBuilder() *Builder {
	b := &Builder{}
	for i, name := range []string{
		"waist", "hps_to_waist", "nape_to_waist", "armscye_depth",
		"neck_size", "shoulder", "x_front", "x_back", "sleeve_len",
	} {
		b.fields[i].name = name
	}
	b.fields[fXBack].optional = true
	b.fields[fSleeveLen].optional = true
	return b
}

func (b *Builder) set(i int, v float64) *Builder {
	b.fields[i].value = v
	b.fields[i].set = true
	return b
}

func (b *Builder) Waist(cm float64) *Builder        { return b.set(fWaist, cm) }
func (b *Builder) HPSToWaist(cm float64) *Builder   { return b.set(fHPSToWaist, cm) }
func (b *Builder) NapeToWaist(cm float64) *Builder  { return b.set(fNapeToWaist, cm) }
func (b *Builder) ArmscyeDepth(cm float64) *Builder { return b.set(fArmscyeDepth, cm) }
func (b *Builder) NeckSize(cm float64) *Builder     { return b.set(fNeckSize, cm) }
func (b *Builder) Shoulder(cm float64) *Builder     { return b.set(fShoulder, cm) }
func (b *Builder) XFront(cm float64) *Builder       { return b.set(fXFront, cm) }
func (b *Builder) XBack(cm float64) *Builder        { return b.set(fXBack, cm) }
func (b *Builder) SleeveLen(cm float64) *Builder    { return b.set(fSleeveLen, cm) }

// Set assigns a measurement by its snake case name, as used in files and
// on the command line.
func (b *Builder) Set(name string, cm float64) error {
	for i := range b.fields {
		if b.fields[i].name == name {
			b.set(i, cm)
			return nil
		}
	}
	return invalid(name, "is not a known measurement")
}

// Build validates every field at once and returns the immutable record.
func (b *Builder) Build() (Measurements, error) {
	verr := &ValidationError{}
	for _, f := range b.fields {
		switch {
		case !f.set && f.optional:
		case !f.set:
			verr.add(f.name, "is required")
		case math.IsNaN(f.value):
			verr.add(f.name, "is not a number")
		case math.IsInf(f.value, 0):
			verr.add(f.name, "is not finite")
		case f.value <= 0:
			verr.add(f.name, "must be positive, got %g", f.value)
		}
	}
	if err := verr.orNil(); err != nil {
		return Measurements{}, err
	}

	return Measurements{f: Fields{
		Waist:        b.fields[fWaist].value,
		HPSToWaist:   b.fields[fHPSToWaist].value,
		NapeToWaist:  b.fields[fNapeToWaist].value,
		ArmscyeDepth: b.fields[fArmscyeDepth].value,
		NeckSize:     b.fields[fNeckSize].value,
		Shoulder:     b.fields[fShoulder].value,
		XFront:       b.fields[fXFront].value,
		XBack:        b.fields[fXBack].value,
		SleeveLen:    b.fields[fSleeveLen].value,
	}}, nil
}
