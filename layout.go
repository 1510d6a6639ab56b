package sloper

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/innermond/pak"
	"github.com/innermond/sloper/internal/geom"
	"github.com/innermond/sloper/internal/svg"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// strategies returns fresh packers, one per heuristic.
func strategies() map[string]*pak.Base {
	return map[string]*pak.Base{
		"BestAreaFit":      &pak.Base{Scorer: &pak.BestAreaFit{}},
		"BestLongSide":     &pak.Base{Scorer: &pak.BestLongSide{}},
		"BestShortSide":    &pak.Base{Scorer: &pak.BestShortSide{}},
		"BottomLeft":       &pak.Base{Scorer: &pak.BottomLeft{}},
		"BestSimilarRatio": &pak.Base{Scorer: &pak.BestSimilarRatio{}},
	}
}

// Layout plans a cutting marker: the pieces of a base, each in its
// bounding frame, packed on sheets of fabric.
type Layout struct {
	base *Base

	width, length float64
	gap           float64
	rotate        bool
	copies        int

	outname        string
	plain, showDim bool
}

// NewLayout packs on a fabric width wide, cut in sheets of length. Both are
// in centimetres.
func NewLayout(b *Base, width, length float64) *Layout {
	return &Layout{
		base:   b,
		width:  width,
		length: length,
		gap:    1,
		rotate: true,
		copies: 1,
		plain:  true,
	}
}

// Gap is the space kept between pieces.
func (l *Layout) Gap(cm float64) *Layout {
	l.gap = cm
	return l
}

// Rotate allows pieces to be turned by 90 degrees. Grain lines are not
// tracked, so turn it off for fabrics with a direction.
func (l *Layout) Rotate(yes bool) *Layout {
	l.rotate = yes
	return l
}

// Copies is how many times every piece is cut.
func (l *Layout) Copies(n int) *Layout {
	l.copies = n
	return l
}

// Outname turns on SVG output; sheets are named outname.N.strategy.svg.
func (l *Layout) Outname(name string) *Layout {
	l.outname = name
	return l
}

func (l *Layout) Appearance(yesno ...bool) *Layout {
	switch len(yesno) {
	case 0:
		l.plain = true
		l.showDim = false
	case 1:
		l.plain = yesno[0]
	default:
		l.plain = yesno[0]
		l.showDim = yesno[1]
	}
	return l
}

// Placement is where one copy of a piece lands.
type Placement struct {
	Piece   string  `json:"piece"`
	Copy    int     `json:"copy"`
	Sheet   int     `json:"sheet"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Rotated bool    `json:"rotated"`
}

// Report sums up the winning plan. Areas are in cm², lengths in cm.
type Report struct {
	WinningStrategy string      `json:"winning_strategy"`
	PiecesArea      float64     `json:"pieces_area"`
	FramesArea      float64     `json:"frames_area"`
	UsedArea        float64     `json:"used_area"`
	LostArea        float64     `json:"lost_area"`
	Efficiency      float64     `json:"efficiency"`
	UsedLength      float64     `json:"used_length"`
	NumSheetUsed    int         `json:"num_sheet_used"`
	UnfitLen        int         `json:"unfit_len"`
	UnfitCode       string      `json:"unfit_code"`
	Placements      []Placement `json:"placements"`
}

// FitReader maps a file name to the SVG of one marker sheet.
type FitReader map[string]io.Reader

// item is one copy of one piece waiting for a frame.
type item struct {
	piece  Piece
	copy   int
	bounds geom.Rect
	area   float64
}

type plan struct {
	usedArea, framesArea, usedLength float64
	sheets                           int
	unfit                            []*pak.Box
	placements                       []Placement
	outs                             []FitReader
	err                              error
}

// Fit tries every packing strategy at once and keeps the one losing the
// least fabric.
func (l *Layout) Fit() (*Report, []FitReader, error) {
	if l.base == nil {
		return nil, nil, errors.New("layout: no base")
	}
	verr := &ValidationError{}
	if !(l.width > 0) {
		verr.add("fabric_width", "must be positive, got %g", l.width)
	}
	if !(l.length > 0) {
		verr.add("sheet_length", "must be positive, got %g", l.length)
	}
	if l.copies < 1 {
		verr.add("copies", "must be at least 1, got %d", l.copies)
	}
	if l.gap < 0 {
		verr.add("gap", "must not be negative, got %g", l.gap)
	}
	if err := verr.orNil(); err != nil {
		return nil, nil, err
	}

	items, err := l.items()
	if err != nil {
		return nil, nil, err
	}

	plans := map[string]*plan{}
	mx := sync.Mutex{}

	all := strategies()
	var wg sync.WaitGroup
	wg.Add(len(all))
	for strategyName, strategy := range all {
		strategyName := strategyName
		strategy := strategy
		go func() {
			defer wg.Done()
			p := l.matchboxes(strategyName, strategy, items)
			mx.Lock()
			plans[strategyName] = p
			mx.Unlock()
		}()
	}
	wg.Wait()

	// fewest unfit frames first, then the least lost area; ties are broken
	// by name so the report does not depend on scheduling
	names := lo.Keys(plans)
	sort.Strings(names)
	winner := ""
	smallestUnfit, smallestLostArea := math.MaxInt, math.MaxFloat64
	for _, sn := range names {
		p := plans[sn]
		if p.err != nil {
			return nil, nil, errors.Wrapf(p.err, "strategy %s", sn)
		}
		lost := p.usedArea - p.framesArea
		if len(p.unfit) < smallestUnfit || (len(p.unfit) == smallestUnfit && lost < smallestLostArea) {
			smallestUnfit, smallestLostArea = len(p.unfit), lost
			winner = sn
		}
	}
	best, ok := plans[winner]
	if !ok {
		return nil, nil, errors.New("no winning strategy")
	}

	piecesArea := lo.SumBy(best.placements, func(pl Placement) float64 {
		it, _ := lo.Find(items, func(it item) bool { return it.piece.Name == pl.Piece })
		return it.area
	})
	rep := &Report{
		WinningStrategy: winner,
		PiecesArea:      piecesArea,
		FramesArea:      best.framesArea,
		UsedArea:        best.usedArea,
		LostArea:        best.usedArea - piecesArea,
		UsedLength:      best.usedLength,
		NumSheetUsed:    best.sheets,
		UnfitLen:        len(best.unfit),
		UnfitCode:       pak.BoxCode(best.unfit),
		Placements:      best.placements,
	}
	if best.usedArea > 0 {
		rep.Efficiency = piecesArea * 100 / best.usedArea
	}
	return rep, best.outs, nil
}

func (l *Layout) items() ([]item, error) {
	g := l.base.geometry
	var items []item
	for _, p := range g.Pieces {
		poly, err := g.Polygon(p)
		if err != nil {
			return nil, err
		}
		if len(p.Allowance) > 0 {
			poly = p.Allowance
		}
		for c := 1; c <= l.copies; c++ {
			items = append(items, item{
				piece:  p,
				copy:   c,
				bounds: g.PieceBounds(p),
				area:   math.Abs(geom.SignedArea(poly)),
			})
		}
	}
	return items, nil
}

// matchboxes packs the frames sheet after sheet until every frame is placed
// or a sheet takes none of the remaining ones.
func (l *Layout) matchboxes(strategyName string, strategy *pak.Base, items []item) *plan {
	p := &plan{}

	// the frame is grown by the gap; half of it is given back when drawing
	owner := map[*pak.Box]item{}
	boxes := make([]*pak.Box, 0, len(items))
	for _, it := range items {
		box := &pak.Box{W: it.bounds.Width() + l.gap, H: it.bounds.Height() + l.gap, CanRotate: l.rotate}
		owner[box] = it
		boxes = append(boxes, box)
	}
	// sort descending by area
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].W*boxes[i].H > boxes[j].W*boxes[j].H
	})

	for len(boxes) > 0 {
		bin := pak.NewBin(l.width, l.length, strategy)
		remaining := []*pak.Box{}
		maxy := 0.0
		placed := []*pak.Box{}
		for _, box := range boxes {
			if !bin.Insert(box) {
				remaining = append(remaining, box)
				continue
			}
			placed = append(placed, box)
			p.framesArea += box.W * box.H
			if box.Y+box.H > maxy {
				maxy = box.Y + box.H
			}
		}
		if len(placed) == 0 {
			break
		}
		p.sheets++

		var elements []PathElement
		for _, box := range placed {
			it := owner[box]
			pl := Placement{Piece: it.piece.Name, Copy: it.copy, Sheet: p.sheets, X: box.X, Y: box.Y, Rotated: box.Rotated}
			p.placements = append(p.placements, pl)
			elements = append(elements, l.placeElements(it, pl)...)
		}

		// a sheet is used only as far down as its lowest frame
		p.usedArea += l.width * maxy
		p.usedLength += maxy

		if l.outname != "" && p.err == nil {
			fn := fmt.Sprintf("%s.%d.%s.svg", l.outname, p.sheets, strategyName)
			out, err := l.sheet(fn, placed, elements, maxy)
			if err != nil {
				p.err = errors.Wrapf(err, "sheet %d", p.sheets)
			} else {
				p.outs = append(p.outs, out)
			}
		}
		boxes = remaining
	}
	p.unfit = boxes
	return p
}

// sheet draws the frames and the pieces placed on one sheet.
func (l *Layout) sheet(fn string, placed []*pak.Box, elements []PathElement, maxy float64) (FitReader, error) {
	s := svg.Start(l.width, maxy, "cm", l.plain)
	frames, err := svg.Boxes(placed, l.plain, l.showDim)
	if err != nil {
		return nil, err
	}
	s += frames
	s += drawElements(elements, func(v geom.Vec) geom.Vec { return v }, l.plain, false, 0.1)
	return FitReader{fn: strings.NewReader(svg.End(s))}, nil
}

// placeElements moves the path elements of one piece into its frame on
// the sheet, where y grows downwards.
func (l *Layout) placeElements(it item, pl Placement) []PathElement {
	bb := it.bounds
	half := l.gap / 2
	move := func(v geom.Vec) geom.Vec {
		local := geom.V(v.X-bb.Min.X, bb.Max.Y-v.Y)
		if pl.Rotated {
			local = geom.V(bb.Height()-local.Y, local.X)
		}
		return local.To(pl.X+half, pl.Y+half)
	}

	var out []PathElement
	for _, e := range l.base.geometry.PathElements() {
		if e.Piece != it.piece.Name {
			continue
		}
		e.Piece = fmt.Sprintf("%s-%d", it.piece.Name, it.copy)
		for i, v := range e.Points {
			e.Points[i] = move(v)
		}
		out = append(out, e)
	}
	return out
}
