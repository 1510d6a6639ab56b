package svg

import (
	"errors"
	"fmt"
	"math"

	"github.com/innermond/pak"
)

func aproximateHeightText(numchar int, w float64) float64 {
	wchar := w / float64(numchar+2)
	return math.Floor(1.5*wchar*100.0) / 100
}

var (
	boxStyle     = "stroke:#bbb;stroke-width:0.1;stroke-dasharray:0.5,0.5;fill:none"
	rotatedStyle = "stroke:#c66;stroke-width:0.1;stroke-dasharray:0.5,0.5;fill:none"
)

// Boxes draws the frames packed on one marker sheet and, when showDim is
// set, a layer with each frame's size. Rotated frames are marked with R.
func Boxes(blocks []*pak.Box, plain bool, showDim bool) (string, error) {
	if len(blocks) == 0 {
		return "", errors.New("no blocks")
	}

	gb := Layer("frames", plain)
	for _, blk := range blocks {
		if blk == nil {
			return "", errors.New("unexpected unfit block")
		}
		style := boxStyle
		if blk.Rotated {
			style = rotatedStyle
		}
		gb += Rect(blk.X, blk.Y, blk.W, blk.H, style)
	}
	gb = GroupEnd(gb)

	if !showDim {
		return gb, nil
	}
	gt := Layer("dimensions", plain)
	for _, blk := range blocks {
		x := fmt.Sprintf("%.1fx%.1f", blk.W, blk.H)
		if blk.Rotated {
			x += "R"
		}
		y := aproximateHeightText(len(x), blk.W)
		// sits on the bottom edge, y/3 is empirical
		gt += Text(blk.X+blk.W/2, blk.Y+blk.H-y/3, "",
			x, "text-anchor:middle;font-size:"+fmt.Sprintf("%.2f", y)+";fill:#999")
	}
	gt = GroupEnd(gt)
	return gb + gt, nil
}
