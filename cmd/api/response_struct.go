package main

import (
	"github.com/innermond/sloper"
	"github.com/innermond/sloper/internal/store"
)

const (
	defaultEase   = 14.0
	defaultCanvas = 900
)

// DraftRequest asks for one sloper drawn on a width×height canvas.
type DraftRequest struct {
	Measurements sloper.Fields `json:"measurements"`
	// missing means the default ease, 0 is a valid ease
	Ease *float64 `json:"ease"`
	// canvas size, 900 when missing
	Width  int `json:"width"`
	Height int `json:"height"`
	// cm around every piece, none when 0
	SeamAllowance float64 `json:"seam_allowance"`
	// inkscape layers instead of plain groups
	Inkscape bool `json:"inkscape"`
	// draw the name of every outline point
	Labels bool `json:"labels"`
}

func (r *DraftRequest) defaults() {
	if r.Ease == nil {
		e := defaultEase
		r.Ease = &e
	}
	if r.Width == 0 {
		r.Width = defaultCanvas
	}
	if r.Height == 0 {
		r.Height = defaultCanvas
	}
}

type DraftResponse struct {
	Values sloper.Values         `json:"values"`
	Pieces []sloper.PieceSummary `json:"pieces"`
	SVG    string                `json:"svg"`
}

// LayoutRequest asks for a cutting marker of the drafted pieces.
type LayoutRequest struct {
	Measurements  sloper.Fields `json:"measurements"`
	Ease          *float64      `json:"ease"`
	SeamAllowance float64       `json:"seam_allowance"`

	// fabric roll width and the length of one sheet, cm
	FabricWidth float64 `json:"fabric_width"`
	SheetLength float64 `json:"sheet_length"`
	// space between pieces, 1 cm when missing
	Gap *float64 `json:"gap"`
	// how many times each piece is cut, 1 when missing
	Copies int `json:"copies"`
	// keep pieces upright, for fabrics with a direction
	NoRotate bool `json:"no_rotate"`

	// return the marker sheets as SVG
	SVG      bool `json:"svg"`
	Inkscape bool `json:"inkscape"`
	ShowDim  bool `json:"showdim"`
}

func (r *LayoutRequest) defaults() {
	if r.Ease == nil {
		e := defaultEase
		r.Ease = &e
	}
	if r.Gap == nil {
		g := 1.0
		r.Gap = &g
	}
	if r.Copies == 0 {
		r.Copies = 1
	}
}

type LayoutResponse struct {
	Rep  *sloper.Report    `json:"rep"`
	Svgs map[string]string `json:"svgs,omitempty"`
}

type ProfileResponse struct {
	Data store.Profile `json:"data"`
}

type ProfilesResponse struct {
	Data []store.Profile `json:"data"`
}

// ErrorResponse is what every failed request gets back. Problems lists the
// offending fields of invalid input.
type ErrorResponse struct {
	Error     string           `json:"error"`
	Message   string           `json:"message"`
	RequestID string           `json:"request_id"`
	Problems  []sloper.Problem `json:"problems,omitempty"`
}
