package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// size is a "wxh" pair; a single number gives a square.
type size [2]float64

func (s size) String() string {
	return fmt.Sprintf("%vx%v", s[0], s[1])
}

func (s *size) UnmarshalText(text []byte) error {
	wh := strings.Split(strings.TrimSpace(string(text)), "x")
	switch len(wh) {
	case 1:
		wh = append(wh, wh[0])
	case 2:
	default:
		return errors.Errorf("size %q is not wxh", text)
	}

	w, err := strconv.ParseFloat(wh[0], 64)
	if err != nil {
		return errors.New("can't get width")
	}
	h, err := strconv.ParseFloat(wh[1], 64)
	if err != nil {
		return errors.New("can't get height")
	}
	if !(w > 0) || !(h > 0) {
		return errors.Errorf("size %q must be positive", text)
	}
	s[0], s[1] = w, h
	return nil
}

func (s size) ints() (int, int) {
	return int(s[0]), int(s[1])
}
