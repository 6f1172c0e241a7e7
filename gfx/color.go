// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package gfx converts managed colors into the packed forms uniform
// buffers want.
package gfx

import (
	"honnef.co/go/color"
)

// NewSRGB returns an sRGB color with the given non-premultiplied
// channels in [0, 1].
func NewSRGB(r, g, b, a float64) *color.Color {
	return &color.Color{
		Space:  color.SRGB,
		Values: [4]float64{r, g, b, a},
	}
}

// Premul32 returns c as premultiplied linear sRGB, the layout shading
// uniforms consume.
func Premul32(c *color.Color) [4]float32 {
	cc := c.Convert(color.LinearSRGB)
	r := cc.Values[0]
	g := cc.Values[1]
	b := cc.Values[2]
	a := cc.Values[3]

	return [4]float32{
		float32(r * a),
		float32(g * a),
		float32(b * a),
		float32(a),
	}
}
