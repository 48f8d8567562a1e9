// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encode compresses page bitmaps into payloads that fit under the
// hosted model's hard byte ceiling.
//
// The reduction order is fixed: PNG first, then the JPEG quality ladder
// from QualityStart down to QualityFloor, and only then resolution. Each
// downscale restarts the ladder at QualityReset. Quality loss is visually
// cheaper than resolution loss for text-heavy pages, so quality is always
// exhausted before pixels are given up.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/pdiddy/vision-md/pkg/types"
)

// downscaleFactor halves the pixel area per downscale step.
const downscaleFactor = 0.7071

// Payload is one encoded image ready to be sent to the model.
type Payload struct {
	// Data is the encoded byte buffer.
	Data []byte

	// MIME is "image/png" or "image/jpeg".
	MIME string

	// Quality is the JPEG quality used (0 for PNG).
	Quality int

	// Width and Height are the final pixel dimensions.
	Width, Height int

	// Oversize reports that Data still exceeds the configured ceiling
	// after floor quality and minimum resolution. The payload is the
	// smallest one achieved and is still usable.
	Oversize bool
}

// Image encodes img under cfg.MaxBytes. The result is deterministic for a
// given image and configuration. When even the floor settings cannot meet
// the ceiling the smallest payload seen is returned with Oversize set;
// encoding never fails on size alone.
func Image(img image.Image, cfg types.EncodeConfig) (Payload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Payload{}, fmt.Errorf("png encode: %w", err)
	}
	b := img.Bounds()
	if buf.Len() <= cfg.MaxBytes {
		return Payload{
			Data:   append([]byte(nil), buf.Bytes()...),
			MIME:   "image/png",
			Width:  b.Dx(),
			Height: b.Dy(),
		}, nil
	}

	flat := flatten(img)
	best := Payload{Oversize: true}
	qualityStart := cfg.QualityStart

	for {
		p, fit, err := qualityLadder(flat, qualityStart, cfg)
		if err != nil {
			return Payload{}, err
		}
		if fit {
			return p, nil
		}
		if best.Data == nil || len(p.Data) < len(best.Data) {
			best = p
			best.Oversize = true
		}

		w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
		nw := scaleDim(w, cfg.MinEdgePx)
		nh := scaleDim(h, cfg.MinEdgePx)
		if nw == w && nh == h {
			// Floor resolution reached; best effort is all we have.
			return best, nil
		}
		flat = resize(flat, nw, nh)
		qualityStart = cfg.QualityReset
	}
}

// qualityLadder walks JPEG qualities from start down to the floor and
// returns the first payload under the ceiling, or the smallest attempt
// with fit=false when none qualifies.
func qualityLadder(img *image.RGBA, start int, cfg types.EncodeConfig) (Payload, bool, error) {
	b := img.Bounds()
	smallest := Payload{}
	// A start below the floor still encodes once at the floor, so the
	// ladder can never return an empty payload.
	if start < cfg.QualityFloor {
		start = cfg.QualityFloor
	}
	for q := start; q >= cfg.QualityFloor; q -= cfg.QualityStep {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return Payload{}, false, fmt.Errorf("jpeg encode at quality %d: %w", q, err)
		}
		p := Payload{
			Data:    append([]byte(nil), buf.Bytes()...),
			MIME:    "image/jpeg",
			Quality: q,
			Width:   b.Dx(),
			Height:  b.Dy(),
		}
		if len(p.Data) <= cfg.MaxBytes {
			return p, true, nil
		}
		if smallest.Data == nil || len(p.Data) < len(smallest.Data) {
			smallest = p
		}
	}
	return smallest, false, nil
}

// scaleDim shrinks one dimension by the downscale factor, clamped to the
// minimum edge length.
func scaleDim(d, minEdge int) int {
	n := int(math.Round(float64(d) * downscaleFactor))
	if n < minEdge {
		n = minEdge
	}
	if n > d {
		n = d
	}
	return n
}

// flatten composites img onto a white background, discarding alpha. JPEG
// has no transparency and premultiplied-zero pixels would come out black.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Over)
	return out
}

// resize scales img to w x h with Catmull-Rom resampling.
func resize(img *image.RGBA, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return out
}
