// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

func checkerboard(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{R: 0xff, A: 0xff}
			if (x+y)%2 == 0 {
				c = color.RGBA{B: 0xff, A: 0xff}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// PNG returns a small w x h PNG image.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, checkerboard(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG returns a small w x h JPEG image.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, checkerboard(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
