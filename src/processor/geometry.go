package processor

import "image"

// Padding is the number of pixels added on each side of an image
type Padding struct {
	Left, Top, Right, Bottom int
}

// Total returns the number of pixels added across both axes
func (p Padding) Total() int {
	return p.Left + p.Top + p.Right + p.Bottom
}

// CropBox returns the centered square of side min(w, h) inside a w×h image.
// For odd differences the extra pixel is left on the right/bottom.
func CropBox(w, h int) image.Rectangle {
	size := min(w, h)
	left := (w - size) / 2
	top := (h - size) / 2
	return image.Rect(left, top, left+size, top+size)
}

// PadAmounts returns the padding that makes a w×h image max(w, h) square.
// Only the shorter axis is padded, and its first side receives the extra
// pixel when the difference is odd.
func PadAmounts(w, h int) Padding {
	size := max(w, h)
	if w < h {
		pad := size - w
		left := (pad + 1) / 2
		return Padding{Left: left, Right: pad - left}
	}
	pad := size - h
	top := (pad + 1) / 2
	return Padding{Top: top, Bottom: pad - top}
}
