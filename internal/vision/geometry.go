package vision

import (
	"image"

	"golang.org/x/image/draw"
)

// resize scales img to w×h with bilinear interpolation.
func resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// borderStrip extracts the bottom edge of the image, where seams and stitch
// rows sit on most bags and small leather goods. The strip is stretched back
// to a square so hashing weighs stitch spacing, not strip geometry.
func borderStrip(img image.Image) image.Image {
	b := img.Bounds()
	h := b.Dy() / 8
	if h < 1 {
		h = 1
	}
	strip := image.NewRGBA(image.Rect(0, 0, b.Dx(), h))
	draw.Copy(strip, image.Point{}, img, image.Rect(b.Min.X, b.Max.Y-h, b.Max.X, b.Max.Y), draw.Over, nil)
	return resize(strip, 64, 64)
}

// centerCrop extracts the middle half of the image, where clasps, zippers and
// other hardware usually sit.
func centerCrop(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx()/2, b.Dy()/2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x0 := b.Min.X + (b.Dx()-w)/2
	y0 := b.Min.Y + (b.Dy()-h)/2
	crop := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(crop, image.Point{}, img, image.Rect(x0, y0, x0+w, y0+h), draw.Over, nil)
	return crop
}

// mirrorHorizontal flips the image left-to-right.
func mirrorHorizontal(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(b.Dx()-1-x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// leftHalf and rightHalf split the image for symmetry comparison.
func leftHalf(img image.Image) image.Image {
	b := img.Bounds()
	w := b.Dx() / 2
	if w < 1 {
		w = 1
	}
	crop := image.NewRGBA(image.Rect(0, 0, w, b.Dy()))
	draw.Copy(crop, image.Point{}, img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Max.Y), draw.Over, nil)
	return crop
}

func rightHalf(img image.Image) image.Image {
	b := img.Bounds()
	w := b.Dx() / 2
	if w < 1 {
		w = 1
	}
	crop := image.NewRGBA(image.Rect(0, 0, w, b.Dy()))
	draw.Copy(crop, image.Point{}, img, image.Rect(b.Max.X-w, b.Min.Y, b.Max.X, b.Max.Y), draw.Over, nil)
	return crop
}

// colorSigSide is the downscale side length for color signatures.
const colorSigSide = 8

// colorSignature reduces the image to an 8×8 grid of normalized RGB values.
// The flat slice has 8×8×3 entries in row-major order.
func colorSignature(img image.Image) []float64 {
	small := resize(img, colorSigSide, colorSigSide)
	sig := make([]float64, 0, colorSigSide*colorSigSide*3)
	for y := 0; y < colorSigSide; y++ {
		for x := 0; x < colorSigSide; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			sig = append(sig, float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff)
		}
	}
	return sig
}

// colorDistance is the mean absolute channel difference between two
// signatures, in [0,1].
func colorDistance(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(a))
}
