package veranet

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ImageNet normalization constants, matching the classifier's training
// pipeline. Order is R, G, B.
var (
	normMean = [3]float32{0.485, 0.456, 0.406}
	normStd  = [3]float32{0.229, 0.224, 0.225}
)

// pixelValues converts an image into the model's input layout: a flat
// [1,3,size,size] CHW tensor of normalized float32 channels.
func pixelValues(img image.Image, size int) []float32 {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			i := y*size + x
			out[i] = (float32(r)/0xffff - normMean[0]) / normStd[0]
			out[plane+i] = (float32(g)/0xffff - normMean[1]) / normStd[1]
			out[2*plane+i] = (float32(b)/0xffff - normMean[2]) / normStd[2]
		}
	}
	return out
}

// softmax converts logits to probabilities. Max-subtraction keeps the
// exponentials finite for large logits.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
