package vision

import (
	"image"
	"image/color"
	"testing"
)

func TestMirrorHorizontal(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.White)
	out := mirrorHorizontal(img)
	r, _, _, _ := out.At(3, 0).RGBA()
	if r == 0 {
		t.Fatal("leftmost pixel should move to the right edge")
	}
	r, _, _, _ = out.At(0, 0).RGBA()
	if r != 0 {
		t.Fatal("right edge was black and should stay black after mirroring")
	}
}

func TestHalvesCoverOppositeSides(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 4; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	l := leftHalf(img)
	rI := rightHalf(img)
	if r, _, _, _ := l.At(0, 0).RGBA(); r != 0 {
		t.Fatal("left half should be black")
	}
	if r, _, _, _ := rI.At(0, 0).RGBA(); r == 0 {
		t.Fatal("right half should be white")
	}
}

func TestColorSignatureAndDistance(t *testing.T) {
	white := image.NewRGBA(image.Rect(0, 0, 16, 16))
	black := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			white.Set(x, y, color.White)
			black.Set(x, y, color.Black)
		}
	}

	ws := colorSignature(white)
	bs := colorSignature(black)
	if len(ws) != colorSigSide*colorSigSide*3 {
		t.Fatalf("signature length = %d", len(ws))
	}
	if d := colorDistance(ws, ws); d != 0 {
		t.Fatalf("self distance = %v", d)
	}
	if d := colorDistance(ws, bs); d < 0.9 {
		t.Fatalf("white/black distance = %v", d)
	}
	if d := colorDistance(ws, nil); d != 1 {
		t.Fatalf("mismatched lengths should be max distance, got %v", d)
	}
}

func TestBorderStripAndCenterCropTinyImages(t *testing.T) {
	tiny := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if img := borderStrip(tiny); img.Bounds().Dx() != 64 {
		t.Fatalf("strip bounds = %v", img.Bounds())
	}
	if img := centerCrop(tiny); img.Bounds().Empty() {
		t.Fatal("center crop of a tiny image should not be empty")
	}
}
