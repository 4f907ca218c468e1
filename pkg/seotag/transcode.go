package seotag

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"k8s.io/klog/v2"
)

// DefaultJPEGQuality is used for transcoded outputs when none is configured.
var DefaultJPEGQuality = 95

// transcodePNG re-encodes the PNG at src as a JPEG at dest, flattening any
// transparency onto a white background.
func transcodePNG(src string, dest string, quality int) error {
	klog.V(1).Infof("transcoding %s -> %s (quality %d)", src, dest, quality)
	img, err := imgio.Open(src)
	if err != nil {
		return fmt.Errorf("imgio.Open: %w", err)
	}

	flat := flatten(img)
	if err := imgio.Save(dest, flat, imgio.JPEGEncoder(quality)); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// flatten composites img over an opaque white canvas of the same size.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
