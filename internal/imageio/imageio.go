// Package imageio handles conversion between the quantizer's internal
// colorvec.Image representation and external byte formats: the original
// command line's raw-RGB stream contract, and standard image files for the
// HTTP server's upload/preview endpoints.
package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/cwbudde/spatialquant/internal/colorvec"
)

// ReadRawRGB reads width*height pixels of row-major interleaved 8-bit RGB
// (3 bytes per pixel, no header) from r and converts them to a
// colorvec.Image with channels normalized to [0, 1] via /255, matching the
// original command line tool's input contract byte-for-byte.
func ReadRawRGB(r io.Reader, width, height int) (colorvec.Image, error) {
	if width <= 0 || height <= 0 {
		return colorvec.Image{}, fmt.Errorf("imageio: width and height must be positive, got %dx%d", width, height)
	}

	img := colorvec.NewImage(width, height)
	buf := make([]byte, 3)
	br := bufio.NewReader(r)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if _, err := io.ReadFull(br, buf); err != nil {
				return colorvec.Image{}, fmt.Errorf("imageio: reading pixel (%d,%d): %w", x, y, err)
			}
			img.Set(x, y, colorvec.Vec3{
				float64(buf[0]) / 255,
				float64(buf[1]) / 255,
				float64(buf[2]) / 255,
			})
		}
	}
	return img, nil
}

// WriteRawRGB writes img as row-major interleaved 8-bit RGB, scaling each
// [0,1] channel by 255, rounding to nearest, and clamping to [0,255] -
// the original command line tool's output contract.
func WriteRawRGB(w io.Writer, img colorvec.Image) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 3)

	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c := img.At(x, y)
			buf[0] = toByte(c[0])
			buf[1] = toByte(c[1])
			buf[2] = toByte(c[2])
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("imageio: writing pixel (%d,%d): %w", x, y, err)
			}
		}
	}
	return bw.Flush()
}

func toByte(v float64) byte {
	scaled := math.Round(v * 255)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return byte(scaled)
}

// ReadRawRGBFile opens path and decodes it as a raw-RGB stream of the given
// dimensions.
func ReadRawRGBFile(path string, width, height int) (colorvec.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return colorvec.Image{}, fmt.Errorf("imageio: opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadRawRGB(f, width, height)
}

// WriteRawRGBFile creates (or truncates) path and writes img as a raw-RGB
// stream.
func WriteRawRGBFile(path string, img colorvec.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteRawRGB(f, img)
}

// Decode reads a standard image file (PNG, JPEG, or GIF) and converts it to
// a colorvec.Image, normalizing each channel to [0, 1]. This supports the
// HTTP server's image upload path, which accepts ordinary image files
// rather than the CLI's raw byte contract.
func Decode(r io.Reader) (colorvec.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return colorvec.Image{}, fmt.Errorf("imageio: decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	img := colorvec.NewImage(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			img.Set(x, y, colorvec.Vec3{
				float64(r16) / 65535,
				float64(g16) / 65535,
				float64(b16) / 65535,
			})
		}
	}
	return img, nil
}

// DecodeFile opens path and decodes it as a standard image file.
func DecodeFile(path string) (colorvec.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return colorvec.Image{}, fmt.Errorf("imageio: opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// EncodePNG writes img to w as a PNG file.
func EncodePNG(w io.Writer, img colorvec.Image) error {
	dst := image.NewNRGBA(image.Rect(0, 0, img.W, img.H))
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c := img.At(x, y)
			dst.SetNRGBA(x, y, color.NRGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: 255})
		}
	}
	return png.Encode(w, dst)
}
