package server

import (
	"fmt"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/imageio"
)

// loadSourceImage loads the job's source image (a standard image file, not
// the CLI's raw-RGB stream) and converts it to the quantizer's internal
// representation.
func loadSourceImage(path string) (colorvec.Image, error) {
	img, err := imageio.DecodeFile(path)
	if err != nil {
		return colorvec.Image{}, fmt.Errorf("failed to load source image: %w", err)
	}
	return img, nil
}
