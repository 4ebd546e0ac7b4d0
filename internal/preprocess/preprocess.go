// Package preprocess turns uploaded images into model input tensors.
package preprocess

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

// DefaultSize is the square input edge used when the model does not pin one.
const DefaultSize = 224

// Layout is the memory order of the input tensor.
type Layout int

const (
	// NHWC is [1, H, W, 3], the Keras default.
	NHWC Layout = iota
	// NCHW is [1, 3, H, W].
	NCHW
)

func (l Layout) String() string {
	if l == NCHW {
		return "NCHW"
	}
	return "NHWC"
}

// Options describe the tensor a model expects.
type Options struct {
	Width  int
	Height int
	Layout Layout
}

// DefaultOptions is a 224x224 NHWC tensor.
func DefaultOptions() Options {
	return Options{Width: DefaultSize, Height: DefaultSize, Layout: NHWC}
}

// OptionsFor derives Options from a model input shape. Shapes other than a
// four dimensional image batch fall back to DefaultOptions.
func OptionsFor(shape []int64) Options {
	opts := DefaultOptions()
	if len(shape) != 4 {
		return opts
	}

	h, w := shape[1], shape[2]
	if shape[1] == 3 && shape[3] != 3 {
		opts.Layout = NCHW
		h, w = shape[2], shape[3]
	}
	if h > 1 && w > 1 {
		opts.Height, opts.Width = int(h), int(w)
	}
	return opts
}

// Shape returns the tensor shape for o, batch dimension included.
func (o Options) Shape() []int64 {
	if o.Layout == NCHW {
		return []int64{1, 3, int64(o.Height), int64(o.Width)}
	}
	return []int64{1, int64(o.Height), int64(o.Width), 3}
}

// Decode reads a JPEG, PNG or BMP image.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Tensor resizes img and returns its RGB pixels scaled to [0,1].
func Tensor(img image.Image, opts Options) []float32 {
	resized := resize.Resize(uint(opts.Width), uint(opts.Height), img, resize.NearestNeighbor)
	bounds := resized.Bounds()
	width, height := opts.Width, opts.Height
	plane := width * height

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r := float32(px.R) / 255.0
			g := float32(px.G) / 255.0
			b := float32(px.B) / 255.0

			i := y*width + x
			if opts.Layout == NCHW {
				data[i] = r
				data[plane+i] = g
				data[2*plane+i] = b
				continue
			}
			data[3*i] = r
			data[3*i+1] = g
			data[3*i+2] = b
		}
	}
	return data
}

// File decodes the image at path and converts it with Tensor.
func File(path string, opts Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return Tensor(img, opts), nil
}
