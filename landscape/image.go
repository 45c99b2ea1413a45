package landscape

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Channel selects which scalar is extracted from each image pixel.
type Channel int

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
	ChannelA
	ChannelLuma
)

// ParseChannel maps the config strings to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "r":
		return ChannelR, nil
	case "g":
		return ChannelG, nil
	case "b":
		return ChannelB, nil
	case "a":
		return ChannelA, nil
	case "luma", "":
		return ChannelLuma, nil
	}
	return 0, fmt.Errorf("landscape: unknown image channel %q (want r|g|b|a|luma)", s)
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}
	return img, nil
}

// NewFromImage creates a landscape sized from a square capacity image and
// populates the Capacity layer from the chosen channel.
func NewFromImage(path string, ch Channel) (*Landscape, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	l, err := New(img.Bounds().Dx())
	if err != nil {
		return nil, err
	}
	if err := l.InitLayer(Capacity, img, ch); err != nil {
		return nil, err
	}
	return l, nil
}

// InitLayer populates a named layer from an image, one pixel per cell,
// values scaled to [0,1]. The image dimensions must match the established
// grid size exactly.
func (l *Landscape) InitLayer(layer Layer, img image.Image, ch Channel) error {
	b := img.Bounds()
	if b.Dx() != l.dim || b.Dy() != l.dim {
		return fmt.Errorf("landscape: image dimensions %dx%d do not match grid size %d",
			b.Dx(), b.Dy(), l.dim)
	}

	data := l.layers[layer]
	for y := 0; y < l.dim; y++ {
		for x := 0; x < l.dim; x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			var v uint32
			switch ch {
			case ChannelR:
				v = r
			case ChannelG:
				v = g
			case ChannelB:
				v = bb
			case ChannelA:
				v = a
			case ChannelLuma:
				v = (299*r + 587*g + 114*bb) / 1000
			}
			data[y*l.dim+x] = float32(v) / 0xffff
		}
	}
	return nil
}
