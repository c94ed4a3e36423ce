package overlay

import (
	"context"
	"errors"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/kozaktomas/style-genie/internal/log"
)

// Composite is a rendered preview.
type Composite struct {
	Image          *image.RGBA
	OverlayApplied bool
	// Notice is set when the hairstyle could not be drawn.
	Notice    string
	Transform *Transform
}

// Render draws the hairstyle referenced by ref onto a fresh copy of base.
// The asset is loaded before anything is positioned; a failed load yields the
// plain base image with NoticeUnavailable instead of an error.
// in.ImageWidth/ImageHeight default to the base bounds and in.AssetAspectRatio
// is taken from the loaded asset.
func Render(ctx context.Context, base image.Image, loader AssetLoader, ref string, in Input) (*Composite, error) {
	if base == nil {
		return nil, errors.New("base image is required")
	}

	b := base.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, b.Min, draw.Src)

	if in.ImageWidth == 0 && in.ImageHeight == 0 {
		in.ImageWidth, in.ImageHeight = b.Dx(), b.Dy()
	}

	asset, err := loader.Load(ctx, ref)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.WithRequestID(ctx).WithError(err).Warn("Hairstyle image unavailable, returning base photo")
		return &Composite{Image: canvas, Notice: NoticeUnavailable}, nil
	}

	ab := asset.Bounds()
	if ab.Dx() == 0 || ab.Dy() == 0 {
		log.WithRequestID(ctx).WithField("asset", ref).Warn("Hairstyle image is empty, returning base photo")
		return &Composite{Image: canvas, Notice: NoticeUnavailable}, nil
	}
	in.AssetAspectRatio = float64(ab.Dx()) / float64(ab.Dy())

	t, err := ComputeTransform(in)
	if err != nil {
		return nil, err
	}

	m := t.Matrix(ab.Dx(), ab.Dy())
	// Shift so the asset's own bounds origin maps to its top-left.
	m[2] -= m[0]*float64(ab.Min.X) + m[1]*float64(ab.Min.Y)
	m[5] -= m[3]*float64(ab.Min.X) + m[4]*float64(ab.Min.Y)

	xdraw.BiLinear.Transform(canvas, m, asset, ab, xdraw.Over, nil)

	return &Composite{Image: canvas, OverlayApplied: true, Transform: &t}, nil
}
