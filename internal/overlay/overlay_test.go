package overlay

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/style-genie/internal/landmark"
)

func facePoints(eyeTilt float64) landmark.Set {
	return landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop: {X: 0.5, Y: 0.2},
		landmark.LeftCheek:   {X: 0.3, Y: 0.5},
		landmark.RightCheek:  {X: 0.7, Y: 0.5},
		landmark.LeftEye:     {X: 0.4, Y: 0.4},
		landmark.RightEye:    {X: 0.6, Y: 0.4 + eyeTilt},
	})
}

func baseInput() Input {
	return Input{
		Landmarks:        facePoints(0),
		ImageWidth:       1000,
		ImageHeight:      1000,
		AssetAspectRatio: 2,
		Adjustments:      DefaultAdjustments(),
	}
}

func TestComputeTransform_Landmarks(t *testing.T) {
	tr, err := ComputeTransform(baseInput())
	require.NoError(t, err)

	assert.Equal(t, AnchorLandmarks, tr.AnchorSource)
	assert.InDelta(t, 500, tr.AnchorX, 1e-9)
	assert.InDelta(t, 200, tr.AnchorY, 1e-9)
	assert.InDelta(t, 400, tr.FaceWidth, 1e-9)
	assert.InDelta(t, 2.2, tr.Scale, 1e-9)
	assert.InDelta(t, 880, tr.Width, 1e-9)
	assert.InDelta(t, 440, tr.Height, 1e-9)
	assert.InDelta(t, -440, tr.TranslateX, 1e-9)
	assert.InDelta(t, -286, tr.TranslateY, 1e-9)
	assert.InDelta(t, 0, tr.RotationRadians, 1e-12)
}

func TestComputeTransform_Adjustments(t *testing.T) {
	in := baseInput()
	in.Adjustments = Adjustments{ScaleMultiplier: 0.5, OffsetX: 10, OffsetY: -20, RotationDegrees: 30}

	tr, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.InDelta(t, 440, tr.Width, 1e-9)
	assert.InDelta(t, 220, tr.Height, 1e-9)
	assert.InDelta(t, -220+10, tr.TranslateX, 1e-9)
	assert.InDelta(t, -143-20, tr.TranslateY, 1e-9)
	assert.InDelta(t, math.Pi/6, tr.RotationRadians, 1e-12)
}

func TestComputeTransform_DefaultsMatchZeroValue(t *testing.T) {
	in := baseInput()
	withDefaults, err := ComputeTransform(in)
	require.NoError(t, err)

	in.Adjustments = Adjustments{}
	withZero, err := ComputeTransform(in)
	require.NoError(t, err)

	assert.Equal(t, withDefaults, withZero)
}

func TestComputeTransform_Deterministic(t *testing.T) {
	in := baseInput()
	in.Landmarks = facePoints(0.05)
	in.Adjustments.RotationDegrees = -12

	a, err := ComputeTransform(in)
	require.NoError(t, err)
	b, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeTransform_RotationSign(t *testing.T) {
	in := baseInput()
	in.Landmarks = facePoints(0.05)
	tr, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.Greater(t, tr.RotationRadians, 0.0)
	assert.InDelta(t, math.Atan2(50, 200), tr.RotationRadians, 1e-12)

	in.Landmarks = facePoints(-0.05)
	tr, err = ComputeTransform(in)
	require.NoError(t, err)
	assert.Less(t, tr.RotationRadians, 0.0)
}

func TestComputeTransform_MissingEyesMeansNoTilt(t *testing.T) {
	in := baseInput()
	in.Landmarks = landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop: {X: 0.5, Y: 0.2},
		landmark.LeftCheek:   {X: 0.3, Y: 0.5},
		landmark.RightCheek:  {X: 0.7, Y: 0.5},
	})
	in.Adjustments.RotationDegrees = 10

	tr, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Pi/180, tr.RotationRadians, 1e-12)
}

func TestComputeTransform_ForeheadBoxFallback(t *testing.T) {
	in := baseInput()
	in.Landmarks = landmark.Set{}
	in.ForeheadBox = &landmark.Box{
		Top:   landmark.Point{X: 0.5, Y: 0.25},
		Left:  landmark.Point{X: 0.35, Y: 0.25},
		Right: landmark.Point{X: 0.65, Y: 0.25},
	}

	tr, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.Equal(t, AnchorForeheadBox, tr.AnchorSource)
	assert.InDelta(t, 500, tr.AnchorX, 1e-9)
	assert.InDelta(t, 250, tr.AnchorY, 1e-9)
	assert.InDelta(t, 300, tr.FaceWidth, 1e-9)
}

func TestComputeTransform_BoxDerivedFromMesh(t *testing.T) {
	in := baseInput()
	in.Landmarks = landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop:   {X: 0.5, Y: 0.2},
		landmark.ForeheadLeft:  {X: 0.6, Y: 0.2},
		landmark.ForeheadRight: {X: 0.4, Y: 0.2},
	})

	tr, err := ComputeTransform(in)
	require.NoError(t, err)
	assert.Equal(t, AnchorForeheadBox, tr.AnchorSource)
	assert.InDelta(t, 200, tr.FaceWidth, 1e-9)
}

func TestComputeTransform_Errors(t *testing.T) {
	in := baseInput()
	in.Landmarks = landmark.SparseSet(map[landmark.Index]landmark.Point{
		landmark.ForeheadTop: {X: 0.5, Y: 0.2},
	})
	_, err := ComputeTransform(in)
	var missing *landmark.MissingLandmarkError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, landmark.LeftCheek, missing.Index)

	in = baseInput()
	in.AssetAspectRatio = 0
	_, err = ComputeTransform(in)
	assert.Error(t, err)

	in = baseInput()
	in.ImageWidth = 0
	_, err = ComputeTransform(in)
	assert.Error(t, err)
}

func TestTransformMatrix(t *testing.T) {
	tr, err := ComputeTransform(baseInput())
	require.NoError(t, err)

	m := tr.Matrix(200, 100)
	x, y := apply(m, 0, 0)
	assert.InDelta(t, 500-440, x, 1e-9)
	assert.InDelta(t, 200-286, y, 1e-9)

	x, y = apply(m, 200, 100)
	assert.InDelta(t, 500-440+880, x, 1e-9)
	assert.InDelta(t, 200-286+440, y, 1e-9)

	// Rotating a quarter turn maps the asset's x axis onto the base y axis.
	tr.RotationRadians = math.Pi / 2
	m = tr.Matrix(200, 100)
	x0, y0 := apply(m, 0, 0)
	x1, y1 := apply(m, 1, 0)
	assert.InDelta(t, 0, x1-x0, 1e-9)
	assert.InDelta(t, 880.0/200, y1-y0, 1e-9)
}

func TestAdjustments_Validate(t *testing.T) {
	assert.NoError(t, DefaultAdjustments().Validate())
	assert.NoError(t, Adjustments{ScaleMultiplier: 2, OffsetX: 250, OffsetY: -250, RotationDegrees: 45}.Validate())

	invalid := []Adjustments{
		{ScaleMultiplier: 2.5},
		{ScaleMultiplier: 0.4},
		{ScaleMultiplier: 1, OffsetX: 251},
		{ScaleMultiplier: 1, OffsetY: -300},
		{ScaleMultiplier: 1, RotationDegrees: -46},
	}
	for _, a := range invalid {
		assert.Error(t, a.Validate(), "%+v", a)
	}
}

func TestAdjustments_Reset(t *testing.T) {
	a := Adjustments{ScaleMultiplier: 1.7, OffsetX: 12, OffsetY: -3, RotationDegrees: 20}
	a.Reset()
	assert.Equal(t, DefaultAdjustments(), a)
}

func TestSliders(t *testing.T) {
	sliders := Sliders()
	require.Len(t, sliders, 4)
	assert.Equal(t, "scale", sliders[0].Name)
	assert.Equal(t, 0.5, sliders[0].Min)
	assert.Equal(t, 2.0, sliders[0].Max)
	assert.Equal(t, 0.05, sliders[0].Step)
	assert.Equal(t, 1.0, sliders[0].Default)
	assert.Equal(t, "rotation", sliders[3].Name)
	assert.Equal(t, -45.0, sliders[3].Min)
}

type stubLoader struct {
	img   image.Image
	err   error
	calls int
}

func (s *stubLoader) Load(_ context.Context, _ string) (image.Image, error) {
	s.calls++
	return s.img, s.err
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func renderInput() Input {
	return Input{
		Landmarks: landmark.SparseSet(map[landmark.Index]landmark.Point{
			landmark.ForeheadTop: {X: 0.5, Y: 0.5},
			landmark.LeftCheek:   {X: 0.4, Y: 0.6},
			landmark.RightCheek:  {X: 0.6, Y: 0.6},
		}),
		Adjustments: DefaultAdjustments(),
	}
}

func TestRender_DrawsHairstyle(t *testing.T) {
	base := solid(200, 200, red)
	loader := &stubLoader{img: solid(20, 10, blue)}

	out, err := Render(context.Background(), base, loader, "hair.png", renderInput())
	require.NoError(t, err)
	require.True(t, out.OverlayApplied)
	assert.Empty(t, out.Notice)
	require.NotNil(t, out.Transform)
	assert.InDelta(t, 88, out.Transform.Width, 1e-9)
	assert.InDelta(t, 44, out.Transform.Height, 1e-9)

	hair := out.Image.RGBAAt(100, 100)
	assert.GreaterOrEqual(t, hair.B, uint8(250))
	assert.LessOrEqual(t, hair.R, uint8(5))
	assert.Equal(t, red, out.Image.RGBAAt(5, 5))
	assert.Equal(t, red, out.Image.RGBAAt(100, 150))

	// Base is never modified
	assert.Equal(t, red, base.RGBAAt(100, 100))
}

func TestRender_RerenderDoesNotAccumulate(t *testing.T) {
	base := solid(200, 200, red)
	loader := &stubLoader{img: solid(20, 10, blue)}
	in := renderInput()

	first, err := Render(context.Background(), base, loader, "hair.png", in)
	require.NoError(t, err)
	in.Adjustments.OffsetX = 40
	_, err = Render(context.Background(), base, loader, "hair.png", in)
	require.NoError(t, err)
	in.Adjustments.Reset()
	again, err := Render(context.Background(), base, loader, "hair.png", in)
	require.NoError(t, err)

	assert.Equal(t, first.Image.Pix, again.Image.Pix)
}

func TestRender_AssetFailureReturnsBase(t *testing.T) {
	base := solid(50, 40, red)
	loader := &stubLoader{err: &ImageLoadError{Source: "x", Err: errors.New("404")}}

	out, err := Render(context.Background(), base, loader, "missing.png", renderInput())
	require.NoError(t, err)
	assert.False(t, out.OverlayApplied)
	assert.Equal(t, NoticeUnavailable, out.Notice)
	assert.Nil(t, out.Transform)
	assert.Equal(t, base.Pix, out.Image.Pix)
}

func TestRender_MissingLandmarks(t *testing.T) {
	loader := &stubLoader{img: solid(20, 10, blue)}
	_, err := Render(context.Background(), solid(10, 10, red), loader, "hair.png", Input{})
	var missing *landmark.MissingLandmarkError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, loader.calls)
}

func TestRender_NilBase(t *testing.T) {
	_, err := Render(context.Background(), nil, &stubLoader{}, "x", Input{})
	assert.Error(t, err)
}

func TestDecodeImage_Invalid(t *testing.T) {
	_, err := DecodeImage(strings.NewReader("not an image"), "upload")
	var loadErr *ImageLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "upload", loadErr.Source)
}

func TestHTTPLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hair.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, solid(8, 4, blue))
	}))
	defer srv.Close()

	loader := NewHTTPLoader(srv.Client())
	img, err := loader.Load(context.Background(), srv.URL+"/hair.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = loader.Load(context.Background(), srv.URL+"/nope.png")
	var loadErr *ImageLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPLoader_RedirectsStayOnHost(t *testing.T) {
	var elsewhereHits int
	elsewhere := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		elsewhereHits++
		png.Encode(w, solid(8, 4, blue))
	}))
	defer elsewhere.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/moved.png":
			http.Redirect(w, r, "/hair.png", http.StatusFound)
		case "/hair.png":
			png.Encode(w, solid(8, 4, blue))
		default:
			http.Redirect(w, r, elsewhere.URL+"/hair.png", http.StatusFound)
		}
	}))
	defer origin.Close()

	loader := NewHTTPLoader(origin.Client())
	_, err := loader.Load(context.Background(), origin.URL+"/moved.png")
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), origin.URL+"/away.png")
	var loadErr *ImageLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Zero(t, elsewhereHits)
}

func TestFileLoader_StaysInRoot(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "bob.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(6, 3, blue)))
	require.NoError(t, f.Close())

	loader := &FileLoader{Root: dir}
	img, err := loader.Load(context.Background(), "bob.png")
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())

	img, err = loader.Load(context.Background(), "../../bob.png")
	require.NoError(t, err, "escaping references resolve inside the root")
	assert.Equal(t, 6, img.Bounds().Dx())

	_, err = loader.Load(context.Background(), "missing.png")
	assert.Error(t, err)
}

func TestSourceLoader(t *testing.T) {
	httpLoader := &stubLoader{img: solid(1, 1, blue)}
	fileLoader := &stubLoader{img: solid(1, 1, red)}
	l := &SourceLoader{HTTP: httpLoader, Files: fileLoader}

	_, err := l.Load(context.Background(), "https://cdn/x.png")
	require.NoError(t, err)
	_, err = l.Load(context.Background(), "local/x.png")
	require.NoError(t, err)
	assert.Equal(t, 1, httpLoader.calls)
	assert.Equal(t, 1, fileLoader.calls)

	_, err = (&SourceLoader{HTTP: httpLoader}).Load(context.Background(), "local/x.png")
	assert.Error(t, err)
}

