package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/style-genie/internal/constants"
)

// AssetLoader fetches a hairstyle image by reference (URL or path).
type AssetLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// DecodeImage decodes png, jpeg, gif, bmp or webp.
func DecodeImage(r io.Reader, source string) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &ImageLoadError{Source: source, Err: err}
	}
	return img, nil
}

// HTTPLoader downloads images over http(s).
type HTTPLoader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPLoader wraps client. Unless the client sets its own redirect policy,
// redirects are followed only within the original host.
func NewHTTPLoader(client *http.Client) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if client.CheckRedirect == nil {
		c := *client
		c.CheckRedirect = sameHostRedirect
		client = &c
	}
	return &HTTPLoader{Client: client, MaxBytes: constants.MaxAssetDownloadSize}
}

func sameHostRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 {
		return errors.New("too many redirects")
	}
	if req.URL.Host != via[0].URL.Host {
		return fmt.Errorf("redirect to %s left %s", req.URL.Host, via[0].URL.Host)
	}
	return nil
}

func (l *HTTPLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, &ImageLoadError{Source: ref, Err: err}
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &ImageLoadError{Source: ref, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ImageLoadError{Source: ref, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return DecodeImage(io.LimitReader(resp.Body, l.MaxBytes), ref)
}

// FileLoader reads images below Root. References may not escape it.
type FileLoader struct {
	Root string
}

func (l *FileLoader) Load(_ context.Context, ref string) (image.Image, error) {
	path := filepath.Join(l.Root, filepath.Clean("/"+ref))
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImageLoadError{Source: ref, Err: err}
	}
	defer f.Close()
	return DecodeImage(f, ref)
}

// SourceLoader dispatches http(s) references to HTTP and everything else to Files.
type SourceLoader struct {
	HTTP  AssetLoader
	Files AssetLoader
}

func (l *SourceLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.HTTP.Load(ctx, ref)
	}
	if l.Files == nil {
		return nil, &ImageLoadError{Source: ref, Err: errors.New("local assets are not enabled")}
	}
	return l.Files.Load(ctx, ref)
}
