package overlay

import "fmt"

// NoticeUnavailable is shown when the base photo is returned without a hairstyle.
const NoticeUnavailable = "Hairstyle preview unavailable"

// ImageLoadError is a failure to fetch or decode an image.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("loading image %s: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error {
	return e.Err
}
