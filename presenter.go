package compositor

import (
	"image"

	"github.com/gogpu/compositor/region"
)

// Presenter shows composed frames. Present is called on the frame
// goroutine after every frame that changed the output, with the frame
// and the region that differs from the previous one.
//
// Presenters that also implement io.Closer are closed with the
// compositor.
type Presenter interface {
	Present(frame image.Image, damaged region.Region) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(frame image.Image, damaged region.Region) error

// Present calls f.
func (f PresenterFunc) Present(frame image.Image, damaged region.Region) error {
	return f(frame, damaged)
}
