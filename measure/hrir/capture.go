package hrir

import (
	"errors"
	"fmt"
)

// Errors returned by capture and analysis.
var (
	ErrEmptyResponse     = errors.New("hrir: response is empty")
	ErrInvalidSampleRate = errors.New("hrir: sample rate must be positive")
	ErrLengthMismatch    = errors.New("hrir: ear responses differ in length")
	ErrSilentResponse    = errors.New("hrir: response is silent")
	ErrNotPrepared       = errors.New("hrir: renderer is not prepared")
)

// Renderer is a prepared mono-to-binaural processor.
type Renderer interface {
	SampleRate() float64
	Latency() int
	Reset()
	Process(left, right, in []float64) error
}

// Response is one captured binaural impulse response.
type Response struct {
	SampleRate float64
	// Latency is the renderer's fixed delay in samples at capture time.
	Latency int
	Left    []float64
	Right   []float64
}

// Capture clears r and records length samples of its response to a unit
// impulse.
func Capture(r Renderer, length int) (Response, error) {
	if length <= 0 {
		return Response{}, fmt.Errorf("hrir capture length must be > 0: %d", length)
	}

	rate := r.SampleRate()
	if rate <= 0 {
		return Response{}, ErrNotPrepared
	}

	in := make([]float64, length)
	in[0] = 1

	resp := Response{
		SampleRate: rate,
		Latency:    r.Latency(),
		Left:       make([]float64, length),
		Right:      make([]float64, length),
	}

	r.Reset()
	if err := r.Process(resp.Left, resp.Right, in); err != nil {
		return Response{}, fmt.Errorf("hrir capture: %w", err)
	}
	r.Reset()

	return resp, nil
}

func (r Response) validate() error {
	if len(r.Left) == 0 || len(r.Right) == 0 {
		return ErrEmptyResponse
	}
	if len(r.Left) != len(r.Right) {
		return ErrLengthMismatch
	}
	if r.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}
