package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-binaural/dsp/effects/spatial"
	"github.com/cwbudde/algo-binaural/internal/audiofile"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)

	var mf modelFlags
	mf.register(fs)

	in := fs.String("in", "", "mono source file (wav, aiff, mp3, ogg)")
	out := fs.String("out", "", "stereo WAV output file")
	block := fs.Int("block", 512, "processing block size in samples")
	sweepTo := fs.Float64("sweep-to", math.NaN(), "sweep the azimuth from -azimuth to this value over the file")
	bits := fs.Int("bits", 16, "output bit depth: 16 or 24")
	tail := fs.Float64("tail", 0.05, "seconds of silence appended so reflections can decay")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("render needs -in and -out")
	}

	logger, err := mf.logger()
	if err != nil {
		return err
	}

	src, err := audiofile.ReadFile(*in)
	if err != nil {
		return err
	}
	logger.Info("decoded source", "file", *in, "rate", src.SampleRate,
		"channels", src.Channels, "seconds", src.Duration())
	if src.Channels > 1 {
		logger.Warn("source is not mono, rendering the first channel", "channels", src.Channels)
	}

	proc, err := mf.newProcessor(float64(src.SampleRate), *block)
	if err != nil {
		return err
	}

	job := &renderJob{
		proc:  proc,
		block: *block,
		clips: newClipMonitor(logger, 100),
	}
	if !math.IsNaN(*sweepTo) {
		if _, err := spatial.NewBinaural(spatial.WithAzimuth(*sweepTo)); err != nil {
			return fmt.Errorf("sweep target: %w", err)
		}
		job.sweep = &sweep{from: mf.azimuth, to: *sweepTo}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := audiofile.NewStereoWriter(f, src.SampleRate, *bits)
	if err != nil {
		return err
	}

	padded := make([]float64, len(src.Samples)+int(*tail*float64(src.SampleRate)))
	copy(padded, src.Samples)

	if err := job.run(padded, w.Write); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if n := w.Clipped(); n > 0 {
		logger.Warn("samples clipped in the output file", "samples", n)
	}
	logger.Info("rendered", "file", *out, "latency_samples", proc.Latency(),
		"blocks", proc.Diagnostics().Blocks)

	return f.Close()
}

// sweep moves the azimuth target linearly across the blocks of a render.
type sweep struct {
	from, to float64
}

// at returns the target for block i of n.
func (s *sweep) at(i, n int) float64 {
	if n <= 1 {
		return s.to
	}
	return s.from + (s.to-s.from)*float64(i)/float64(n-1)
}

// renderJob feeds a mono signal through a processor block by block.
type renderJob struct {
	proc  *spatial.Binaural
	block int
	sweep *sweep
	clips *clipMonitor
}

func (j *renderJob) run(src []float64, emit func(left, right []float64) error) error {
	left := make([]float64, j.block)
	right := make([]float64, j.block)
	blocks := (len(src) + j.block - 1) / j.block

	for i := 0; i < blocks; i++ {
		off := i * j.block
		n := min(j.block, len(src)-off)

		if j.sweep != nil {
			if err := j.proc.SetAzimuth(j.sweep.at(i, blocks)); err != nil {
				return err
			}
		}

		if err := j.proc.Process(left[:n], right[:n], src[off:off+n]); err != nil {
			return err
		}
		j.clips.check(j.proc.Diagnostics())

		if err := emit(left[:n], right[:n]); err != nil {
			return err
		}
	}

	j.clips.summary(j.proc.Diagnostics())
	return nil
}
