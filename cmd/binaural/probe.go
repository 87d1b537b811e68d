package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-binaural/measure/hrir"
)

func runProbe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)

	var mf modelFlags
	mf.register(fs)

	rate := fs.Float64("rate", 48000, "sample rate in Hz")
	length := fs.Int("length", 1024, "impulse response length in samples")
	smoothing := fs.Int("smoothing", 0, "1/N octave smoothing of the magnitude response, 0 disables")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *length <= 0 {
		return errors.New("probe length must be > 0")
	}

	logger, err := mf.logger()
	if err != nil {
		return err
	}

	proc, err := mf.newProcessor(*rate, *length)
	if err != nil {
		return err
	}
	logger.Debug("processor ready", "latency", proc.Latency(), "capacity", proc.DelayCapacity())

	resp, err := hrir.Capture(proc, *length)
	if err != nil {
		return err
	}

	a := hrir.NewAnalyzer()
	a.SmoothingFraction = *smoothing

	return writeProbeReport(os.Stdout, a, resp, proc.Azimuth(), proc.Elevation())
}

// writeProbeReport prints the cue summary, early reflections and octave band
// levels of resp.
func writeProbeReport(w io.Writer, a *hrir.Analyzer, resp hrir.Response, azimuth, elevation float64) error {
	m, err := a.Analyze(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "azimuth %.1f deg, elevation %.1f deg, %g Hz, latency %d samples\n\n",
		azimuth, elevation, resp.SampleRate, resp.Latency)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ear\tArrival\tPeak\tPeak Index\tEnergy\tReflections\n")
	fmt.Fprintf(tw, "---\t-------\t----\t----------\t------\t-----------\n")
	for _, e := range []struct {
		name string
		ear  hrir.Ear
	}{{"left", m.Left}, {"right", m.Right}} {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%d\t%.4f\t%d\n",
			e.name, e.ear.Arrival, e.ear.Peak, e.ear.PeakIndex, e.ear.Energy, len(e.ear.Reflections))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nITD %.1f us (%.1f samples), ILD %.2f dB\n",
		m.ITD*1e6, m.ITDSamples(resp.SampleRate), m.ILD)

	bands := hrir.OctaveBands(resp.SampleRate)
	if len(bands) == 0 {
		return nil
	}

	left, err := a.BandLevels(resp.Left, resp.SampleRate, bands)
	if err != nil {
		return err
	}
	right, err := a.BandLevels(resp.Right, resp.SampleRate, bands)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band [Hz]\tLeft [dB]\tRight [dB]\tR-L [dB]\n")
	fmt.Fprintf(tw, "---------\t---------\t----------\t--------\n")
	for i, b := range bands {
		fmt.Fprintf(tw, "%.0f-%.0f\t%.2f\t%.2f\t%.2f\n",
			b.LoHz, b.HiHz, left[i], right[i], right[i]-left[i])
	}
	return tw.Flush()
}
