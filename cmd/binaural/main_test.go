package main

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-binaural/dsp/effects/spatial"
	"github.com/cwbudde/algo-binaural/internal/testutil"
	"github.com/cwbudde/algo-binaural/measure/hrir"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultFlags() modelFlags {
	return modelFlags{interp: "linear", monitor: "full", logLevel: "info"}
}

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveLogLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveLogLevel(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLogLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ResolveLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    command
		wantErr bool
	}{
		{line: "az 30", want: command{kind: cmdAzimuth, value: 30}},
		{line: "  AZIMUTH   -12.5 ", want: command{kind: cmdAzimuth, value: -12.5}},
		{line: "el -90", want: command{kind: cmdElevation, value: -90}},
		{line: "vol 6", want: command{kind: cmdVolume, value: 6}},
		{line: "status", want: command{kind: cmdStatus}},
		{line: "?", want: command{kind: cmdHelp}},
		{line: "q", want: command{kind: cmdQuit}},
		{line: "az", wantErr: true},
		{line: "az 1 2", wantErr: true},
		{line: "az left", wantErr: true},
		{line: "vol NaN", wantErr: true},
		{line: "el inf", wantErr: true},
		{line: "pan 10", wantErr: true},
		{line: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCommand(%q) = %+v, expected error", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand(%q) error = %v", tt.line, err)
			}
			if got != tt.want {
				t.Fatalf("parseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestModelFlagsNewProcessor(t *testing.T) {
	mf := defaultFlags()
	mf.azimuth = 30
	mf.interp = "hermite"
	mf.monitor = "pinna"
	mf.altPinna = true

	p, err := mf.newProcessor(48000, 128)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}
	if !p.Prepared() {
		t.Fatal("processor not prepared")
	}
	if p.Azimuth() != 30 {
		t.Fatalf("Azimuth() = %v, want 30", p.Azimuth())
	}
	if p.Model().PinnaTaps != spatial.AlternatePinnaTaps() {
		t.Fatal("alternate pinna taps not applied")
	}
}

func TestModelFlagsRejectInvalid(t *testing.T) {
	tests := []struct {
		name string
		edit func(*modelFlags)
	}{
		{name: "interp", edit: func(m *modelFlags) { m.interp = "sinc" }},
		{name: "monitor", edit: func(m *modelFlags) { m.monitor = "room" }},
		{name: "azimuth", edit: func(m *modelFlags) { m.azimuth = 90 }},
		{name: "elevation", edit: func(m *modelFlags) { m.elevation = -181 }},
		{name: "volume", edit: func(m *modelFlags) { m.volume = 21 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mf := defaultFlags()
			tt.edit(&mf)
			if _, err := mf.newProcessor(48000, 64); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSweepAt(t *testing.T) {
	s := sweep{from: -60, to: 60}

	if got := s.at(0, 5); got != -60 {
		t.Fatalf("at(0) = %v, want -60", got)
	}
	if got := s.at(2, 5); got != 0 {
		t.Fatalf("at(2) = %v, want 0", got)
	}
	if got := s.at(4, 5); got != 60 {
		t.Fatalf("at(4) = %v, want 60", got)
	}
	if got := s.at(0, 1); got != 60 {
		t.Fatalf("single block at(0) = %v, want 60", got)
	}
}

func TestRenderJobMatchesProcess(t *testing.T) {
	const block = 64

	mf := defaultFlags()
	mf.azimuth = -40

	src := testutil.DeterministicNoise(7, 0.5, 1000)

	job := &renderJob{block: block, clips: newClipMonitor(discardLogger(), 10)}
	var err error
	job.proc, err = mf.newProcessor(48000, block)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}

	var gotL, gotR []float64
	err = job.run(src, func(left, right []float64) error {
		gotL = append(gotL, left...)
		gotR = append(gotR, right...)
		return nil
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	ref, err := mf.newProcessor(48000, block)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}
	wantL := make([]float64, len(src))
	wantR := make([]float64, len(src))
	if err := ref.Process(wantL, wantR, src); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, gotL, wantL, 0)
	testutil.RequireSliceNearlyEqual(t, gotR, wantR, 0)
}

func TestRenderJobSweep(t *testing.T) {
	mf := defaultFlags()
	mf.azimuth = -60

	proc, err := mf.newProcessor(48000, 32)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}

	job := &renderJob{
		proc:  proc,
		block: 32,
		sweep: &sweep{from: -60, to: 60},
		clips: newClipMonitor(discardLogger(), 10),
	}

	src := testutil.DeterministicSine(440, 48000, 0.25, 32*40)
	blocks := 0
	prev := math.Inf(-1)
	err = job.run(src, func(left, right []float64) error {
		blocks++
		az := proc.Azimuth()
		if az < prev {
			t.Fatalf("azimuth went backwards at block %d: %v < %v", blocks, az, prev)
		}
		prev = az
		testutil.RequireFinite(t, left)
		testutil.RequireFinite(t, right)
		return nil
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if blocks != 40 {
		t.Fatalf("blocks = %d, want 40", blocks)
	}
	if az := proc.Azimuth(); az < 30 || az > 60 {
		t.Fatalf("final azimuth = %v, want within (30, 60]", az)
	}
}

func TestClipMonitorRateLimits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := newClipMonitor(logger, 10)

	steps := []struct {
		d    spatial.Diagnostics
		want bool
	}{
		{d: spatial.Diagnostics{Blocks: 1}, want: false},
		{d: spatial.Diagnostics{Blocks: 2, ClippedBlocks: 1, ClippedSamples: 3, LastPeak: 1.5}, want: true},
		{d: spatial.Diagnostics{Blocks: 3, ClippedBlocks: 2, ClippedSamples: 5, LastPeak: 1.2}, want: false},
		{d: spatial.Diagnostics{Blocks: 4, ClippedBlocks: 2, ClippedSamples: 5}, want: false},
		{d: spatial.Diagnostics{Blocks: 12, ClippedBlocks: 3, ClippedSamples: 6, LastPeak: 1.1}, want: true},
	}

	for i, s := range steps {
		if got := c.check(s.d); got != s.want {
			t.Fatalf("step %d: check() = %v, want %v", i, got, s.want)
		}
	}

	out := buf.String()
	if n := strings.Count(out, "output is too loud"); n != 2 {
		t.Fatalf("warnings = %d, want 2\n%s", n, out)
	}
	if !strings.Contains(out, "clipped_samples=3") {
		t.Fatalf("first warning lacks sample count:\n%s", out)
	}

	buf.Reset()
	c.summary(steps[len(steps)-1].d)
	if !strings.Contains(buf.String(), "clipped_blocks=3") {
		t.Fatalf("summary = %q", buf.String())
	}
}

func TestControllerGlides(t *testing.T) {
	mf := defaultFlags()
	proc, err := mf.newProcessor(48000, 64)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}
	c := newController(proc)

	if err := c.apply(command{kind: cmdAzimuth, value: 45}); err != nil {
		t.Fatalf("apply(az) error = %v", err)
	}
	if err := c.apply(command{kind: cmdElevation, value: -20}); err != nil {
		t.Fatalf("apply(el) error = %v", err)
	}

	gliding, err := c.step()
	if err != nil || !gliding {
		t.Fatalf("first step = %v, %v; want gliding", gliding, err)
	}
	if got := proc.Azimuth(); math.Abs(got-9) > 1e-12 {
		t.Fatalf("azimuth after one step = %v, want 9", got)
	}

	steps := 1
	for ; steps < 200; steps++ {
		gliding, err = c.step()
		if err != nil {
			t.Fatalf("step() error = %v", err)
		}
		if !gliding {
			break
		}
	}
	if gliding {
		t.Fatal("controller never settled")
	}
	if math.Abs(proc.Azimuth()-45) > c.tolerance || math.Abs(proc.Elevation()+20) > c.tolerance {
		t.Fatalf("settled at az=%v el=%v", proc.Azimuth(), proc.Elevation())
	}
}

func TestControllerRejectsOutOfRange(t *testing.T) {
	mf := defaultFlags()
	proc, err := mf.newProcessor(48000, 64)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}
	c := newController(proc)

	for _, cmd := range []command{
		{kind: cmdAzimuth, value: 90},
		{kind: cmdElevation, value: 200},
		{kind: cmdVolume, value: -30},
		{kind: cmdQuit},
	} {
		if err := c.apply(cmd); err == nil {
			t.Fatalf("apply(%+v) expected error", cmd)
		}
	}

	az, el := c.targets()
	if az != 0 || el != 0 {
		t.Fatalf("targets changed to %v, %v", az, el)
	}
}

func TestSessionHandle(t *testing.T) {
	mf := defaultFlags()
	proc, err := mf.newProcessor(48000, 64)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}

	var out, logs bytes.Buffer
	s := &session{
		ctrl:   newController(proc),
		clips:  newClipMonitor(discardLogger(), 10),
		logger: slog.New(slog.NewTextHandler(&logs, nil)),
		out:    &out,
	}

	if s.handle("vol -6") {
		t.Fatal("vol stopped playback")
	}
	if proc.Volume() != -6 {
		t.Fatalf("Volume() = %v, want -6", proc.Volume())
	}

	if s.handle("az 20") {
		t.Fatal("az stopped playback")
	}
	if az, _ := s.ctrl.targets(); az != 20 {
		t.Fatalf("azimuth target = %v, want 20", az)
	}

	s.handle("status")
	if !strings.Contains(out.String(), "target 20.0") {
		t.Fatalf("status output = %q", out.String())
	}

	if s.handle("") || s.handle("jump 3") {
		t.Fatal("bad input stopped playback")
	}
	if !strings.Contains(logs.String(), "ignoring input") {
		t.Fatalf("bad input not logged: %q", logs.String())
	}
	if strings.Contains(out.String(), "> ") {
		t.Fatalf("prompt printed in non-interactive mode: %q", out.String())
	}

	if !s.handle("quit") {
		t.Fatal("quit did not stop playback")
	}
}

func TestWriteProbeReport(t *testing.T) {
	mf := defaultFlags()
	mf.azimuth = 45

	proc, err := mf.newProcessor(48000, 512)
	if err != nil {
		t.Fatalf("newProcessor() error = %v", err)
	}
	resp, err := hrir.Capture(proc, 512)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	var buf bytes.Buffer
	if err := writeProbeReport(&buf, hrir.NewAnalyzer(), resp, proc.Azimuth(), proc.Elevation()); err != nil {
		t.Fatalf("writeProbeReport() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"azimuth 45.0 deg", "latency 16 samples", "left", "right", "ITD", "ILD", "Band [Hz]", "707-1414"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}
