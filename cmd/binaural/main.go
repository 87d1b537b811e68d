// Command binaural renders mono audio as binaural stereo with a structural
// head model.
//
// Usage:
//
//	binaural render -in voice.wav -out voice-binaural.wav [flags]
//	binaural probe  [flags]
//	binaural play   -in voice.mp3 [flags]
//
// render processes a file offline, probe prints the impulse-response cues of
// one source position and play streams a file to the sound card while
// reading position changes from stdin.
//
// Examples:
//
//	binaural render -in voice.wav -out out.wav -azimuth 45 -elevation 10
//	binaural render -in voice.ogg -out sweep.wav -azimuth -80 -sweep-to 80
//	binaural probe -rate 96000 -azimuth 30
//	binaural play -in voice.mp3 -loop
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/effects/spatial"
	"github.com/cwbudde/algo-binaural/dsp/interp"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:])
	case "probe":
		err = runProbe(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: binaural <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  render  render a mono file to a binaural WAV file\n")
	fmt.Fprintf(os.Stderr, "  probe   print interaural cues for one source position\n")
	fmt.Fprintf(os.Stderr, "  play    play a file binaurally, reading az/el/vol from stdin\n")
	fmt.Fprintf(os.Stderr, "\nRun 'binaural <command> -h' for command flags.\n")
}

// modelFlags are the processor settings shared by every command.
type modelFlags struct {
	azimuth   float64
	elevation float64
	volume    float64
	interp    string
	monitor   string
	altPinna  bool
	logLevel  string
}

func (m *modelFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&m.azimuth, "azimuth", 0, "source azimuth in degrees [-89, 89], positive is right")
	fs.Float64Var(&m.elevation, "elevation", 0, "source elevation in degrees [-180, 180]")
	fs.Float64Var(&m.volume, "volume", 0, "output level in dB [-20, 20]")
	fs.StringVar(&m.interp, "interp", "linear", "fractional delay kernel: linear or hermite")
	fs.StringVar(&m.monitor, "monitor", "full", "output stage: full, pinna or shadow")
	fs.BoolVar(&m.altPinna, "alt-pinna", false, "use the alternate pinna elevation scaling")
	fs.StringVar(&m.logLevel, "log-level", "info", "log level: debug, info, warn or error")
}

func (m *modelFlags) logger() (*slog.Logger, error) {
	return newLogger(m.logLevel)
}

// options converts the flags into processor options.
func (m *modelFlags) options() ([]spatial.BinauralOption, error) {
	mode, err := interp.ParseMode(m.interp)
	if err != nil {
		return nil, err
	}

	monitor, err := spatial.ParseMonitor(m.monitor)
	if err != nil {
		return nil, err
	}

	model := spatial.DefaultModel()
	if m.altPinna {
		model.PinnaTaps = spatial.AlternatePinnaTaps()
	}

	return []spatial.BinauralOption{
		spatial.WithModel(model),
		spatial.WithInterpolation(mode),
		spatial.WithMonitor(monitor),
		spatial.WithAzimuth(m.azimuth),
		spatial.WithElevation(m.elevation),
		spatial.WithVolume(m.volume),
	}, nil
}

// newProcessor builds and prepares a processor from the flags.
func (m *modelFlags) newProcessor(sampleRate float64, blockSize int) (*spatial.Binaural, error) {
	opts, err := m.options()
	if err != nil {
		return nil, err
	}

	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be > 0: %d", blockSize)
	}

	p, err := spatial.NewBinaural(opts...)
	if err != nil {
		return nil, err
	}

	if err := p.PrepareStream(core.WithSampleRate(sampleRate), core.WithMaxBlockSize(blockSize)); err != nil {
		return nil, err
	}

	return p, nil
}
