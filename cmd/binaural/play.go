package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-binaural/internal/audiofile"
	"github.com/cwbudde/algo-binaural/internal/playback"
)

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)

	var mf modelFlags
	mf.register(fs)

	in := fs.String("in", "", "mono source file (wav, aiff, mp3, ogg)")
	loop := fs.Bool("loop", false, "repeat the source until q is entered")
	block := fs.Int("block", 256, "processing block size in samples")
	buffer := fs.Duration("buffer", 80*time.Millisecond, "audio device buffer")
	glide := fs.Duration("glide", 10*time.Millisecond, "interval between position smoothing steps")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("play needs -in")
	}
	if *glide <= 0 {
		return errors.New("glide interval must be > 0")
	}

	logger, err := mf.logger()
	if err != nil {
		return err
	}

	src, err := audiofile.ReadFile(*in)
	if err != nil {
		return err
	}

	proc, err := mf.newProcessor(float64(src.SampleRate), *block)
	if err != nil {
		return err
	}

	stream, err := playback.NewStream(proc, src.Samples, *block, *loop)
	if err != nil {
		return err
	}

	player, err := playback.NewPlayer(src.SampleRate, *buffer)
	if err != nil {
		return err
	}
	defer player.Close()

	logger.Info("playing", "file", *in, "rate", src.SampleRate,
		"seconds", src.Duration(), "loop", *loop, "latency_samples", proc.Latency())
	player.Play(stream)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	s := &session{
		ctrl:        newController(proc),
		clips:       newClipMonitor(logger, 200),
		logger:      logger,
		out:         os.Stderr,
		interactive: interactive,
	}
	if interactive {
		fmt.Fprintln(s.out, commandHelp)
		s.prompt()
	}

	lines := make(chan string)
	go readLines(os.Stdin, lines)

	ticker := time.NewTicker(*glide)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// stdin closed; keep playing until the source ends
				lines = nil
				continue
			}
			if s.handle(line) {
				stream.Stop()
				return stream.Err()
			}
		case <-ticker.C:
			if _, err := s.ctrl.step(); err != nil {
				return err
			}
			s.clips.check(proc.Diagnostics())
			if !player.IsPlaying() {
				s.clips.summary(proc.Diagnostics())
				return stream.Err()
			}
		}
	}
}

// session is the interactive side of play.
type session struct {
	ctrl        *controller
	clips       *clipMonitor
	logger      *slog.Logger
	out         io.Writer
	interactive bool
}

// handle runs one input line and reports whether playback should stop.
func (s *session) handle(line string) bool {
	if s.run(line) {
		return true
	}
	s.prompt()
	return false
}

func (s *session) run(line string) bool {
	cmd, err := parseCommand(line)
	switch {
	case errors.Is(err, errEmptyCommand):
		return false
	case err != nil:
		s.logger.Warn("ignoring input", "error", err)
		return false
	}

	switch cmd.kind {
	case cmdQuit:
		return true
	case cmdHelp:
		fmt.Fprintln(s.out, commandHelp)
	case cmdStatus:
		fmt.Fprintln(s.out, s.ctrl.status())
	default:
		if err := s.ctrl.apply(cmd); err != nil {
			s.logger.Warn("ignoring input", "error", err)
			return false
		}
		s.logger.Debug("new target", "line", line)
	}
	return false
}

func (s *session) prompt() {
	if s.interactive {
		fmt.Fprint(s.out, "> ")
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines <- sc.Text()
	}
}
