// Command kioskd runs the attendance kiosk's video processing core:
// the camera source, the HTTP MJPEG streamer, and the QR detection
// fan-out, wired together by the pipeline package.
//
// Grounded on sakateka-yanet2's cmd/yncp-director/main.go: a cobra
// root command with a --config flag, a signal-based Interrupted
// sentinel, and errgroup.WithContext tying the pipeline run to signal
// handling.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"attendkiosk"
	"attendkiosk/camera"
	"attendkiosk/config"
	"attendkiosk/pipeline"
)

var cmd Cmd

// Cmd holds the flags kioskd accepts.
type Cmd struct {
	ConfigPath string
}

var rootCmd = &cobra.Command{
	Use:   "kioskd",
	Short: "Attendance kiosk video processing core",
	Run: func(rawCmd *cobra.Command, args []string) {
		if err := run(cmd); err != nil {
			if errors.Is(err, Interrupted{}) {
				return
			}
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	// Unlike yncp-director, --config is optional here: the kiosk must
	// run with zero configuration for local development, falling back
	// to config.DefaultConfig.
	rootCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to the configuration file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd Cmd) error {
	cfg := config.DefaultConfig()
	if cmd.ConfigPath != "" {
		loaded, err := config.LoadConfig(cmd.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// A real build wires in a v4l2 (or platform-equivalent) opener and
	// a real QR decoder here; the core itself treats both as external
	// collaborators (spec.md §2), so kioskd's default wiring uses the
	// deterministic NullDevice and a decoder stub that finds nothing.
	open := camera.OpenNullDevice
	dec := noopDecoder{}

	p, err := pipeline.New(cfg, open, dec)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	if cfg.Resolution != (kiosk.Resolution{}) {
		p.ResolutionIn <- cfg.Resolution
	}

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return p.Run(ctx)
	})
	wg.Go(func() error {
		return WaitInterrupted(ctx)
	})
	wg.Go(func() error {
		logQRCodes(ctx, p.QROut)
		return nil
	})
	wg.Go(func() error {
		return reloadOnSIGHUP(ctx, cmd.ConfigPath, p.ResolutionIn)
	})

	return wg.Wait()
}

// logQRCodes drains the pipeline's decoded-QR channel to the standard
// logger (stderr),
// standing in for the real attendance GUI (spec.md §1/§2: the core's
// only obligation here is to deliver strings, not to render them).
func logQRCodes(ctx context.Context, qrOut <-chan string) {
	for {
		select {
		case code, ok := <-qrOut:
			if !ok {
				return
			}
			log.Printf("kioskd: scanned %s", code)
		case <-ctx.Done():
			return
		}
	}
}

// reloadOnSIGHUP re-reads the config file on SIGHUP and, if it names a
// resolution, forwards it on resolutionIn so the Camera Source picks
// it up on its next iteration. With no --config flag there is no file
// to reload, so it just waits out ctx.
func reloadOnSIGHUP(ctx context.Context, path string, resolutionIn chan<- kiosk.Resolution) error {
	if path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)

	for {
		select {
		case <-ch:
			cfg, err := config.LoadConfig(path)
			if err != nil {
				log.Printf("kioskd: reload failed: %s", err)
				continue
			}
			if cfg.Resolution == (kiosk.Resolution{}) {
				continue
			}
			select {
			case resolutionIn <- cfg.Resolution:
				log.Printf("kioskd: reloaded, requesting resolution %s", cfg.Resolution)
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type noopDecoder struct{}

func (noopDecoder) Decode(jpeg []byte, downscale int) ([]string, error) {
	return nil, nil
}

// Interrupted wraps the os.Signal that stopped the process.
type Interrupted struct {
	os.Signal
}

func (m Interrupted) Error() string {
	return m.String()
}

// WaitInterrupted blocks until SIGINT or SIGTERM arrives, or ctx is
// cancelled.
func WaitInterrupted(ctx context.Context) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case v := <-ch:
		return Interrupted{Signal: v}
	case <-ctx.Done():
		return ctx.Err()
	}
}
