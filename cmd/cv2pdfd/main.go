// Command cv2pdfd serves the résumé rendering pipeline over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	cv2pdf "github.com/alnah/go-cv2pdf"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("cv2pdfd", pflag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	workers := fs.Int("workers", 0, "render workers (0 = auto from CPU count)")
	queue := fs.Int("queue", cv2pdf.DefaultQueueDepth, "max queued renders before rejecting")
	timeout := fs.Duration("timeout", 30*time.Second, "per-render timeout")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Println("cv2pdfd", Version)
		return nil
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	cv2pdf.SetLogger(log)

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	// Fail fast on a broken table rather than on the first request.
	if err := cv2pdf.ValidateTables(); err != nil {
		return fmt.Errorf("configuration tables: %w", err)
	}

	svc := cv2pdf.New(
		cv2pdf.WithTimeout(*timeout),
		cv2pdf.WithWorkers(*workers),
		cv2pdf.WithQueueDepth(*queue),
	)
	defer svc.Close()

	srv := newServer(svc, log)

	ctx, stop := notifyContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", *addr, "workers", cv2pdf.ResolvePoolSize(*workers), "version", Version)
		errCh <- srv.app.Listen(*addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		if err := srv.app.ShutdownWithTimeout(10 * time.Second); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
