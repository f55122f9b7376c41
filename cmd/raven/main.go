// Command raven captures a message or error from the command line and
// delivers it to the configured collector. Configuration comes from
// RAVEN_* environment variables; see internal/config.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/wolfer717/raven-go/internal/config"
	"github.com/wolfer717/raven-go/internal/logging"
	"github.com/wolfer717/raven-go/internal/transport"
	"github.com/wolfer717/raven-go/pkg/raven"
)

func main() {
	asError := flag.Bool("error", false, "capture the message as an exception instead of plain text")
	dryRun := flag.Bool("dry-run", false, "print the event as JSON instead of sending it")
	crumbs := flag.Bool("breadcrumbs", false, "read breadcrumb lines from stdin before capturing")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: raven [-error] [-dry-run] [-breadcrumbs] <message>")
		os.Exit(2)
	}
	message := strings.Join(flag.Args(), " ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	opts := []raven.Option{}
	if *dryRun {
		opts = append(opts, raven.WithCustomTransport(transport.NewDump(os.Stdout, true)))
		if cfg.DSN == "" {
			// The dispatcher still requires a DSN; a placeholder keeps
			// dry runs usable without collector credentials.
			opts = append(opts, raven.WithDSN("https://dry-run@localhost/0"))
		}
	}

	r, err := raven.NewFromEnv(opts...)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	defer r.Close()

	if *crumbs {
		readBreadcrumbs(r)
	}

	event, err := capture(r, message, *asError)
	if err != nil {
		log.Fatalf("capture failed: %v", err)
	}
	slog.Debug("event captured", "event_id", event.EventID)

	resp, err := r.SendEvent(context.Background(), event)
	if err != nil {
		log.Fatalf("delivery failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "delivered event %s (%s)\n", resp.EventID, resp.Status)
}

func capture(r *raven.Raven, message string, asError bool) (*raven.Event, error) {
	if asError {
		return r.CaptureException(errors.New(message))
	}
	return r.CaptureMessage(message)
}

// readBreadcrumbs records one breadcrumb per stdin line.
func readBreadcrumbs(r *raven.Raven) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := r.CaptureBreadcrumb(&raven.Breadcrumb{
			Category: "cli",
			Message:  line,
		}); err != nil {
			slog.Warn("breadcrumb capture failed", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("reading stdin failed", "error", err)
	}
}
