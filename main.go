package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	locationsimulator "trip-tracker/cmd/location_simulator"
	trackingservice "trip-tracker/cmd/tracking_service"
	"trip-tracker/internal/cli"
)

func main() {
	// quick path for global help
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse mode and collect the remaining args for that mode
	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {

	case cli.ModeTracking:
		fs := flag.NewFlagSet(cli.ModeTracking, flag.ContinueOnError)
		configPath := fs.String("config", "./config/config.yaml", "Path to the YAML configuration file")
		maxConc := fs.Int("max-concurrent", 100, "Maximum number of concurrent HTTP requests to process")
		broker := fs.Bool("broker", true, "Connect to RabbitMQ for device fixes and trip events")
		cli.AttachUsage(fs, cli.ModeTracking)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *maxConc < 1 {
			fmt.Fprintln(os.Stderr, "Error: --max-concurrent must be >= 1")
			fs.Usage()
			os.Exit(2)
		}
		err := trackingservice.Run(ctx, trackingservice.Options{
			ConfigPath:    *configPath,
			MaxConcurrent: *maxConc,
			Broker:        *broker,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeSimulator:
		fs := flag.NewFlagSet(cli.ModeSimulator, flag.ContinueOnError)
		configPath := fs.String("config", "./config/config.yaml", "Path to the YAML configuration file")
		tripID := fs.String("trip", "", "Trip to publish fixes for")
		from := fs.String("from", "", `Start point: "lat,lng" or a place keyword`)
		to := fs.String("to", "", `End point: "lat,lng" or a place keyword`)
		deny := fs.Bool("deny", false, "Publish a location permission denial instead of a drive")
		cli.AttachUsage(fs, cli.ModeSimulator)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *tripID == "" || (!*deny && (*from == "" || *to == "")) {
			fmt.Fprintln(os.Stderr, "Error: --trip is required, and --from/--to unless --deny is set")
			fs.Usage()
			os.Exit(2)
		}
		err := locationsimulator.Run(ctx, locationsimulator.Options{
			ConfigPath: *configPath,
			TripID:     *tripID,
			From:       *from,
			To:         *to,
			Deny:       *deny,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	default:
		// should not happen because ParseMode validates known modes
		fmt.Fprintln(os.Stderr, "Error: unknown mode")
		os.Exit(2)
	}

	// tiny delay to let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}
