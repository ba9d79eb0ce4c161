// Command polarscan reads angle/distance readings from a rotating
// rangefinder on a serial port and serves a live polar plot of the scan.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/polarscan/internal/api"
	"github.com/banshee-data/polarscan/internal/config"
	"github.com/banshee-data/polarscan/internal/scan"
	"github.com/banshee-data/polarscan/internal/serialmux"
	"github.com/banshee-data/polarscan/internal/view"
)

var (
	devMode    = flag.Bool("dev", false, "Run with a synthetic scan source instead of hardware")
	listen     = flag.String("listen", ":8080", "Listen address")
	port       = flag.String("port", config.DefaultPort, "Serial port to use (ignored in dev mode)")
	baud       = flag.Int("baud", config.DefaultBaudRate, "Serial baud rate")
	buckets    = flag.Int("buckets", config.DefaultBuckets, "Angle buckets per revolution (360 or 720)")
	cadence    = flag.Duration("cadence", config.DefaultCadence, "Render cadence")
	smooth     = flag.Bool("smooth", false, "Smooth the scan with a cubic spline before rendering")
	colorMode  = flag.String("colors", "bands", "Point coloring: bands or gradient")
	configPath = flag.String("config", "", "Optional JSON config file")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	applyFlags(cfg)

	mode, ok := scan.ParseColorMode(cfg.GetColorMode())
	if !ok {
		log.Fatalf("unknown color mode %q", cfg.GetColorMode())
	}

	// show what the host can see before trying to open anything
	if ports, err := serialmux.ListPorts(); err == nil {
		log.Printf("available serial ports: %v", ports)
	}

	var mux serialmux.SerialMuxInterface
	if *devMode {
		mux = serialmux.NewMockSerialMux(5 * time.Millisecond)
		log.Printf("dev mode: synthetic scan source")
	} else {
		var err error
		mux, err = serialmux.NewRealSerialMux(cfg.GetPort(), serialmux.PortOptions{BaudRate: cfg.GetBaudRate()})
		if err != nil {
			log.Fatalf("failed to open serial port: %v", err)
		}
		log.Printf("opened %s at %d baud", cfg.GetPort(), cfg.GetBaudRate())
	}
	defer mux.Close()

	buf, err := scan.NewBuffer(cfg.GetBuckets(), cfg.GetSanityGate())
	if err != nil {
		log.Fatalf("failed to allocate scan buffer: %v", err)
	}

	vs := view.NewState(cfg.GetDefaultRange(), cfg.GetMinRange(), cfg.GetMaxRange())
	runner := scan.NewRunner(mux, buf, cfg.GetCadence(), cfg.GetSmooth(), mode)
	server := api.NewServer(runner, vs, mux)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(server.ServeMux()),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mux.Monitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("serial monitor stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("scan loop stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("listening on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	wg.Wait()

	stats := runner.Stats()
	log.Printf("done: %d lines, %d parse errors, %d frames", stats.Lines, stats.ParseErrors, stats.Frames)
	os.Exit(0)
}

// applyFlags copies explicitly set flags over the file config, so the
// command line wins where both are given.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "baud":
			cfg.BaudRate = baud
		case "buckets":
			cfg.Buckets = buckets
		case "cadence":
			s := cadence.String()
			cfg.Cadence = &s
		case "smooth":
			cfg.Smooth = smooth
		case "colors":
			cfg.ColorMode = colorMode
		}
	})
}
