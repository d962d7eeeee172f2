package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/HengWoo/TA-flagger/internal/client"
	"github.com/HengWoo/TA-flagger/internal/config"
	"github.com/HengWoo/TA-flagger/internal/logging"
	"github.com/HengWoo/TA-flagger/internal/render"
)

func main() {
	cfg := config.LoadDashboard()

	url := flag.String("url", cfg.APIURL, "payload endpoint")
	layoutPath := flag.String("layout", cfg.LayoutPath, "chart layout YAML file")
	timeout := flag.Duration("timeout", cfg.Timeout, "request timeout")
	width := flag.Int("width", 60, "sparkline width")
	flag.Parse()

	logging.Setup(os.Stderr, "dashboard", cfg.Log)

	layout, err := config.LoadLayout(*layoutPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := render.New(os.Stdout, layout).WithWidth(*width)

	dc := client.NewDashboardClient(*url, cfg.APIKey, *timeout)
	slog.Debug("fetching payload", "component", "dashboard", "url", dc.URL(), "timeout", *timeout)

	session := client.NewSession(dc)
	session.OnChange = func(st client.State) {
		if _, loading := st.(client.Loading); loading {
			r.State(st)
		}
	}
	session.Mount(ctx)
	defer session.Unmount()

	st := session.Wait(ctx)
	if !client.Settled(st) {
		return
	}
	if err := r.State(st); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
	if _, failed := st.(client.Failed); failed {
		os.Exit(1)
	}
}
