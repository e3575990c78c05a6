package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sitewatch/sitewatch/internal/appconfig"
	"github.com/sitewatch/sitewatch/internal/global"
	"github.com/sitewatch/sitewatch/internal/logwriter"
	"github.com/sitewatch/sitewatch/internal/model"
	"github.com/sitewatch/sitewatch/internal/siteconfig"
	"github.com/sitewatch/sitewatch/metrics"
	"github.com/sitewatch/sitewatch/ui"
)

var version = "0.1.0"

func printUsage() {
	fmt.Fprintf(os.Stderr, `sitewatch v%s — website availability and response-time monitor

Usage:
  sitewatch -file PATH [OPTIONS]

Options:
  -file, -f PATH     Site list file (required): one "name,url,interval,timeout" per line
  -logs, -l PATH     Logs directory (default from config, or ./logfiles)
  -ui MODE           "tui" (default) or "watch" (plain-text refresh, for non-interactive use)
  -prom-addr ADDR    Start a Prometheus /metrics endpoint on ADDR
  -version           Print version and exit
`, version)
}

func run(args []string) error {
	fs := flag.NewFlagSet("sitewatch", flag.ContinueOnError)
	fs.Usage = printUsage

	appCfg := appconfig.Load()

	var file, logsDir, uiMode, promAddr string
	var showVersion bool
	fs.StringVar(&file, "file", "", "site list file")
	fs.StringVar(&file, "f", "", "site list file (shorthand)")
	fs.StringVar(&logsDir, "logs", appCfg.LogsDir, "logs directory")
	fs.StringVar(&logsDir, "l", appCfg.LogsDir, "logs directory (shorthand)")
	fs.StringVar(&uiMode, "ui", "tui", `"tui" or "watch"`)
	defaultPromAddr := ""
	if appCfg.Prometheus.Enabled {
		defaultPromAddr = appCfg.Prometheus.Addr
	}
	fs.StringVar(&promAddr, "prom-addr", defaultPromAddr, "Prometheus listen address; unset disables it")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return ExitCodeError{Code: 2}
	}

	if showVersion {
		fmt.Printf("sitewatch v%s\n", version)
		return nil
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "sitewatch: -file is required")
		printUsage()
		return ExitCodeError{Code: 2}
	}
	if uiMode != "tui" && uiMode != "watch" {
		fmt.Fprintf(os.Stderr, "sitewatch: unknown -ui mode %q (want tui or watch)\n", uiMode)
		return ExitCodeError{Code: 2}
	}

	sites, err := siteconfig.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitewatch: %v\n", err)
		return ExitCodeError{Code: 2}
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "sitewatch: creating logs directory: %v\n", err)
		return ExitCodeError{Code: 2}
	}

	runID := uuid.NewString()
	lifecycleLog, err := os.OpenFile(filepath.Join(logsDir, "lifecycle_"+runID+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitewatch: opening lifecycle log: %v\n", err)
		return ExitCodeError{Code: 2}
	}
	defer lifecycleLog.Close()
	log.SetOutput(lifecycleLog)
	log.Printf("sitewatch: starting run %s with %d site(s)", runID, len(sites))

	fatal := &global.Fatal{}

	intervalSuffix := make(map[string]string, len(sites))
	for _, s := range sites {
		intervalSuffix[s.Name] = siteconfig.IntervalSuffix(s)
	}

	formatted := logwriter.NewFormatted(logsDir, intervalSuffix, func(err error) {
		log.Printf("sitewatch: formatted log writer error: %v", err)
		fatal.Raise(err)
	})

	var exporter *metrics.Exporter
	if promAddr != "" {
		exporter = metrics.New()
		go func() {
			if err := exporter.Serve(promAddr); err != nil {
				log.Printf("sitewatch: prometheus exporter stopped: %v", err)
			}
		}()
		log.Printf("sitewatch: prometheus metrics listening on %s", promAddr)
	}

	logSink := global.MetricConsumer(formatted)
	if exporter != nil {
		logSink = multiConsumer{formatted, exporter}
	}

	if uiMode == "watch" {
		return runWatch(sites, logsDir, logSink, fatal)
	}
	return runTUI(sites, logsDir, logSink, fatal)
}

// multiConsumer fans one aggregate out to several consumers — used
// when both the formatted log writer and the Prometheus exporter need
// every reading.
type multiConsumer []global.MetricConsumer

func (m multiConsumer) Consume(site string, agg model.Aggregate) {
	for _, c := range m {
		c.Consume(site, agg)
	}
}

func runTUI(sites []model.SiteConfig, logsDir string, logSink global.MetricConsumer, fatal *global.Fatal) error {
	bridge := ui.NewBridge()
	g := global.New(sites, bridge, logSink, fatal)

	rawWriter := logwriter.New(logsDir, g.Monitors(), func(err error) {
		log.Printf("sitewatch: raw log writer error: %v", err)
		fatal.Raise(err)
	})
	go rawWriter.Run()

	m := ui.NewModel(g)
	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.SetProgram(p)

	go g.Run()
	go watchFatal(fatal, func() { p.Quit() })

	_, runErr := p.Run()
	g.Stop()
	rawWriter.Stop()
	log.Printf("sitewatch: stopped")

	if fatal.Raised() {
		return fmt.Errorf("worker error: %w", fatal.Err())
	}
	return runErr
}

func runWatch(sites []model.SiteConfig, logsDir string, logSink global.MetricConsumer, fatal *global.Fatal) error {
	watch := &watchPrinter{}
	g := global.New(sites, watch, logSink, fatal)

	rawWriter := logwriter.New(logsDir, g.Monitors(), func(err error) {
		log.Printf("sitewatch: raw log writer error: %v", err)
		fatal.Raise(err)
	})
	go rawWriter.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		g.Stop()
	}()

	g.Run()
	rawWriter.Stop()
	log.Printf("sitewatch: stopped")

	if fatal.Raised() {
		return fmt.Errorf("worker error: %w", fatal.Err())
	}
	return nil
}

// watchFatal polls fatal at a coarse interval and invokes onRaise once
// it is set, so an interactive session notices a worker-side fatal
// error even though the user hasn't pressed a key.
func watchFatal(fatal *global.Fatal, onRaise func()) {
	for !fatal.Raised() {
		time.Sleep(200 * time.Millisecond)
	}
	onRaise()
}
