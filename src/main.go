package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"lolplayer/src/handler/web"
	"lolplayer/src/library"
	"lolplayer/src/player"
	"lolplayer/src/sink"
	"lolplayer/src/sink/mpd"
	"lolplayer/src/sink/speaker"
	"lolplayer/src/util"
)

var (
	build       = "%BUILD%"
	version     = "%VERSION%"
	versionDate = "%VERSION_DATE%"
)

func main() {
	defaultLogLevel := "warn"
	if build == "debug" {
		defaultLogLevel = "debug"
	}

	configFile := flag.String("conf", confFile, "Path to the configuration file")
	printVersion := flag.Bool("version", false, "Print version information and exit")
	logLevel := flag.String("log", defaultLogLevel, "Sets the log level. [debug, info, warn, error]")
	console := flag.Bool("console", false, "Control playback from an interactive prompt")
	flag.Parse()

	if ll, err := log.ParseLevel(*logLevel); err != nil {
		log.Fatalf("Could not parse log level: %v", err)
	} else {
		log.SetLevel(ll)
	}
	log.SetReportCaller(true)

	if *printVersion {
		fmt.Printf("Version: %v (%v)\n", version, versionDate)
		fmt.Printf("Build: %v\n", build)
		return
	}

	log.Infof("Version: %v (%v)\n", version, build)
	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		log.Fatalf("Could not load config: %v", errs)
	}
	if config.Address == "" && !*console {
		log.Fatalf("Nothing to control playback with, set `bind` or use -console")
	}

	if err := os.MkdirAll(config.StorageDir, 0755); err != nil {
		log.Fatalf("Unable to create storage dir: %v", err)
	}
	log.Infof("Using %q for storage", config.StorageDir)
	store, err := util.NewPersistentStorage(filepath.Join(config.StorageDir, "state.json"), state{Library: config.Library})
	if err != nil {
		log.Fatalf("Unable to open state: %v", err)
	}

	out, err := openSink(config)
	if err != nil {
		log.Fatal(err)
	}
	ctrl := player.NewController(out, &library.Scanner{
		Extensions: config.Extensions,
		ReadTags:   config.ReadTags,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stateDone := trackState(ctx, ctrl, store)
	if dir := store.Value().Library; dir != "" {
		if err := ctrl.LoadLibrary(ctx, dir); err != nil {
			log.Errorf("Could not load library %q: %v", dir, err)
		}
	}
	monitorDone := player.AutoAdvance(ctx, ctrl, config.MonitorInterval)

	var server *http.Server
	if config.Address != "" {
		service := web.New(build, version, ctrl)
		if build == "debug" {
			service.Get("/debug/pprof/*", pprof.Index)
		}
		server = &http.Server{
			Addr:           config.Address,
			Handler:        service,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		go func() {
			log.Infof("Now accepting HTTP connections on %v", config.Address)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Error running webserver: %v", err)
			}
		}()
	}

	if *console {
		if err := runConsole(ctx, ctrl); err != nil {
			log.Errorf("Console error: %v", err)
		}
		stop()
	}
	<-ctx.Done()
	log.Info("Shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Could not shut down webserver: %v", err)
		}
		cancel()
	}
	<-monitorDone
	<-stateDone
	if err := ctrl.Close(); err != nil {
		log.Errorf("Could not close output: %v", err)
	}
}

func openSink(config *config) (sink.Sink, error) {
	if config.Speaker != nil {
		out, err := speaker.New(config.Speaker.SampleRate, config.Speaker.Buffer, config.Speaker.Volume)
		if err != nil {
			return nil, fmt.Errorf("unable to open speaker: %w", err)
		}
		return out, nil
	}
	out, err := mpd.Connect(config.MPD.Network, config.MPD.Address, config.MPD.Password, config.MPD.MusicDirectory)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MPD: %w", err)
	}
	return out, nil
}
