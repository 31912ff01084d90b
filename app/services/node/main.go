package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/racechain/racechain/app/services/node/handlers"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
	"github.com/racechain/racechain/foundation/blockchain/node"
	"github.com/racechain/racechain/foundation/events"
	"github.com/racechain/racechain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Sim struct {
			NodeCount int    `conf:"default:3"`
			Topology  string `conf:"default:mesh,help:mesh or ring"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Simulation Support

	// The blockchain packages accept a function of this signature to allow
	// the application to log. These raw messages are also sent to any
	// websocket client that is connected into the system.
	evts := events.New()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Send(s)
	}

	// Give every node an identity up front so the static neighbour
	// adjacency can be built before any node starts.
	ids := make([]string, cfg.Sim.NodeCount)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	adjacency, err := buildAdjacency(cfg.Sim.Topology, ids)
	if err != nil {
		return fmt.Errorf("building adjacency: %w", err)
	}

	// The mailbox network is the only state shared between nodes.
	net := mailbox.New(adjacency)
	defer net.Shutdown()

	// Every node must be seeded with the identical genesis block.
	genesis := ledger.Genesis()

	nodes := make([]*node.Node, cfg.Sim.NodeCount)
	for i, id := range ids {
		nodes[i] = node.New(node.Config{
			ID:        id,
			Net:       net,
			Genesis:   genesis,
			EvHandler: ev,
		})
	}

	// Start the protocol loop for every node. The workers register
	// themselves with their nodes.
	for _, n := range nodes {
		node.Run(n)
		log.Infow("startup", "status", "node running", "node", n.ID())
	}
	defer func() {
		for _, n := range nodes {
			n.Worker.Shutdown()
		}
	}()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.
	debugMux := handlers.DebugMux(build, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Make a channel to listen for an interrupt or terminate signal from the
	// OS. Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Net:      net,
		Nodes:    nodes,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// buildAdjacency constructs the static neighbour graph for the simulation.
// A mesh connects every node to every other node; a ring connects each
// node to its two immediate neighbours.
func buildAdjacency(topology string, ids []string) (map[string][]string, error) {
	adjacency := make(map[string][]string, len(ids))

	switch topology {
	case "mesh":
		for i, id := range ids {
			for j, peer := range ids {
				if i == j {
					continue
				}
				adjacency[id] = append(adjacency[id], peer)
			}
		}

	case "ring":
		n := len(ids)
		for i, id := range ids {
			prev := ids[(i-1+n)%n]
			next := ids[(i+1)%n]
			if prev != id {
				adjacency[id] = append(adjacency[id], prev)
			}
			if next != id && next != prev {
				adjacency[id] = append(adjacency[id], next)
			}
		}

	default:
		return nil, fmt.Errorf("unknown topology %q", topology)
	}

	return adjacency, nil
}
