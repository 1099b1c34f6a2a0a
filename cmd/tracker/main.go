// Command tracker runs the radar tracking pipeline as a standalone process:
// it loads a JSON configuration, listens for detection dwells over UDP,
// runs the fixed-cycle IMM tracking pipeline, and publishes the resulting
// track tables back out over UDP (and optionally gRPC), with an optional
// binary replay log of every pipeline stage.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/config"
	"github.com/cuas-radar/tracker/internal/tracker/grpcapi"
	"github.com/cuas-radar/tracker/internal/tracker/logging"
	"github.com/cuas-radar/tracker/internal/tracker/pipeline"
	"github.com/cuas-radar/tracker/internal/tracker/transport"
)

func main() {
	var configPath string
	var grpcAddr string
	flag.StringVar(&configPath, "config", "", "path to tracker configuration JSON (optional; defaults applied if omitted)")
	flag.StringVar(&grpcAddr, "grpc", "", "optional gRPC listen address for the live track stream (e.g. :9090)")
	flag.Parse()

	cfg := config.EmptyConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("tracker: failed to load config %s: %v", configPath, err)
		}
		cfg = loaded
	}

	var log_ *binlog.Writer
	if cfg.System.GetLogEnabled() {
		if err := os.MkdirAll(cfg.System.GetLogDirectory(), 0o755); err != nil {
			log.Fatalf("tracker: failed to create log directory: %v", err)
		}
		path := filepath.Join(cfg.System.GetLogDirectory(), time.Now().UTC().Format("20060102T150405Z")+".bin")
		w, err := binlog.Open(path)
		if err != nil {
			log.Fatalf("tracker: failed to open binary log: %v", err)
		}
		log_ = w
		logging.Info("cmd/tracker", "binary log opened at %s", path)
	}

	sender, err := transport.NewTrackSender(net.JoinHostPort(cfg.Network.GetSenderIP(), strconv.Itoa(cfg.Network.GetSenderPort())))
	if err != nil {
		log.Fatalf("tracker: failed to create track sender: %v", err)
	}
	defer sender.Close()

	var grpcServer *grpc.Server
	var grpcTrackServer *grpcapi.Server
	if grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("tracker: failed to listen on %s: %v", grpcAddr, err)
		}
		grpcTrackServer = grpcapi.NewServer()
		grpcServer = grpc.NewServer()
		grpcapi.Register(grpcServer, grpcTrackServer)
		go func() {
			logging.Info("cmd/tracker", "gRPC track stream listening on %s", grpcAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logging.Error("cmd/tracker", "gRPC server stopped: %v", err)
			}
		}()
		defer grpcServer.GracefulStop()
	}

	engine := pipeline.New(cfg, cfg.System.GetMaxDetectionsPerDwell()*4, func(buf []byte) {
		sender.Send(buf)
	}, log_)
	if grpcTrackServer != nil {
		engine.SetPublisher(grpcTrackServer.Publish)
	}
	engine.Start()
	defer engine.Stop()

	receiver := transport.NewDwellReceiver(transport.ReceiverConfig{
		Address:       net.JoinHostPort(cfg.Network.GetReceiverIP(), strconv.Itoa(cfg.Network.GetReceiverPort())),
		ReceiveBuffer: cfg.Network.GetReceiveBufferSize(),
		OnDwell:       engine.Enqueue,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := receiver.Start(ctx); err != nil && ctx.Err() == nil {
			logging.Error("cmd/tracker", "receiver stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logging.Info("cmd/tracker", "shutting down: %s", engine.Stats())
	cancel()
	if log_ != nil {
		log_.Close()
	}
}
