package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"google.golang.org/grpc"

	"github.com/khwan789/KimchiClicker/internal/config"
	"github.com/khwan789/KimchiClicker/internal/engine"
	"github.com/khwan789/KimchiClicker/internal/persist"
	"github.com/khwan789/KimchiClicker/internal/rpc"
)

func main() {
	app := cli.NewApp()
	app.Name = "kimchi-server"
	app.Usage = "host a Kimchi Clicker run over HTTP, websocket and gRPC"
	app.Version = "0.2.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "balance override YAML, reloaded on change"},
		cli.StringFlag{Name: "data-dir", Usage: "save directory (default: platform data dir)", EnvVar: "KIMCHI_DATA_DIR"},
		cli.StringFlag{Name: "http", Value: ":8080", Usage: "HTTP listen address"},
		cli.StringFlag{Name: "grpc", Value: ":7070", Usage: "gRPC listen address, empty to disable"},
		cli.BoolFlag{Name: "compress", Usage: "write LZ4-framed saves"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	loader := config.NewLoader(c.String("config"))
	bal, err := loader.Balance()
	if err != nil {
		return err
	}

	dir := c.String("data-dir")
	if dir == "" {
		dir = bal.Persistence.Dir
	}
	store, err := persist.NewFileStore(dir, bal.Persistence.File, c.Bool("compress") || bal.Persistence.Compress)
	if err != nil {
		return err
	}
	logger.Info("save location", "path", store.Path())

	eng = engine.New(bal, store, engine.WithLogger(logger))
	if err := eng.Load(); err != nil && !errors.Is(err, engine.ErrSaveRecovered) {
		return err
	}
	eng.Resume()

	hub := newHub()
	eng.Subscribe(hub.onEvent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go tickLoop(ctx, bal.TickHz)

	if path := loader.Path(); path != "" {
		w := config.NewWatcher([]string{path}, 2*time.Second, func(p string) {
			loader.Invalidate()
			b, err := loader.Balance()
			if err != nil {
				logger.Error("config reload rejected", "path", p, "err", err)
				return
			}
			lock.Lock()
			defer lock.Unlock()
			if err := eng.Reconfigure(b); err != nil {
				logger.Error("reconfigure failed", "err", err)
				return
			}
			logger.Info("config reloaded", "path", p)
		})
		go w.Run(ctx)
	}

	var gs *grpc.Server
	if addr := c.String("grpc"); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		gs = grpc.NewServer()
		rpc.Register(gs, rpc.NewServer(eng, &lock))
		go func() {
			if err := gs.Serve(lis); err != nil {
				logger.Error("grpc server stopped", "err", err)
			}
		}()
		logger.Info("grpc listening", "addr", addr)
	}

	srv := &http.Server{Addr: c.String("http"), Handler: routes(hub)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
			stop()
		}
	}()
	logger.Info("http listening", "addr", srv.Addr)

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if gs != nil {
		gs.GracefulStop()
	}
	hub.close()

	lock.Lock()
	defer lock.Unlock()
	return eng.Suspend()
}

// tickLoop feeds wall time into the engine at hz.
func tickLoop(ctx context.Context, hz int) {
	if hz <= 0 {
		hz = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			lock.Lock()
			eng.Step(dt)
			lock.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
