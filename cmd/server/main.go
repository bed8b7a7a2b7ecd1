// Command server runs the position store: a gRPC table that joystick
// clients mirror their history into, and a small JSON view of it.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/joystick-backend/internal/config"
	"github.com/xtding233/joystick-backend/internal/rpc"
	"github.com/xtding233/joystick-backend/internal/store"
)

func main() {
	var (
		cfgDir   = flag.String("config", "config", "config base directory")
		profile  = flag.String("profile", "", "config profile name")
		grpcAddr = flag.String("grpc", "", "gRPC listen address (overrides server.grpc_addr)")
		httpAddr = flag.String("http", "", "HTTP listen address (overrides server.http_addr)")
		maxRecs  = flag.Int("max-records", -1, "table bound, 0 = unbounded (overrides store.max_records)")
	)
	flag.Parse()

	var o config.Overrides
	if *grpcAddr != "" {
		o.GRPCAddr = grpcAddr
	}
	if *httpAddr != "" {
		o.HTTPAddr = httpAddr
	}
	if *maxRecs >= 0 {
		o.MaxRecords = maxRecs
	}

	loader := config.NewLoader(*cfgDir)
	params, err := load(loader, *profile, o)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("config version=%q max_records=%d", params.Version, params.MaxRecords)

	mem := store.NewMemory(params.MaxRecords)

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(rpc.LoggingInterceptor))
	rpc.Register(gs, mem)
	lis, err := net.Listen("tcp", params.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", params.GRPCAddr, err)
	}
	go func() {
		log.Printf("grpc listening on %s ...", params.GRPCAddr)
		if err := gs.Serve(lis); err != nil {
			log.Printf("grpc serve: %v", err)
		}
	}()

	hs := &http.Server{Addr: params.HTTPAddr, Handler: newMux(mem), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("http listening on %s ...", params.HTTPAddr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http serve: %v", err)
		}
	}()

	// only the table bound is hot; addresses need a restart
	watcher := config.NewFileWatcher(loader.Files(*profile), time.Second, func(path string) {
		loader.Invalidate()
		p, err := load(loader, *profile, o)
		if err != nil {
			log.Printf("reload %s: %v (keeping previous config)", path, err)
			return
		}
		mem.SetCap(p.MaxRecords)
		log.Printf("reloaded %s: max_records=%d", path, p.MaxRecords)
	})
	watcher.Start()
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Println("shutting down ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	gs.GracefulStop()
}

func load(l *config.Loader, profile string, o config.Overrides) (config.Params, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return config.Params{}, err
	}
	return config.Resolve(raw, o)
}
