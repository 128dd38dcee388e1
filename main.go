package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded settings from .env")
	}

	cfg := LoadConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.Parse()

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	hub := NewHub(cfg, db, analytics)
	go hub.Run()

	loop := NewGameLoop(hub.rooms, hub.anticheat, cfg.TickInterval())
	go loop.Run()

	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub, cfg)}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server starting on %s (tick rate %d/s, map size %.0f)", cfg.Addr, cfg.TickRate, cfg.MapSize)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	// Stop scheduling ticks, tell clients, then give in-flight
	// traffic a bounded grace period before forcing the close.
	loop.Stop()
	hub.NotifyShutdown()
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Close()
	}
}
