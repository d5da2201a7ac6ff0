package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/thereayou/watch-together/internal/database"
	"github.com/thereayou/watch-together/internal/handlers"
	"github.com/thereayou/watch-together/internal/registry"
	"github.com/thereayou/watch-together/internal/session"
	ws "github.com/thereayou/watch-together/internal/websocket"
	"github.com/thereayou/watch-together/pkg/auth"
)

type Server struct {
	Router   *gin.Engine
	DB       *database.Database
	Redis    *redis.Client
	Hub      *ws.Hub
	Registry *registry.Registry
	Tickets  *auth.TicketManager
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	ticketMgr := auth.NewTicketManager(
		os.Getenv("TICKET_SECRET"),
		time.Hour,
	)

	roomCache := registry.NewRoomCache(rdb, 24*time.Hour)
	reg := registry.New(dbConn, roomCache)
	if err := reg.Prime(); err != nil {
		log.Fatalf("Registry prime failed: %v", err)
	}

	hub := ws.NewHub()
	sessions := session.NewDirectory()

	roomH := handlers.NewRoomHandler(reg, ticketMgr)
	signalH := handlers.NewSignalHandler(reg, sessions, hub)
	wsH := handlers.NewWebSocketHandler(hub, signalH)

	router := gin.Default()
	APIEndpoints(router, roomH, wsH, ticketMgr, dbConn, rdb)

	return &Server{
		Router:   router,
		DB:       dbConn,
		Redis:    rdb,
		Hub:      hub,
		Registry: reg,
		Tickets:  ticketMgr,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go s.Hub.Run()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.Router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server run error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	s.Hub.Stop()
}
