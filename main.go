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

	"taskapp/internal/cache"
	intconfig "taskapp/internal/config"
	router "taskapp/internal/http"
	"taskapp/internal/http/handlers"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env.DBDSN)
	defer intconfig.CloseDB()

	var store cache.Store = cache.NewMemoryStore()
	if env.RedisAddr != "" {
		redisStore := cache.NewRedisStore(env.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			log.Printf("redis unreachable (%v), falling back to in-memory cache", err)
		} else {
			store = redisStore
		}
		cancel()
	}
	handlers.Configure(cache.New(store), env.CacheTTL, env.JWTSecret)

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
