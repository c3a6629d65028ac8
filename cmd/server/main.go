package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"llm-chat/internal/auth"
	"llm-chat/internal/chat"
	"llm-chat/internal/config"
	"llm-chat/internal/history"
	"llm-chat/internal/llm"
	"llm-chat/internal/reaper"
	"llm-chat/internal/scheduler"
	"llm-chat/internal/session"
	"llm-chat/internal/store"
	"llm-chat/internal/web"
)

const modelListTTL = time.Hour

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	repo, err := store.NewFileStore(cfg.UsersFilePath)
	if err != nil {
		log.Fatalf("failed to init user store: %v", err)
	}
	// A corrupt document should stop the process here rather than on the
	// first request.
	if _, err := repo.Load(); err != nil {
		log.Fatalf("user store unreadable: %v", err)
	}

	authSvc := auth.New(repo)
	hist := history.New(repo)
	rp := reaper.New(repo)
	sessions := session.NewManager(authSvc, hist, rp, cfg.ReapSampleEvery)

	factory := llm.NewFactory(cfg)
	client, err := factory.CreateClient(cfg.LLMProvider)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	var models llm.ModelSource
	if groq, ok := client.(*llm.GroqClient); ok {
		models = llm.NewModelCache(groq, modelListTTL)
	} else {
		models = llm.StaticModelSource{
			List:   []string{cfg.DefaultModel},
			Detail: "provider " + cfg.LLMProvider,
		}
	}

	orch := chat.New(client, hist)

	sched := scheduler.New(cfg.ReapCronSpec)
	sched.SetJob(func(ctx context.Context) error {
		return rp.Sweep(sessions.LiveTokens())
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start guest sweep: %v", err)
	}
	defer sched.Stop()

	srv, err := web.New(sessions, hist, orch, models, cfg.DefaultModel, cfg.DevMode)
	if err != nil {
		log.Fatalf("failed to init web server: %v", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
