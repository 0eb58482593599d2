package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repotutor/internal/config"
	"repotutor/internal/gateway/handler"
	"repotutor/internal/gateway/middleware"
	"repotutor/internal/gateway/server"
	"repotutor/internal/githost"
	"repotutor/internal/job"
	"repotutor/internal/llm"
	"repotutor/internal/tutorial"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}
	if cfg.GitHubToken == "" {
		log.Printf("GITHUB_TOKEN not set; using the anonymous GitHub rate limit")
	}

	ctx := context.Background()
	host := githost.NewClient(ctx, cfg.GitHubToken)
	model, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}
	defer model.Close()
	log.Printf("using model %s", model.Name())

	jobs := job.NewManager()
	builder := tutorial.NewBuilder(host, model)

	mux := http.NewServeMux()
	handler.New(jobs, builder).Register(mux)

	srv := server.New(cfg.Port, middleware.CORS(mux))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
