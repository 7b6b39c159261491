// Command asila runs the citizen query service: a webhook that answers
// text messages from verified, department-scoped notices.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/asila/asila/internal/adapters/contentstore"
	"github.com/asila/asila/internal/adapters/embedding"
	"github.com/asila/asila/internal/adapters/llm"
	"github.com/asila/asila/internal/adapters/redisstore"
	"github.com/asila/asila/internal/adapters/rulewatcher"
	"github.com/asila/asila/internal/config"
	"github.com/asila/asila/internal/domain/usecases"
	httpserver "github.com/asila/asila/internal/infrastructure/http"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[ERROR] loading config: %v", err)
	}

	store, err := contentstore.NewStore(cfg.ContentDB)
	if err != nil {
		log.Fatalf("[ERROR] opening content store: %v", err)
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	rules := usecases.NewRuleSource(nil)
	if cfg.RulesFile != "" {
		loaded, err := rulewatcher.LoadFile(cfg.RulesFile)
		if err != nil {
			log.Fatalf("[ERROR] loading rules file: %v", err)
		}
		rules.Update(loaded)
	}

	pipeline := usecases.NewPipeline(
		redisstore.NewRateLimiter(redisClient),
		redisstore.NewResponseCache(redisClient),
		store,
		embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel),
		llm.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.GenerateModel),
		store,
		rules,
		cfg.PipelineOptions(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RulesFile != "" {
		watcher, err := rulewatcher.New(cfg.RulesFile, rules)
		if err != nil {
			log.Fatalf("[ERROR] starting rules watcher: %v", err)
		}
		defer watcher.Stop()
		go watcher.Watch(ctx)
	}

	// Cancel on SIGINT/SIGTERM for an orderly shutdown.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Println("[INFO] shutdown signal received")
		cancel()
	}()

	server := httpserver.NewServer(pipeline, store)
	if err := server.Start(ctx, cfg.Server.Addr); err != nil {
		log.Fatalf("[ERROR] server: %v", err)
	}
	log.Println("[INFO] shutdown complete")
}
