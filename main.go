package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wing9900/war-tycoon-oracle-bot/api"
	"github.com/wing9900/war-tycoon-oracle-bot/catalog"
	"github.com/wing9900/war-tycoon-oracle-bot/config"
	"github.com/wing9900/war-tycoon-oracle-bot/embeddings"
	"github.com/wing9900/war-tycoon-oracle-bot/index"
	"github.com/wing9900/war-tycoon-oracle-bot/ingestion"
	"github.com/wing9900/war-tycoon-oracle-bot/llm"
	"github.com/wing9900/war-tycoon-oracle-bot/oracle"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger)
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Error("unknown command", zap.String("command", os.Args[1]))
		printUsage()
		os.Exit(1)
	}
}

func loadCatalog(cfg config.Config, logger *zap.Logger) *catalog.Catalog {
	if cfg.CatalogPath == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}
	return cat
}

func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*oracle.Service, *ingestion.Service, index.Index) {
	idx, err := index.New(ctx, cfg)
	if err != nil {
		logger.Fatal("vector index setup", zap.Error(err))
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatal("embedder setup", zap.Error(err))
	}

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatal("llm setup", zap.Error(err))
	}

	cat := loadCatalog(cfg, logger)

	svc := oracle.NewService(idx, embedder, llmClient, cat, logger, oracle.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	ingester := ingestion.NewService(idx, embedder, cat, logger)
	return svc, ingester, idx
}

func serveCmd(cfg config.Config, logger *zap.Logger) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, ingester, idx := buildService(ctx, cfg, logger)
	defer idx.Close()

	server := api.New(svc, ingester, cfg.AllowedOrigin, cfg.DataDir, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", zap.String("addr", cfg.HTTPAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}
}

func askCmd(cfg config.Config, logger *zap.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask")
	if err := flags.Parse(args); err != nil {
		logger.Fatal("parse ask flags", zap.Error(err))
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatal("read question", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, _, idx := buildService(ctx, cfg, logger)
	defer idx.Close()

	answer, err := svc.Ask(ctx, *question)
	if err != nil {
		logger.Fatal("ask failed", zap.Error(err))
	}

	fmt.Println(answer)
}

func ingestCmd(cfg config.Config, logger *zap.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dataDir := flags.String("dir", cfg.DataDir, "path to the wiki data directory")
	if err := flags.Parse(args); err != nil {
		logger.Fatal("parse ingest flags", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, ingester, idx := buildService(ctx, cfg, logger)
	defer idx.Close()

	logger.Info("ingesting wiki data",
		zap.String("dir", *dataDir),
		zap.String("embeddings", cfg.Embeddings.Provider+"/"+cfg.Embeddings.Model),
	)

	if err := ingester.IngestDirectory(ctx, *dataDir); err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}
}

func clearCmd(cfg config.Config, logger *zap.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatal("parse clear flags", zap.Error(err))
	}

	if !*confirmed {
		fmt.Print("This will permanently delete all ingested wiki records. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatal("read confirmation", zap.Error(err))
			}
			logger.Info("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Info("clear aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	idx, err := index.New(ctx, cfg)
	if err != nil {
		logger.Fatal("vector index setup", zap.Error(err))
	}
	defer idx.Close()

	wiper, ok := idx.(index.Wiper)
	if !ok {
		logger.Fatal("index backend does not support clearing")
	}
	if err := wiper.Clear(ctx); err != nil {
		logger.Fatal("clear index", zap.Error(err))
	}

	logger.Info("wiki records removed")
}

func printUsage() {
	fmt.Println("Usage: war-tycoon-oracle-bot <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the HTTP API and chat widget")
	fmt.Println("  ask      Ask a single question from the command line")
	fmt.Println("  ingest   Ingest wiki data into the vector index (use --dir to override)")
	fmt.Println("  clear    Remove all ingested wiki records")
}
