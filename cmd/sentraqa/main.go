package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sentrashield/backend-go/internal/config"
	"github.com/sentrashield/backend-go/internal/extract"
	"github.com/sentrashield/backend-go/internal/knowledge"
	"github.com/sentrashield/backend-go/internal/llm"
	"github.com/sentrashield/backend-go/internal/logger"
	"github.com/sentrashield/backend-go/internal/questionnaire"
	"github.com/sentrashield/backend-go/internal/services"
)

func main() {
	// .env存在时加载，失败忽略
	_ = godotenv.Load()

	if err := config.LoadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.GetAppConfig()
	ctx := context.Background()

	embedder := knowledge.NewEmbedderFromConfig(cfg.Knowledge.Embedding)
	store, err := knowledge.NewVectorStoreFromConfig(cfg.Knowledge, embedder)
	if err != nil {
		logger.Fatal("failed to init vector store", zap.Error(err))
	}

	// 云端优先，本地回退
	gateway := llm.NewGateway(
		llm.NewGroqGenerator(llm.GroqOptions{
			APIKey:    cfg.LLM.Groq.APIKey,
			Model:     cfg.LLM.Groq.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		}),
		llm.NewOllamaGenerator(llm.OllamaOptions{
			Host:         cfg.LLM.Ollama.Host,
			Model:        cfg.LLM.Ollama.Model,
			MaxTokens:    cfg.LLM.MaxTokens,
			Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			ProbeTimeout: time.Duration(cfg.LLM.ProbeSeconds) * time.Second,
		}),
	)

	switch os.Args[1] {
	case "build":
		runBuild(ctx, cfg, store, os.Args[2:])
	case "answer":
		runAnswer(ctx, cfg, store, gateway, os.Args[2:])
	case "status":
		runStatus(ctx, store, os.Args[2:])
	case "delete":
		runDelete(ctx, store, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sentraqa <command> [flags]

commands:
  build   -user <id> <file>...           build the knowledge base from reference documents
  answer  -user <id> -questions <file>   answer a questionnaire (writes answers JSON)
  status  -user <id>                     report whether a knowledge base exists
  delete  -user <id>                     delete the knowledge base`)
}

func runBuild(ctx context.Context, cfg *config.Config, store knowledge.VectorStore, args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	user := fs.String("user", "", "user id")
	fs.Parse(args)

	if *user == "" || fs.NArg() == 0 {
		logger.Fatal("build requires -user and at least one reference document")
	}

	chunker := knowledge.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
	svc := services.NewKnowledgeService(store, chunker, extract.NewTextExtractor())

	count, err := svc.BuildFromFiles(ctx, *user, fs.Args())
	if err != nil {
		logger.Fatal("failed to build knowledge base", zap.Error(err))
	}
	logger.Info("✅ knowledge base built", zap.Int("chunks", count))
}

func runAnswer(ctx context.Context, cfg *config.Config, store knowledge.VectorStore, gateway *llm.Gateway, args []string) {
	fs := flag.NewFlagSet("answer", flag.ExitOnError)
	user := fs.String("user", "", "user id")
	questionsPath := fs.String("questions", "", "questionnaire text file")
	outPath := fs.String("out", "answers.json", "output file for answer records")
	fs.Parse(args)

	if *user == "" || *questionsPath == "" {
		logger.Fatal("answer requires -user and -questions")
	}

	data, err := os.ReadFile(*questionsPath)
	if err != nil {
		logger.Fatal("failed to read questionnaire", zap.Error(err))
	}
	questions := questionnaire.ParseQuestions(string(data))
	if len(questions) == 0 {
		logger.Fatal("no questions found in the questionnaire")
	}
	logger.Info("parsed questionnaire", zap.Int("questions", len(questions)))

	svc := services.NewAnswerService(store, gateway, cfg.Knowledge.TopK, cfg.Knowledge.Threshold)
	records, summary, err := svc.Run(ctx, *user, questions, func(done float64) {
		logger.Info("progress", zap.String("completed", fmt.Sprintf("%.0f%%", done*100)))
	})
	if err != nil {
		logger.Fatal("failed to answer questionnaire", zap.Error(err))
	}

	output := struct {
		Answers []questionnaire.AnswerRecord  `json:"answers"`
		Summary questionnaire.CoverageSummary `json:"summary"`
	}{Answers: records, Summary: summary}

	outFile, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("failed to create output file", zap.Error(err))
	}
	defer outFile.Close()

	encoder := json.NewEncoder(outFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		logger.Fatal("failed to write answers", zap.Error(err))
	}

	logger.Info("✅ questionnaire answered",
		zap.String("output", *outPath),
		zap.Int("total", summary.TotalQuestions),
		zap.Int("answered", summary.Answered),
		zap.Int("not_found", summary.NotFound),
		zap.Float64("avg_confidence", summary.AvgConfidence))
}

func runStatus(ctx context.Context, store knowledge.VectorStore, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	user := fs.String("user", "", "user id")
	fs.Parse(args)

	if *user == "" {
		logger.Fatal("status requires -user")
	}

	if store.Exists(ctx, *user) {
		fmt.Println("knowledge base: ready")
	} else {
		fmt.Println("knowledge base: not built")
	}
}

func runDelete(ctx context.Context, store knowledge.VectorStore, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	user := fs.String("user", "", "user id")
	fs.Parse(args)

	if *user == "" {
		logger.Fatal("delete requires -user")
	}

	deleted, err := store.Delete(ctx, *user)
	if err != nil {
		logger.Fatal("failed to delete knowledge base", zap.Error(err))
	}
	if deleted {
		logger.Info("✅ knowledge base deleted", zap.String("user", *user))
	} else {
		logger.Info("nothing to delete", zap.String("user", *user))
	}
}
