package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/resumable-sub-translator/internal/config"
	"github.com/MimeLyc/resumable-sub-translator/internal/llm"
	"github.com/MimeLyc/resumable-sub-translator/internal/media"
	"github.com/MimeLyc/resumable-sub-translator/internal/pipeline"
	"github.com/MimeLyc/resumable-sub-translator/internal/service"
	"github.com/MimeLyc/resumable-sub-translator/internal/translator"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

func main() {
	onlyExtract := flag.Bool("only-extract", false, "extract the best subtitle track and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	batchSize := flag.Int("batch-size", 0, "blocks per translation batch (overrides BATCH_SIZE)")
	watch := flag.Bool("watch", false, "scan the configured media directories on a cron schedule")
	flag.Parse()

	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	level := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if *debug {
		level = log.LevelDebug
	}
	log.InitLogger(level)

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	if *batchSize > 0 {
		cfg.Translate.BatchSize = *batchSize
	}

	if *onlyExtract {
		runExtract(flag.Args())
		return
	}

	driver := newDriver(cfg)

	if *watch {
		runWatch(*cfg, driver)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ctxtrans [flags] <subtitle-or-media-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	output, err := driver.ProcessFile(context.Background(), flag.Arg(0))
	if err != nil {
		log.Fatal("Translation failed: %v", err)
	}
	log.Info("Translated subtitle written to %s", output)
}

func newDriver(cfg *config.Config) *pipeline.Driver {
	client, err := llm.NewClient(&llm.Config{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		SiteURL:     cfg.LLM.SiteURL,
		AppName:     cfg.LLM.AppName,
	})
	if err != nil {
		log.Fatal("Failed to create LLM client: %v", err)
	}

	return pipeline.NewDriver(translator.NewLLMTranslator(client), pipeline.Config{
		TargetLanguage: cfg.Translate.TargetLanguage,
		BatchSize:      cfg.Translate.BatchSize,
		Concurrency:    cfg.Translate.Concurrency,
		MaxRetries:     cfg.Translate.MaxRetries,
	})
}

func runExtract(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: ctxtrans -only-extract <media-file>")
		os.Exit(2)
	}

	output, err := media.NewOperator(args[0]).ExtractBestSubtitle()
	if err != nil {
		log.Fatal("Extraction failed: %v", err)
	}
	log.Info("Extracted subtitle written to %s", output)
}

func runWatch(cfg config.Config, driver *pipeline.Driver) {
	if len(cfg.Media.MediaPaths()) == 0 {
		log.Fatal("Watch mode needs at least one of MOVIE_DIR, SHOW_DIR or ANIMATION_DIR")
	}

	c := cron.New()
	svc := service.NewRunnableTransService(cfg, driver, c)
	if err := svc.Schedule(context.Background()); err != nil {
		log.Fatal("Failed to schedule watch service: %v", err)
	}

	c.Start()
	log.Info("Watching %v on schedule %q", cfg.Media.MediaPaths(), cfg.Translate.CronExpr)
	select {}
}
