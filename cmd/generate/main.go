package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"t2v/config"
	"t2v/internal/clients/modelhub"
	"t2v/internal/dependencies"
	"t2v/internal/driver"
	"t2v/internal/pipeline"

	"github.com/TypeTerrors/gonfig"
	"github.com/charmbracelet/log"
)

func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = gonfig.Load[config.Config](
			gonfig.WithConfigFile(path),
			gonfig.WithDotenv(".env"),
		)
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file (defaults are used when missing)")
	prompt := flag.String("prompt", "A cat playing with a ball", "Text prompt")
	output := flag.String("output", "", "Output file or gs://bucket/object (default from config)")
	model := flag.String("model", "", "Model id (default from config)")
	checkModel := flag.Bool("check-model", false, "Verify the model supports the task on the model hub before loading")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("invalid config", "err", err)
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	if *output != "" {
		cfg.Pipeline.Output = *output
	}
	if *model != "" {
		cfg.Pipeline.Model = *model
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task, err := pipeline.ParseTask(cfg.Pipeline.Task)
	if err != nil {
		log.Fatal(err)
	}

	if *checkModel {
		info, err := modelhub.NewHubClient(cfg.Hub).GetModelInfo(ctx, cfg.Pipeline.Model)
		if err != nil {
			log.Fatal("model lookup failed", "model", cfg.Pipeline.Model, "err", err)
		}
		if !info.SupportsTask(string(task)) {
			log.Fatal("model does not support task", "model", info.ID(), "task", task)
		}
	}

	rpc, err := dependencies.NewRpc(cfg.Rpc)
	if err != nil {
		log.Fatal(err)
	}
	defer rpc.Close()

	p, err := pipeline.New(ctx, rpc, task, cfg.Pipeline.Model)
	if err != nil {
		log.Fatal(err)
	}

	out, err := driver.New(p, cfg.Pipeline.Output).Generate(ctx, *prompt)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("done, video written to %s\n", out)
}
