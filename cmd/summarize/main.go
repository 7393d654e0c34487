package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/vitalwatch/cmd/mainconfig"
	"github.com/wolfman30/vitalwatch/internal/app/bootstrap"
	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/media"
	"github.com/wolfman30/vitalwatch/internal/triage"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// summarize prints the dashboard assessment and health summary for one
// patient, exercising the configured text generation provider end to end.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	patientID := flag.String("patient", "", "patient id to summarize")
	flag.Parse()
	if *patientID == "" {
		fmt.Fprintln(os.Stderr, "usage: summarize -patient <id>")
		os.Exit(2)
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadOptionalAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	store, closeStore, err := bootstrap.BuildStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("build store: %v", err)
	}
	defer closeStore()

	patient, err := store.Patient(ctx, *patientID)
	if err != nil {
		log.Fatalf("load patient: %v", err)
	}
	window, err := store.Window(ctx, *patientID, cfg.WindowSize)
	if err != nil {
		log.Fatalf("load window: %v", err)
	}

	policies, err := triage.LoadPolicies(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("load policies: %v", err)
	}
	classifier := triage.NewClassifier(policies)
	advisor := media.NewAdvisor(policies)
	llm := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	generator := bootstrap.BuildGenerator(llm, advisor, cfg, nil, logger)

	start := time.Now()
	summary := generator.Generate(ctx, window, patient.Name)

	fmt.Printf("Patient:  %s (%s)\n", patient.Name, patient.ID)
	fmt.Printf("Samples:  %d\n", len(window))
	fmt.Printf("Status:   %s\n", classifier.ClassifyLatest(window))
	fmt.Printf("Gate:     %v %v\n", classifier.EvaluateAlertGate(window), classifier.GateReasons(window))
	fmt.Printf("Source:   %s (%v)\n", summary.Source, time.Since(start).Round(time.Millisecond))
	if !summary.Media.None() {
		fmt.Printf("Video:    %s\n", summary.Media)
	}
	fmt.Println()
	fmt.Println(summary.Narrative)
}
