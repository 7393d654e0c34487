package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/wolfman30/vitalwatch/cmd/mainconfig"
	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/ingest"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

// publish-vitals announces one reading on the ingestion queue. Handy against
// LocalStack when testing the worker or the lambda.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	patientID := flag.String("patient", "", "patient id")
	hr := flag.Int("hr", 75, "heart rate (bpm)")
	temp := flag.Float64("temp", 36.8, "temperature (C)")
	spo2 := flag.Int("spo2", 98, "oxygen saturation (%)")
	flag.Parse()
	if *patientID == "" {
		fmt.Fprintln(os.Stderr, "usage: publish-vitals -patient <id> [-hr N -temp T -spo2 N]")
		os.Exit(2)
	}

	cfg := appconfig.Load()
	if cfg.IngestQueueURL == "" {
		log.Fatal("INGEST_QUEUE_URL is required")
	}
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	publisher := ingest.NewPublisher(ingest.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.IngestQueueURL), logger)

	id, err := publisher.Publish(ctx, *patientID, vitals.Sample{
		HeartRateBPM: *hr,
		TemperatureC: *temp,
		SpO2Percent:  *spo2,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("publish: %v", err)
	}
	fmt.Println(id)
}
