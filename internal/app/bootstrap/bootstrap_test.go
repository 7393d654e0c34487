package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/vitalwatch/internal/config"
	"github.com/wolfman30/vitalwatch/internal/monitor"
	"github.com/wolfman30/vitalwatch/internal/notify"
	"github.com/wolfman30/vitalwatch/internal/source"
	"github.com/wolfman30/vitalwatch/internal/vitals"
	"github.com/wolfman30/vitalwatch/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	mr.Close()
	if BuildRedisClient(context.Background(), cfg, logging.New("error"), true) != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildSuppressor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, nil, false)
	defer client.Close()

	if BuildSuppressor(client, &appconfig.Config{}, nil) != nil {
		t.Fatalf("expected no suppressor without ALERT_COOLDOWN")
	}
	if BuildSuppressor(nil, &appconfig.Config{AlertCooldown: time.Minute}, nil) != nil {
		t.Fatalf("expected no suppressor without redis")
	}
	sup := BuildSuppressor(client, &appconfig.Config{AlertCooldown: time.Minute}, nil)
	if _, ok := sup.(*monitor.RedisSuppressor); !ok {
		t.Fatalf("expected redis suppressor, got %T", sup)
	}
}

func TestBuildStoreFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	if err := os.WriteFile(path, []byte(`{"patients":[{"id":"p-1","name":"Ana"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	store, closeFn, err := BuildStore(context.Background(), &appconfig.Config{FixtureFile: path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*source.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	if _, err := store.Patient(context.Background(), "p-1"); err != nil {
		t.Fatalf("expected fixture patient: %v", err)
	}
}

func TestBuildStoreEmpty(t *testing.T) {
	store, closeFn, err := BuildStore(context.Background(), &appconfig.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closeFn()
	ids, _ := store.PatientIDs(context.Background())
	if len(ids) != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestBuildLLMClientNoneConfigured(t *testing.T) {
	if client := BuildLLMClient(context.Background(), &appconfig.Config{}, nil, logging.New("error")); client != nil {
		t.Fatalf("expected nil client, got %T", client)
	}
}

func TestBuildNotificationSink(t *testing.T) {
	sink, err := BuildNotificationSink(&appconfig.Config{EmailProvider: "stub", SMSProvider: "stub"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(*notify.LogSink); !ok {
		t.Fatalf("expected log sink, got %T", sink)
	}

	sink, err = BuildNotificationSink(&appconfig.Config{EmailProvider: "stub", SMSProvider: "twilio", TwilioAccountSID: "AC1", TwilioAuthToken: "t", TwilioFromNumber: "+1555"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sink.(*notify.TransportSink); !ok {
		t.Fatalf("expected transport sink, got %T", sink)
	}

	if _, err := BuildNotificationSink(&appconfig.Config{EmailProvider: "ses"}, nil, nil); err == nil {
		t.Fatalf("expected error for ses without aws config")
	}
}

func TestBuildPipeline(t *testing.T) {
	cfg := &appconfig.Config{EmailProvider: "stub", SMSProvider: "stub", WindowSize: 10}
	p, err := BuildPipeline(context.Background(), cfg, PipelineDeps{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.WindowSize() != 10 {
		t.Fatalf("expected window size 10, got %d", p.WindowSize())
	}
	w := vitals.Window{{HeartRateBPM: 95, TemperatureC: 37.0, SpO2Percent: 98, Timestamp: time.Now()}}
	if got := p.ClassifyLatest(w); got != vitals.StatusWarning {
		t.Fatalf("expected warning, got %s", got)
	}
	w = vitals.Window{{HeartRateBPM: 102, TemperatureC: 37.0, SpO2Percent: 98, Timestamp: time.Now()}}
	if got := p.ClassifyLatest(w); got != vitals.StatusCritical {
		t.Fatalf("expected critical, got %s", got)
	}
}

func TestBuildPipelineBadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	if err := os.WriteFile(path, []byte("policies:\n  nonsense: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := BuildPipeline(context.Background(), &appconfig.Config{PolicyFile: path}, PipelineDeps{}, nil); err == nil {
		t.Fatalf("expected policy error")
	}
}
