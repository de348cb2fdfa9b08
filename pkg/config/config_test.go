package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.RAG.GlobalTopK != 8 || cfg.RAG.MeetingTopK != 6 {
		t.Fatalf("unexpected top-k %d/%d", cfg.RAG.GlobalTopK, cfg.RAG.MeetingTopK)
	}
	if cfg.RAG.MaxHistory != 10 {
		t.Fatalf("unexpected max history %d", cfg.RAG.MaxHistory)
	}
	if cfg.RAG.EmbeddingBatchSize != 50 {
		t.Fatalf("unexpected batch size %d", cfg.RAG.EmbeddingBatchSize)
	}
	if len(cfg.Insights.TargetStatuses) != 1 || cfg.Insights.TargetStatuses[0] != "completed" {
		t.Fatalf("unexpected target statuses %v", cfg.Insights.TargetStatuses)
	}
	if cfg.Insights.SegmentLimit != 300 {
		t.Fatalf("unexpected segment limit %d", cfg.Insights.SegmentLimit)
	}
	if cfg.Insights.PollInterval != 30*time.Second || cfg.Insights.BusyPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll intervals %s/%s", cfg.Insights.PollInterval, cfg.Insights.BusyPollInterval)
	}
	if cfg.Insights.ProcessingLease != 30*time.Minute {
		t.Fatalf("unexpected lease %s", cfg.Insights.ProcessingLease)
	}
	if cfg.Insights.TeamRosterPath != "team_roster.txt" {
		t.Fatalf("unexpected roster path %s", cfg.Insights.TeamRosterPath)
	}
	if cfg.Notify.NATSSubject != "meetings.insights.completed" {
		t.Fatalf("unexpected subject %s", cfg.Notify.NATSSubject)
	}
}

func TestLoad_InsightsOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("INSIGHTS_TARGET_STATUSES", "completed,stopped")
	t.Setenv("INSIGHTS_SEGMENT_LIMIT", "50")
	t.Setenv("INSIGHTS_PROCESSING_LEASE", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Insights.TargetStatuses) != 2 || cfg.Insights.TargetStatuses[1] != "stopped" {
		t.Fatalf("unexpected target statuses %v", cfg.Insights.TargetStatuses)
	}
	if cfg.Insights.SegmentLimit != 50 {
		t.Fatalf("unexpected segment limit %d", cfg.Insights.SegmentLimit)
	}
	if cfg.Insights.ProcessingLease != 0 {
		t.Fatalf("lease should be disabled, got %s", cfg.Insights.ProcessingLease)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without LLM_API_KEY")
	}

	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "anthropic")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidate_LeaseMustExceedProcessTimeout(t *testing.T) {
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("INSIGHTS_PROCESS_TIMEOUT", "10m")
	t.Setenv("INSIGHTS_PROCESSING_LEASE", "1m")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for a lease shorter than the process timeout")
	}

	t.Setenv("INSIGHTS_PROCESSING_LEASE", "10m")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for a lease equal to the process timeout")
	}

	t.Setenv("INSIGHTS_PROCESSING_LEASE", "11m")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Insights.ProcessingLease != 11*time.Minute {
		t.Fatalf("unexpected lease %s", cfg.Insights.ProcessingLease)
	}
}

func TestLoad_ModelDefaultsLeftToProvider(t *testing.T) {
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LLM.ChatModel != "" || cfg.LLM.SummaryModel != "" || cfg.LLM.EmbeddingModel != "" {
		t.Fatalf("gemini must not inherit model names, got chat=%q summary=%q embed=%q",
			cfg.LLM.ChatModel, cfg.LLM.SummaryModel, cfg.LLM.EmbeddingModel)
	}
	if cfg.LLM.BaseURL != "" {
		t.Fatalf("unexpected base url %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.EmbeddingDimensions != 1536 {
		t.Fatalf("unexpected dimensions %d", cfg.LLM.EmbeddingDimensions)
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " http://a , ,http://b")
	got := getEnvAsSlice("ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected origins %v", got)
	}
}
