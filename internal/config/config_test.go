package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Models) != 6 {
		t.Fatalf("expected 6 default models, got %d", len(cfg.Models))
	}
	if cfg.LLM.DefaultModel != "HuggingFaceH4/zephyr-7b-beta" {
		t.Fatalf("unexpected default model %q", cfg.LLM.DefaultModel)
	}
	if cfg.LLM.MaxTokens != 500 || cfg.LLM.Temperature != 0.7 {
		t.Fatalf("unexpected sampling defaults: %d tokens, temperature %v", cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	}
	if cfg.STT.SampleRate != 16000 {
		t.Fatalf("expected 16 kHz stt sample rate, got %d", cfg.STT.SampleRate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VT_HTTP_PORT", "8080")
	t.Setenv("VT_LLM_MODE", "mock")
	t.Setenv("VT_LLM_TEMPERATURE", "0.2")
	t.Setenv("VT_TTS_ENABLED", "false")
	t.Setenv("VT_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("HF_TOKEN", "hf_test_token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected port override, got %d", cfg.HTTP.Port)
	}
	if cfg.LLM.Mode != "mock" {
		t.Fatalf("expected llm mode override, got %q", cfg.LLM.Mode)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("expected temperature override, got %v", cfg.LLM.Temperature)
	}
	if cfg.TTS.Enabled {
		t.Fatal("expected tts disabled")
	}
	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.HFToken != "hf_test_token" {
		t.Fatalf("expected token from environment, got %q", cfg.HFToken)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	t.Setenv("VT_LLM_MODE", "quantum")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for bad llm mode")
	}
}
