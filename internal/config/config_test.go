package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forwarding {
		t.Error("forwarding should default to false")
	}
	if cfg.Rounding != RoundNearest {
		t.Errorf("got rounding %v, want RoundNearest", cfg.Rounding)
	}
	if cfg.DividerLatency != 24 {
		t.Errorf("got divider latency %d, want 24", cfg.DividerLatency)
	}
}

func TestLoadKeywords(t *testing.T) {
	src := "# comment\nFORWARDING\nFP_DIVIDE_BY_ZERO\nfp_rounding zero\nsync_exceptions terminate\n"
	cfg, err := Load(src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Forwarding || !cfg.FPDivideByZero {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Rounding != RoundTowardZero {
		t.Errorf("got rounding %v, want RoundTowardZero", cfg.Rounding)
	}
	if cfg.SyncExceptions != SyncExceptionTerminate {
		t.Errorf("got policy %v, want terminate", cfg.SyncExceptions)
	}
}

func TestLoadUnknownKeyword(t *testing.T) {
	_, err := Load("not_a_real_option\n")
	if err == nil {
		t.Fatal("expected error for unknown keyword")
	}
}

func TestLoadMissingValue(t *testing.T) {
	_, err := Load("sync_exceptions\n")
	if err == nil {
		t.Fatal("expected error for missing value")
	}
}

func TestLoadUnknownValue(t *testing.T) {
	_, err := Load("fp_rounding up\n")
	if err == nil {
		t.Fatal("expected error for unknown value")
	}
}
