package appconfig

import "testing"

func TestDefaultHasSaneValues(t *testing.T) {
	cfg := Default()
	if cfg.LogsDir == "" {
		t.Fatal("expected a default logs dir")
	}
	if cfg.UIRefreshMillis <= 0 {
		t.Fatal("expected a positive refresh interval")
	}
	if cfg.Prometheus.Enabled {
		t.Fatal("expected prometheus disabled by default")
	}
}
