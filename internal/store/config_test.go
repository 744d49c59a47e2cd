package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const minimalConfig = `
mode: DRY_RUN
rpc:
  providers:
    - https://eth.example.com
pair:
  pool_address: "0x11950d141EcB863F01007AdD7D1A342041227b58"
`

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PollSeconds != 3 {
		t.Errorf("PollSeconds = %d, want default 3", cfg.PollSeconds)
	}
	if cfg.Indicators.ShortSMA != 3 || cfg.Indicators.LongSMA != 8 {
		t.Errorf("SMA defaults = %d/%d, want 3/8", cfg.Indicators.ShortSMA, cfg.Indicators.LongSMA)
	}
	if cfg.EmergencyStop.StopLoss != 0.20 {
		t.Errorf("StopLoss = %v, want default 0.20", cfg.EmergencyStop.StopLoss)
	}
	if cfg.EmergencyStop.RecoveryWaitHours != 2 {
		t.Errorf("RecoveryWaitHours = %v, want default 2", cfg.EmergencyStop.RecoveryWaitHours)
	}
	if cfg.Risk.MaxGasPriceGwei != 200 {
		t.Errorf("MaxGasPriceGwei = %v, want default 200", cfg.Risk.MaxGasPriceGwei)
	}
}

func TestLoadConfigRejectsInvalidMode(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, strings.Replace(minimalConfig, "DRY_RUN", "PAPER", 1)))
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Fatalf("err = %v, want invalid-mode rejection", err)
	}
}

func TestLoadConfigRejectsMissingProviders(t *testing.T) {
	body := `
mode: DRY_RUN
pair:
  pool_address: "0x11950d141EcB863F01007AdD7D1A342041227b58"
`
	_, err := LoadConfig(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "providers") {
		t.Fatalf("err = %v, want empty-providers rejection", err)
	}
}

func TestLoadConfigRejectsInvertedSMAs(t *testing.T) {
	body := minimalConfig + `
indicators:
  short_sma: 10
  long_sma: 5
`
	_, err := LoadConfig(writeConfig(t, body))
	if err == nil || !strings.Contains(err.Error(), "short_sma") {
		t.Fatalf("err = %v, want short/long SMA ordering rejection", err)
	}
}

func TestLoadConfigLiveModeNeedsWallet(t *testing.T) {
	t.Setenv("WALLET_ADDRESS", "")
	_, err := LoadConfig(writeConfig(t, strings.Replace(minimalConfig, "DRY_RUN", "LIVE", 1)))
	if err == nil || !strings.Contains(err.Error(), "WALLET_ADDRESS") {
		t.Fatalf("err = %v, want missing-wallet rejection", err)
	}
}

func TestApplyEnvOverlays(t *testing.T) {
	t.Setenv("WEB3_PROVIDER_URL", "https://primary.example.com")
	t.Setenv("WALLET_ADDRESS", "0xabc")
	t.Setenv("LIVE_TRADING_ENABLED", "true")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RPC.Providers[0] != "https://primary.example.com" {
		t.Errorf("Providers[0] = %q, want the env provider prepended", cfg.RPC.Providers[0])
	}
	if cfg.WalletAddress != "0xabc" {
		t.Errorf("WalletAddress = %q, want env value", cfg.WalletAddress)
	}
	if !cfg.Trading.Enabled {
		t.Error("Trading.Enabled = false, want env override true")
	}
}

func TestMinSamples(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// Defaults keep every window below the MACD slow span.
	if got := cfg.MinSamples(); got != 26 {
		t.Errorf("MinSamples = %d, want 26", got)
	}
	cfg.Indicators.RSIPeriod = 40
	if got := cfg.MinSamples(); got != 40 {
		t.Errorf("MinSamples = %d, want the widest window 40", got)
	}
}
