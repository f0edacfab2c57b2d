package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# ashare-trader configuration

[trading]
interval_minutes = 5
symbols = ["600519", "000858", "601318", "600036", "000333", "300750"]
restricted_symbols = []
decision_source = "rules"  # rules | llm | llm_fallback
supplier_timeout = "5s"
quote_cache_ttl = "5s"

[risk]
pullback_tolerance = 0.01
rsi_buy_low = 30.0
rsi_neutral_low = 45.0
rsi_neutral_high = 60.0
rsi_sell_high = 70.0
position_limit_pct = 0.30
stop_loss_pct = 0.05
take_profit_breakout = 1.10
take_profit_pullback = 1.08
take_profit_continuation = 1.06
stop_offset_breakout = 0.05
stop_offset_pullback = 0.04
stop_offset_continuation = 0.03

[fees]
commission_rate = 0.0003
commission_floor = 5.0
levy_rate = 0.001
lot_size = 100
normal_limit_pct = 0.10
restricted_limit_pct = 0.05

[[models]]
name = "baseline"
initial_capital = 100000.0
# decision_source = "rules"
`

const credentialsTemplate = `# ashare-trader credentials
# Required only when decision_source is "llm" or "llm_fallback".
# OPENAI_API_KEY and OPENAI_BASE_URL environment variables take precedence.

[openai]
api_key = ""
base_url = "https://api.openai.com/v1"
model = "gpt-4o-mini"
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate)
}

func writeTemplate(configDir, name, content string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
