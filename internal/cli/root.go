package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ashare-trader/internal/ai"
	"ashare-trader/internal/config"
	"ashare-trader/internal/logging"
	"ashare-trader/internal/market"
	"ashare-trader/internal/resilience"
	"ashare-trader/internal/store"
	"ashare-trader/internal/strategy"
	"ashare-trader/internal/trading"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Ledger   store.Ledger
	Market   *market.Service
	Registry *trading.Registry
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "ashare-trader",
		Short: "A-share simulated trading engine",
		Long: `ashare-trader runs simulated trading over a configurable basket of
Shanghai and Shenzhen listed equities. Signals come from a three-tier
technical classifier, with an optional LLM decision source; fills are
simulated under A-share settlement rules (T+1, board lots, commission
and stamp duty, daily price limits) against a local sqlite ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/ashare-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newCycleCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))

	return rootCmd
}

// initServices opens the ledger, builds the quote pipeline and
// registers one engine per configured model. Commands that trade call
// this lazily so that read-only commands stay cheap.
func (app *App) initServices(cmd *cobra.Command) error {
	if app.Registry != nil {
		return nil
	}

	cfg := app.Config

	ledger, err := store.NewSQLiteLedger(filepath.Join(app.Config.Dir, "trader.db"))
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	app.Ledger = ledger

	app.Market = app.buildMarket()

	classifier := strategy.NewClassifier(cfg.Risk)
	sizer := trading.NewSizer(cfg.Fees.LotSize, cfg.Risk.PositionLimitPct)

	modelCfgs := cfg.Models
	if len(modelCfgs) == 0 {
		modelCfgs = []config.ModelConfig{{Name: "baseline", InitialCapital: 100000}}
	}

	registry := trading.NewRegistry()
	for _, mc := range modelCfgs {
		modelID, err := ledger.EnsureModel(cmd.Context(), mc.Name, mc.InitialCapital)
		if err != nil {
			return fmt.Errorf("registering model %s: %w", mc.Name, err)
		}

		source, err := app.buildSource(cfg.SourceFor(mc), modelID, classifier, sizer)
		if err != nil {
			return fmt.Errorf("building decision source for %s: %w", mc.Name, err)
		}

		engine := trading.NewEngine(modelID, mc.Name, cfg, source, app.Market, ledger, app.Logger)
		registry.Register(engine)
	}
	app.Registry = registry
	return nil
}

func (app *App) buildMarket() *market.Service {
	cfg := app.Config
	timeout := cfg.SupplierTimeout()

	// Each provider sits behind its own breaker so a dead endpoint
	// fails fast instead of eating its timeout every cycle.
	chain := market.NewChain(app.Logger,
		resilience.NewBreakerSupplier(market.NewSinaSupplier(timeout), app.Logger),
		resilience.NewBreakerSupplier(market.NewTencentSupplier(timeout), app.Logger),
	)
	cached := market.NewCachedSupplier(chain, cfg.QuoteCacheTTL())
	history := market.NewSinaHistorySupplier(2 * timeout)

	return market.NewService(cached, history, 5*cfg.Interval(), app.Logger)
}

func (app *App) buildSource(kind string, modelID int64, classifier *strategy.Classifier, sizer ai.BuySizer) (ai.DecisionSource, error) {
	rules := ai.NewRuleSource(classifier, sizer)
	if kind == config.SourceRules {
		return rules, nil
	}

	creds := app.Config.Credentials.OpenAI
	if creds.APIKey == "" {
		return nil, fmt.Errorf("decision source %q needs an OpenAI API key", kind)
	}
	client := ai.NewOpenAIClient(creds.APIKey, creds.BaseURL, creds.Model)
	llm := ai.NewLLMSource(client, app.Ledger, modelID, app.Config.Fees.LotSize, app.Logger)

	switch kind {
	case config.SourceLLM:
		return llm, nil
	case config.SourceLLMFallback:
		return ai.NewFallbackSource(llm, rules, app.Logger), nil
	default:
		return nil, fmt.Errorf("unknown decision source %q", kind)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("ashare-trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			output.Info("Trading")
			output.Printf("  interval:        %dm\n", cfg.Trading.IntervalMinutes)
			output.Printf("  symbols:         %v\n", cfg.Trading.Symbols)
			output.Printf("  decision source: %s\n", cfg.Trading.DecisionSource)
			output.Info("Fees")
			output.Printf("  commission:      %.4f (floor %.2f)\n", cfg.Fees.CommissionRate, cfg.Fees.CommissionFloor)
			output.Printf("  levy:            %.4f (sells only)\n", cfg.Fees.LevyRate)
			output.Printf("  lot size:        %d\n", cfg.Fees.LotSize)
			output.Info("Risk")
			output.Printf("  position limit:  %.0f%%\n", cfg.Risk.PositionLimitPct*100)
			output.Printf("  stop loss:       %.0f%%\n", cfg.Risk.StopLossPct*100)
			output.Printf("  RSI thresholds:  buy<=%.0f neutral[%.0f,%.0f] sell>%.0f\n",
				cfg.Risk.RSIBuyLow, cfg.Risk.RSINeutralLow, cfg.Risk.RSINeutralHigh, cfg.Risk.RSISellHigh)
			for _, m := range cfg.Models {
				output.Printf("  model %-12s capital %s\n", m.Name, FormatCNY(m.InitialCapital))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration directory",
		Run: func(cmd *cobra.Command, args []string) {
			dir := app.Config.Dir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			NewOutput(cmd).Println(dir)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration invalid: %v", err)
				return err
			}
			output.Success("Configuration valid (%d symbols, %d models)",
				len(app.Config.Trading.Symbols), len(app.Config.Models))
			return nil
		},
	})

	return cmd
}
