package cli

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ashare-trader/internal/market"
	"ashare-trader/internal/models"
	"ashare-trader/internal/notify"
	"ashare-trader/internal/trading"
)

const timeRound = time.Millisecond

func newCycleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one trading cycle for every model and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)

			scheduler := trading.NewScheduler(app.Registry, app.Config.Interval(), app.Logger)
			results := scheduler.Tick(cmd.Context())

			if output.IsJSON() {
				return output.JSON(results)
			}
			for _, result := range results {
				printCycleResult(output, app, result)
			}
			return nil
		},
	}
}

func newRunCmd(app *App) *cobra.Command {
	var ignoreHours bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop until interrupted",
		Long: `Runs a trading cycle for every configured model on the configured
interval (default every 5 minutes) until Ctrl-C. Outside Shanghai
trading hours cycles are skipped unless --ignore-hours is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			output.Info("Trading loop started (%d models, every %s)",
				len(app.Registry.Engines()), app.Config.Interval())

			scheduler := trading.NewScheduler(app.Registry, app.Config.Interval(), app.Logger)
			if !ignoreHours {
				scheduler.SetGate(func() bool { return market.MarketOpen(time.Now()) })
			}
			if !output.IsJSON() {
				scheduler.SetNotifier(notify.NewTerminal(cmd.OutOrStdout()))
			}
			err := scheduler.Run(ctx)
			if err == context.Canceled {
				output.Warning("Interrupted, shutting down")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&ignoreHours, "ignore-hours", false, "trade outside exchange hours (for testing)")
	return cmd
}

func printCycleResult(output *Output, app *App, result *trading.CycleResult) {
	engine, err := app.Registry.Engine(result.ModelID)
	name := strconv.FormatInt(result.ModelID, 10)
	if err == nil {
		name = engine.ModelName()
	}

	if result.Skipped {
		output.Warning("[%s] cycle skipped: %s", name, result.Reason)
		return
	}

	output.Info("[%s] cycle finished in %s", name, result.Duration.Round(timeRound))
	for _, res := range result.Results {
		switch {
		case res.Trade != nil:
			output.Success("  %s %s", res.Symbol, res.Message)
		case res.Err != nil:
			output.Dim("  %s %s: %v", res.Symbol, res.Action, res.Err)
		}
	}
	if v := result.Valuation; v != nil {
		output.Printf("  total %s  cash %s  positions %s  realized %s\n",
			FormatCNY(v.TotalValue), FormatCNY(v.Cash),
			FormatCNY(v.PositionsValue), FormatPnL(v.RealizedPnL))
	}
}

func newPortfolioCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show each model's positions and account value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)
			ctx := cmd.Context()

			snaps, err := app.Market.Snapshots(ctx, app.Config.Trading.Symbols)
			prices := map[string]float64{}
			if err != nil {
				output.Warning("Quotes unavailable, showing positions at cost")
			} else {
				for sym, snap := range snaps {
					if snap.Price > 0 {
						prices[sym] = snap.Price
					}
				}
			}

			for _, engine := range app.Registry.Engines() {
				portfolio, err := app.Ledger.Portfolio(ctx, engine.ModelID(), prices)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					if err := output.JSON(portfolio); err != nil {
						return err
					}
					continue
				}

				output.Info("%s", engine.ModelName())
				output.Printf("  total %s (%s)  cash %s  realized %s  unrealized %s\n",
					FormatCNY(portfolio.TotalValue), FormatPercent(portfolio.TotalReturnPct()),
					FormatCNY(portfolio.Cash), FormatPnL(portfolio.RealizedPnL), FormatPnL(portfolio.UnrealizedPnL))
				if len(portfolio.Positions) == 0 {
					output.Dim("  no positions")
					continue
				}
				for _, pos := range portfolio.Positions {
					line := pos.Symbol + " " + market.DisplayName(pos.Symbol)
					output.Printf("  %-16s %6d @ %s", line, pos.Quantity, FormatCNY(pos.AvgCost))
					if pos.CurrentPrice > 0 {
						pnl := FormatPnL(pos.PnL)
						if pos.PnL >= 0 {
							pnl = output.Green(pnl)
						} else {
							pnl = output.Red(pnl)
						}
						output.Printf("  now %s  %s", FormatCNY(pos.CurrentPrice), pnl)
					}
					output.Println()
				}
			}
			return nil
		},
	}
}

func newTradesCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show recent trades per model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)
			ctx := cmd.Context()

			for _, engine := range app.Registry.Engines() {
				trades, err := app.Ledger.Trades(ctx, engine.ModelID(), limit)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					if err := output.JSON(trades); err != nil {
						return err
					}
					continue
				}

				output.Info("%s", engine.ModelName())
				if len(trades) == 0 {
					output.Dim("  no trades")
					continue
				}
				for _, t := range trades {
					output.Printf("  %s  %-4s %-6s %6d @ %s  fees %s",
						t.Timestamp.Format("2006-01-02 15:04"), t.Side, t.Symbol,
						t.Quantity, FormatCNY(t.Price), FormatCNY(t.TotalFees()))
					if t.Side == models.OrderSideSell {
						output.Printf("  pnl %s", FormatPnL(t.RealizedPnL))
					}
					output.Printf("  %s\n", output.DimText(string(t.Signal)))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of trades to show per model")
	return cmd
}
