package cli

import (
	"math"

	"github.com/spf13/cobra"

	"ashare-trader/internal/performance"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show trading statistics per model",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)
			ctx := cmd.Context()

			for _, engine := range app.Registry.Engines() {
				info, err := app.Ledger.Model(ctx, engine.ModelID())
				if err != nil {
					return err
				}
				trades, err := app.Ledger.Trades(ctx, engine.ModelID(), 10000)
				if err != nil {
					return err
				}
				valuations, err := app.Ledger.Valuations(ctx, engine.ModelID(), 10000)
				if err != nil {
					return err
				}

				report := performance.Compute(trades, valuations, info.InitialCapital)
				if output.IsJSON() {
					if err := output.JSON(report); err != nil {
						return err
					}
					continue
				}

				output.Info("%s", engine.ModelName())
				if report.TotalTrades == 0 {
					output.Dim("  no trades yet")
					continue
				}
				output.Printf("  trades    %d (%d buys, %d sells)\n", report.TotalTrades, report.Buys, report.Sells)
				if report.Sells > 0 {
					output.Printf("  win rate  %.1f%% (%d/%d)\n", report.WinRate, report.WinningTrades, report.Sells)
					if math.IsInf(report.ProfitFactor, 1) {
						output.Printf("  profit factor  no losing trades\n")
					} else if report.ProfitFactor > 0 {
						output.Printf("  profit factor  %.2f\n", report.ProfitFactor)
					}
					output.Printf("  realized  %s  best %s  worst %s\n",
						FormatPnL(report.NetRealized), FormatPnL(report.BestTrade), FormatPnL(report.WorstTrade))
				}
				output.Printf("  fees paid %s\n", FormatCNY(report.TotalFees))
				output.Printf("  return    %s  max drawdown %.2f%%\n",
					FormatPercent(report.ReturnPct), report.MaxDrawdown)
			}
			return nil
		},
	}
}
