package cli

import (
	"math"

	"github.com/spf13/cobra"

	"ashare-trader/internal/market"
)

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote [symbols...]",
		Short: "Fetch real-time quotes and indicators",
		Long: `Fetches real-time quotes and derived indicators for the given
6-digit symbols, or for the configured universe when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.initServices(cmd); err != nil {
				return err
			}
			output := NewOutput(cmd)

			symbols := args
			if len(symbols) == 0 {
				symbols = app.Config.Trading.Symbols
			}

			snaps, err := app.Market.Snapshots(cmd.Context(), symbols)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snaps)
			}

			for _, sym := range symbols {
				snap := snaps[sym]
				if snap.Price <= 0 || math.IsNaN(snap.Price) {
					output.Warning("%s (%s): unavailable", sym, market.DisplayName(sym))
					continue
				}

				change := FormatPercent(snap.ChangePct)
				if snap.ChangePct >= 0 {
					change = output.Green(change)
				} else {
					change = output.Red(change)
				}
				output.Printf("%s (%s): %s %s\n", sym, snap.Name, FormatCNY(snap.Price), change)

				if !snap.Indeterminate() {
					output.Dim("  MA5 %.2f  MA10 %.2f  MA20 %.2f  RSI %.1f  MACD %.2f",
						snap.MA5, snap.MA10, snap.MA20, snap.RSI14, snap.MACD)
				} else {
					output.Dim("  indicators unavailable")
				}
			}
			return nil
		},
	}
}
