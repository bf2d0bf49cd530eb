package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/sergev/flux2hfe/decoder"
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the decoding algorithms",
		Long: "List the registered decoding algorithms.\n" +
			"Any name of the form nco[INTEGRAL,ERROR] selects an NCO loop with those divisors.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), renderAlgorithms(decoder.Default()))
		},
	}
}

// renderAlgorithms returns a table of the registered strategies.
func renderAlgorithms(registry *decoder.Registry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Kind", "Parameters"})

	for _, s := range registry.Strategies() {
		kind, params := describeStrategy(s)
		tw.AppendRow(table.Row{s.Name(), kind, params})
	}
	tw.AppendFooter(table.Row{decoder.NCOPrefix + "I,E]", "nco", "any positive divisors"})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func describeStrategy(s decoder.Strategy) (kind, params string) {
	switch v := s.(type) {
	case decoder.Fixed:
		return "fixed", "nominal period, no tracking"
	case decoder.PLL:
		p := v.Params()
		return "pll", fmt.Sprintf("clock ±%g%%, period %g%%, phase %g%%, sync %d",
			p.ClockMaxAdj, p.PeriodAdjPct, p.PhaseAdjPct, p.SyncZeros)
	case decoder.NCO:
		return "nco", fmt.Sprintf("integral 1/%d, error 1/%d", v.IntegralDiv, v.ErrorDiv)
	default:
		return "custom", ""
	}
}
