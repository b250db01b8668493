package main

import (
	"github.com/spf13/cobra"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/internal/dashboard/services"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Hitung breakdown appointment test/paket untuk satu rentang tanggal",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rng models.DateRange
		rng.Start, _ = cmd.Flags().GetString("start")
		rng.End, _ = cmd.Flags().GetString("end")

		store, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		svc := services.NewBreakdownService(store, cfg.Location(), log.Named("breakdown"))
		out := services.NewResolver(svc, nil).Resolve(cmd.Context(), rng)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	breakdownCmd.Flags().String("start", "", "tanggal awal YYYY-MM-DD (opsional)")
	breakdownCmd.Flags().String("end", "", "tanggal akhir YYYY-MM-DD, inklusif (opsional)")
}
