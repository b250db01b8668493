package main

import (
	"context"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/services"
	manajemenServices "github.com/c14220110/klinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Field waktu yang diubah menjadi instant native saat seeding.
var timestampFields = []string{"createdAt", "date", "paidAt", "updatedAt"}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Masukkan appointment dari file JSON ke koleksi appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		keep, _ := cmd.Flags().GetBool("keep-strings")

		store, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		n, err := seedFile(cmd.Context(), store, path, keep)
		if err != nil {
			return err
		}
		log.Info("seed selesai", zap.Int("count", n))
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Buat akun manajemen untuk login dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		nama, _ := cmd.Flags().GetString("nama")

		store, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		m, err := manajemenServices.NewManagementService(store).CreateManagement(cmd.Context(), username, password, nama)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "akun %s dibuat (id %s)\n", m.Username, m.ID)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "", "file JSON berisi array dokumen appointment")
	seedCmd.Flags().Bool("keep-strings", false, "simpan timestamp sebagai string (meniru data legacy)")
	_ = seedCmd.MarkFlagRequired("file")

	createAdminCmd.Flags().String("username", "", "username login")
	createAdminCmd.Flags().String("password", "", "password login")
	createAdminCmd.Flags().String("nama", "", "nama tampilan")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func seedFile(ctx context.Context, store docstore.Inserter, path string, keepStrings bool) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, r := range raw {
		if _, err := store.Insert(ctx, services.AppointmentsCollection, toDocument(r, keepStrings)); err != nil {
			return i, err
		}
	}
	return len(raw), nil
}

// toDocument memakai "_id" atau "id" sebagai identitas dan, kecuali keepStrings,
// mengubah timestamp RFC 3339 menjadi time.Time.
func toDocument(raw map[string]any, keepStrings bool) docstore.Document {
	d := docstore.Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" || k == "id" {
			if s, ok := v.(string); ok {
				d.ID = s
				continue
			}
		}
		d.Fields[k] = v
	}
	if keepStrings {
		return d
	}
	for _, f := range timestampFields {
		s, ok := d.Fields[f].(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			d.Fields[f] = t
		}
	}
	return d
}
