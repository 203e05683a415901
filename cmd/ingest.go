package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mohammad-safakhou/regfaq/config"
	"github.com/mohammad-safakhou/regfaq/internal/ingest"
	srv "github.com/mohammad-safakhou/regfaq/internal/server"
	"github.com/spf13/cobra"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var docPath string
	var text string
	var notes string
	var cmd = &cobra.Command{
		Use:   "ingest",
		Short: "Run one regulatory document through the ingestion pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a, err := srv.Build(cfg)
			if err != nil {
				return err
			}

			in := ingest.Input{Text: text, Context: notes}
			if docPath != "" {
				data, err := os.ReadFile(docPath)
				if err != nil {
					return fmt.Errorf("reading document: %w", err)
				}
				in.Document = data
			}

			result, err := a.IngestDocument(context.Background(), in)
			if err != nil {
				return err
			}
			fmt.Printf("source document: %s\n", result.SourceDocumentID)
			fmt.Printf("accepted: %d\n", result.AcceptedCount)
			for _, r := range result.Rejected {
				fmt.Printf("rejected: %s (%s)\n", r.Question, r.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&docPath, "file", "", "path to a regulatory document (pdf or html)")
	cmd.Flags().StringVar(&text, "text", "", "regulatory text to ingest")
	cmd.Flags().StringVar(&notes, "context", "", "additional context for generation")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
