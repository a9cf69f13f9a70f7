package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

func newExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export csv|json",
		Short:     "Export clients as CSV or a full JSON backup",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{formatCSV, formatJSON},
		RunE: func(_ *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			switch args[0] {
			case formatCSV:
				data, err = c.mgr.ExportCSV()
			case formatJSON:
				data, err = json.MarshalIndent(c.mgr.ExportBackup(), "", "  ")
			}
			if err != nil {
				return err
			}
			return c.writeOutput(out, data)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		file string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:       "import csv|json",
		Short:     "Import clients from CSV or restore a JSON backup",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{formatCSV, formatJSON},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			if args[0] == formatCSV {
				return c.importCSV(cmd, data, yes)
			}
			return c.importJSON(cmd, data, yes)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file to import")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) importCSV(cmd *cobra.Command, data []byte, yes bool) error {
	preview, err := c.mgr.PreviewImport(data)
	if err != nil {
		return err
	}
	if !yes {
		ok, err := c.confirm(fmt.Sprintf("Import %d client(s), %d row(s) skipped?", len(preview.Clients), preview.Skipped))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.out, "import cancelled")
			return nil
		}
	}
	res, err := c.mgr.CommitImport(cmd.Context(), data, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "imported %d client(s), skipped %d row(s)\n", len(res.Clients), res.Skipped)
	return nil
}

func (c *cli) importJSON(cmd *cobra.Command, data []byte, yes bool) error {
	var b models.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	if b.Clients == nil {
		return manager.ErrInvalidBackup
	}
	if !yes {
		ok, err := c.confirm(fmt.Sprintf("Replace all data with %d client(s) from backup?", len(b.Clients)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.out, "restore cancelled")
			return nil
		}
	}
	if err := c.mgr.RestoreBackup(cmd.Context(), b, true); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "restored %d client(s)\n", len(b.Clients))
	return nil
}
