package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/history"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// withHistory opens the history for the duration of fn.
func (a *App) withHistory(fn func(h *history.History) error) error {
	h, closeFn, err := a.OpenHistory()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(h)
}

func load(h *history.History, starred bool) ([]identity.Record, error) {
	if starred {
		return h.Starred()
	}
	return h.List()
}

func (a *App) listCmd() *cobra.Command {
	var asJSON, starred bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved identities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.withHistory(func(h *history.History) error {
				records, err := load(h, starred)
				if err != nil {
					return fmt.Errorf("list: %w", err)
				}

				if asJSON {
					if records == nil {
						records = []identity.Record{}
					}
					return printJSON(a.Stdout, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(a.Stdout, "no saved identities")
					return nil
				}
				return printRecordTable(a.Stdout, records)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVar(&starred, "starred", false, "only starred records")
	return cmd
}

func (a *App) starCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "star <id>",
		Short: "Toggle the star on a saved identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.withHistory(func(h *history.History) error {
				r, err := h.ToggleStar(args[0])
				if err != nil {
					return fmt.Errorf("star: %w", err)
				}
				if r.Starred {
					fmt.Fprintf(a.Stdout, "starred %s\n", r.ID)
				} else {
					fmt.Fprintf(a.Stdout, "unstarred %s\n", r.ID)
				}
				return nil
			})
		},
	}
}

func (a *App) forgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Delete a saved identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.withHistory(func(h *history.History) error {
				if err := h.Remove(args[0]); err != nil {
					return fmt.Errorf("forget: %w", err)
				}
				fmt.Fprintf(a.Stdout, "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *App) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved identity",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.withHistory(func(h *history.History) error {
				n, err := h.Clear()
				if err != nil {
					return fmt.Errorf("clear: %w", err)
				}
				fmt.Fprintf(a.Stdout, "deleted %d records\n", n)
				return nil
			})
		},
	}
}

func (a *App) exportCmd() *cobra.Command {
	var (
		format  string
		out     string
		starred bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved identities",
		Long: `Export the history as json, csv, excel, pdf or parquet. Without --out the
file is written to address-history-<date>.<ext> in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return a.withHistory(func(h *history.History) error {
				records, err := load(h, starred)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return a.writeRecords(records, f, a.outputPath(f, out, false))
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv, excel, pdf or parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	cmd.Flags().BoolVar(&starred, "starred", false, "only starred records")
	return cmd
}
