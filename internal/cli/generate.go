package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zarlcorp/zpersona/internal/batch"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/mail"
)

func (a *App) countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported countries",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return printCountries(a.Stdout, identity.SupportedCountries())
		},
	}
}

func (a *App) emailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email",
		Short: "Print a random disposable email address",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(a.Stdout, mail.NewGenerator(nil).Email())
		},
	}
}

func (a *App) identityCmd() *cobra.Command {
	var (
		req    batch.Request
		asJSON bool
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Generate one identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Country == "" {
				req.Country = a.cfg.DefaultCountry
			}

			rec, err := a.Engine().Single(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(a.Stdout, rec); err != nil {
					return err
				}
			} else {
				printRecord(a.Stdout, rec)
			}

			if save {
				return a.save(rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Country, "country", "c", "", "country code (default from config)")
	cmd.Flags().BoolVarP(&req.IncludeAddress, "address", "a", false, "look up a nearby address")
	cmd.Flags().BoolVarP(&req.IncludeEmail, "email", "e", false, "attach a disposable email address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVarP(&save, "save", "s", false, "save to history")
	return cmd
}

func (a *App) batchCmd() *cobra.Command {
	var (
		count     int
		countries []string
		noAddress bool
		email     bool
		format    string
		out       string
		save      bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate many identities and export them",
		Long: `Generate between 1 and 100 identities, each for a country picked at
random from --countries. Records whose providers fail fall back to local
data. JSON and CSV go to stdout unless --out is set; other formats are
written to a dated file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if len(countries) == 0 {
				countries = []string{a.cfg.DefaultCountry}
			}
			for i, c := range countries {
				countries[i] = strings.ToUpper(strings.TrimSpace(c))
			}

			opts := batch.Options{
				Count:          count,
				Countries:      countries,
				IncludeAddress: !noAddress,
				IncludeEmail:   email,
			}
			if !quiet {
				opts.Progress = func(done, total int) {
					fmt.Fprintf(a.Stderr, "\rgenerating %d/%d", done, total)
				}
			}

			records, genErr := a.Engine().Generate(cmd.Context(), opts)
			if opts.Progress != nil && len(records) > 0 {
				fmt.Fprintln(a.Stderr)
			}

			var verr *batch.ValidationError
			if errors.As(genErr, &verr) || (genErr != nil && len(records) == 0) {
				return genErr
			}

			// a cancelled batch still writes what it produced
			if err := a.writeRecords(records, f, a.outputPath(f, out, true)); err != nil {
				return err
			}
			if save && len(records) > 0 {
				if err := a.save(records...); err != nil {
					return err
				}
			}
			return genErr
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of identities (1-100)")
	cmd.Flags().StringSliceVarP(&countries, "countries", "c", nil, "comma separated country codes (default from config)")
	cmd.Flags().BoolVar(&noAddress, "no-address", false, "skip address lookup")
	cmd.Flags().BoolVarP(&email, "email", "e", false, "attach disposable email addresses")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, csv, excel, pdf, parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout`)
	cmd.Flags().BoolVarP(&save, "save", "s", false, "save to history")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide progress")
	return cmd
}

func (a *App) writeRecords(records []identity.Record, f export.Format, out string) error {
	data, err := export.Encoder{Now: a.now}.Encode(records, f)
	if err != nil {
		return err
	}
	path, err := a.writeOutput(data, out)
	if err != nil {
		return err
	}
	if path != "" {
		okColor.Fprintf(a.Stderr, "wrote %d records to %s\n", len(records), path)
	}
	return nil
}

func (a *App) save(records ...identity.Record) error {
	h, closeFn, err := a.OpenHistory()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := h.Add(records...); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	okColor.Fprintf(a.Stderr, "saved %d\n", len(records))
	return nil
}
