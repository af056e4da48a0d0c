package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/app"
	"github.com/shrimpsizemoose/markbook/internal/models"
)

var (
	recalcFile      string
	recalcPrecision int
	recalcEncoding  string
	recalcBaseline  string
	recalcJSON      bool
	recalcStored    string

	gpaJSON bool
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate a markbook and print the final grade",
	Long: `Recalculate a markbook from a YAML file (--file) or from the database (--course).

The baseline is the grade the markbook showed before any edit; when given,
the change against it is printed next to the new grade.`,
	RunE: runRecalc,
}

var gpaCmd = &cobra.Command{
	Use:   "gpa",
	Short: "Average the final marks of every stored course",
	Long: `Recalculate every course in the database and average their final marks.

Courses without a grade are listed but left out of the average.`,
	Args: cobra.NoArgs,
	RunE: runGPA,
}

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Store markbook YAML files in the configured database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	recalcCmd.Flags().StringVarP(&recalcFile, "file", "f", "", "markbook YAML file")
	recalcCmd.Flags().StringVar(&recalcStored, "course", "", "recalculate a course stored in the database")
	recalcCmd.Flags().IntVarP(&recalcPrecision, "precision", "p", 0, "decimal places of the final grade (2 or 3)")
	recalcCmd.Flags().StringVarP(&recalcEncoding, "encoding", "e", "", "depth encoding: labelled or indented")
	recalcCmd.Flags().StringVarP(&recalcBaseline, "baseline", "b", "", "grade shown before editing, e.g. 87.50%")
	recalcCmd.Flags().BoolVar(&recalcJSON, "json", false, "print the full result as JSON")
	recalcCmd.MarkFlagsMutuallyExclusive("file", "course")
	recalcCmd.MarkFlagsOneRequired("file", "course")

	gpaCmd.Flags().BoolVar(&gpaJSON, "json", false, "print the summary as JSON")
}

func readMarkbook(path string) (*models.Markbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading markbook file: %w", err)
	}

	var mb models.Markbook
	if err := yaml.Unmarshal(data, &mb); err != nil {
		return nil, fmt.Errorf("error parsing markbook file %s: %w", path, err)
	}
	if err := validator.New().Struct(mb); err != nil {
		return nil, fmt.Errorf("invalid markbook file %s: %w", path, err)
	}
	return &mb, nil
}

func runRecalc(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if recalcPrecision != 0 {
		config.Markbook.RoundingPrecision = recalcPrecision
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if recalcFile != "" {
		// a file run never needs the database
		config.Database.DSN = ""
	}

	service, err := app.NewServiceFromConfig(config)
	if err != nil {
		return err
	}
	defer service.Close()

	ctx := context.Background()

	var result *models.FinalResult
	if recalcStored != "" {
		const session = "cli"
		if recalcBaseline != "" {
			if _, err := service.CaptureBaseline(ctx, session, recalcStored, recalcBaseline); err != nil {
				return err
			}
		}
		result, err = service.RecalculateStored(ctx, session, recalcStored)
	} else {
		var mb *models.Markbook
		mb, err = readMarkbook(recalcFile)
		if err != nil {
			return err
		}

		encoding := recalcEncoding
		if encoding == "" {
			encoding = mb.DepthEncoding
		}
		baseline := recalcBaseline
		if baseline == "" {
			baseline = mb.InitialMark
		}

		session := ""
		if baseline != "" {
			session, err = service.CaptureBaseline(ctx, "", mb.Code, baseline)
			if err != nil {
				return err
			}
		}
		result, err = service.Recalculate(ctx, session, mb.Code, encoding, mb.Rows)
	}
	if err != nil {
		return err
	}

	if recalcJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *models.FinalResult) {
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tMARK\tDENOMINATOR\tWEIGHT\tSTATUS")
	for _, wb := range result.WriteBacks {
		fmt.Fprintf(w, "%s\t%.2f\t%g\t%g\t%s\n", wb.Source, wb.DisplayMark, wb.Denominator, wb.Weight, wb.Status)
	}
	for _, ex := range result.Exclusions {
		fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", ex.Source, ex.Status)
	}
	w.Flush()

	fmt.Fprintln(out, strings.Repeat("-", 40))
	if result.FinalMark == nil {
		fmt.Fprintf(out, "%s: no grade available\n", result.Course)
		return
	}
	line := fmt.Sprintf("%s: %s%%", result.Course, result.FinalMarkText)
	if result.Delta != nil {
		line += fmt.Sprintf(" (%+.*f)", result.Precision, *result.Delta)
	}
	fmt.Fprintln(out, line)
}

func runGPA(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	service, err := app.NewServiceFromConfig(config)
	if err != nil {
		return err
	}
	defer service.Close()

	summary, err := service.Summary(context.Background(), "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if gpaJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tNAME\tMARK")
	for _, c := range summary.Courses {
		mark := "-"
		if c.FinalMark != nil {
			mark = c.FinalMarkText + "%"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Course, c.Name, mark)
	}
	w.Flush()

	fmt.Fprintln(out, strings.Repeat("-", 40))
	if summary.Average == nil {
		fmt.Fprintln(out, "GPA: no grades available")
		return nil
	}
	fmt.Fprintf(out, "GPA: %s%%\n", summary.AverageText)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("no database configured: set database.dsn or MARKBOOK_DATABASE_DSN")
	}

	rowStore, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return err
	}
	defer rowStore.Close()

	for _, path := range args {
		mb, err := readMarkbook(path)
		if err != nil {
			return err
		}
		if err := rowStore.SaveSnapshot(*mb); err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		logger.Info.Printf("Imported %s: %d rows", mb.Code, len(mb.Rows))
	}
	return nil
}
