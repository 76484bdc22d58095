package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/internal/config"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/internal/logging"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/audit"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/ingest"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/model"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/notify"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/orchestrator"
	"github.com/hatauchi-tech/chuo-fukushikai-nakano-create-shift-app/pkg/solve"
)

// App holds the dependencies shared across subcommands.
type App struct {
	cfg        *config.Config
	auditStore audit.Store
	logger     *zap.Logger
	ctx        context.Context
	runID      string
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roster",
		Short: "Monthly care-facility staff shift roster engine",
		Long:  `Generates a monthly staff roster from CSV inputs via CP-SAT constraint solving, with pre-flight diagnostics and per-group fallback.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
			if app != nil && app.auditStore != nil {
				if closer, ok := app.auditStore.(*audit.PostgresStore); ok {
					closer.Close()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initApp() error {
	var err error
	app = &App{ctx: context.Background(), runID: uuid.NewString()}

	app.logger, err = logging.InitLogger(app.runID)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.logger.Info("starting roster engine", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if app.cfg.AuditDatabaseURL != "" {
		store, err := audit.NewPostgresStore(app.ctx, app.cfg.AuditDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		if err := store.RunMigrations(app.ctx); err != nil {
			return fmt.Errorf("failed to run audit migrations: %w", err)
		}
		app.auditStore = store
	}

	return nil
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <YYYYMM> <staff.csv> <holidays.csv> <settings.csv>",
		Short: "Generate a roster for the given target month from three input CSVs",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			return runGenerate(args[0], args[1], args[2], args[3], outDir)
		},
	}
	cmd.Flags().String("out", "", "output directory (defaults to config outputDir)")
	return cmd
}

func runGenerate(yyyymm, staffPath, holidaysPath, settingsPath, outDirFlag string) error {
	year, month, err := parseYYYYMM(yyyymm)
	if err != nil {
		return err
	}

	staffFile, err := os.Open(staffPath)
	if err != nil {
		return fmt.Errorf("failed to open staff csv: %w", err)
	}
	defer staffFile.Close()
	staff, err := ingest.Staff(staffFile, nil)
	if err != nil {
		return fmt.Errorf("failed to parse staff csv: %w", err)
	}

	holidaysFile, err := os.Open(holidaysPath)
	if err != nil {
		return fmt.Errorf("failed to open holidays csv: %w", err)
	}
	defer holidaysFile.Close()
	holidayRequests, err := ingest.Holidays(holidaysFile, nil)
	if err != nil {
		return fmt.Errorf("failed to parse holidays csv: %w", err)
	}

	settingsFile, err := os.Open(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to open settings csv: %w", err)
	}
	defer settingsFile.Close()
	settingsRows, err := ingest.Settings(settingsFile, nil)
	if err != nil {
		return fmt.Errorf("failed to parse settings csv: %w", err)
	}

	rc := orchestrator.RunContext{
		Year:                 year,
		Month:                month,
		PartialOutputEnabled: app.cfg.PartialOutputEnabled,
		HardPinTopPriority:   app.cfg.HardPinTopPriority,
		SolverTimeLimit:      app.cfg.SolverTimeLimit,
		SolverWorkers:        int32(app.cfg.SolverWorkers),
	}

	solver := solve.CPSATSolver{}
	outcome := orchestrator.Run(app.ctx, rc, staff, holidayRequests, settingsRows, solver, app.logger)

	outDir := outDirFlag
	if outDir == "" {
		outDir = app.cfg.OutputDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(outcome.Roster) > 0 {
		if err := writeRosterCSV(filepath.Join(outDir, fmt.Sprintf("shift_result_%s.csv", yyyymm)), outcome.Roster); err != nil {
			return fmt.Errorf("failed to write roster csv: %w", err)
		}
	}
	if err := writeDiagnosticReport(filepath.Join(outDir, fmt.Sprintf("diagnostic_report_%s.json", yyyymm)), outcome.Report); err != nil {
		return fmt.Errorf("failed to write diagnostic report: %w", err)
	}

	runID := app.runID
	if app.auditStore != nil {
		groupResults := make(map[string]bool, len(outcome.Report.GroupResults))
		for id, g := range outcome.Report.GroupResults {
			groupResults[id] = g.Success
		}
		entry := audit.Entry{
			RunID:        runID,
			Year:         year,
			Month:        month,
			ExitCode:     int(outcome.ExitCode),
			GroupResults: groupResults,
		}
		if err := app.auditStore.RecordRun(app.ctx, entry); err != nil {
			app.logger.Warn("failed to record run history", zap.Error(err))
		}
	}

	if outcome.ExitCode == orchestrator.ExitFullSuccess && !outcome.AnyRelaxedOrFailed && app.cfg.WebhookURL != "" {
		client := notify.NewClient(app.cfg.WebhookURL)
		payload := notify.Payload{
			Action: "importShiftResult",
			Token:  app.cfg.WebhookToken,
			FileID: runID,
			Year:   year,
			Month:  month,
		}
		if err := client.Notify(app.ctx, payload); err != nil {
			app.logger.Warn("notification failed", zap.Error(err))
		}
	}

	app.logger.Info("run complete",
		zap.Int("exit_code", int(outcome.ExitCode)),
		zap.Int("roster_rows", len(outcome.Roster)),
		zap.Bool("any_relaxed_or_failed", outcome.AnyRelaxedOrFailed))

	os.Exit(int(outcome.ExitCode))
	return nil
}

func writeRosterCSV(path string, rows []model.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"confirmed_id", "staff_id", "group", "shift_name", "start_date", "start_time", "end_date", "end_time", "registered_at", "event_id"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, a := range rows {
		record := []string{
			a.ConfirmedID,
			a.StaffID,
			a.Group,
			a.ShiftName,
			a.StartDate.Format("2006-01-02"),
			a.StartTime,
			a.EndDate.Format("2006-01-02"),
			a.EndTime,
			a.RegisteredAt,
			a.CalendarEventID,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

type diagnosticReportJSON struct {
	Errors       []model.Finding               `json:"errors"`
	Warnings     []model.Finding               `json:"warnings"`
	GroupResults map[string]model.GroupOutcome `json:"group_results"`
	StaffIssues  []model.Finding               `json:"staff_issues"`
	Suggestions  []model.Finding               `json:"suggestions"`
}

func writeDiagnosticReport(path string, report *model.DiagnosticReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := diagnosticReportJSON{
		Errors:       report.Errors,
		Warnings:     report.Warnings,
		GroupResults: report.GroupResults,
		StaffIssues:  report.StaffIssues,
		Suggestions:  report.Suggestions,
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseYYYYMM(s string) (year, month int, err error) {
	if len(s) != 6 {
		return 0, 0, fmt.Errorf("target month must be YYYYMM, got %q", s)
	}
	year, err = strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err = strconv.Atoi(s[4:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in %q", s)
	}
	return year, month, nil
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent run history from the audit store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.auditStore == nil {
				return fmt.Errorf("no audit database configured")
			}
			runs, err := app.auditStore.ListRuns(app.ctx, 20)
			if err != nil {
				return fmt.Errorf("failed to list run history: %w", err)
			}
			for _, r := range runs {
				fmt.Printf("%s  %04d-%02d  exit=%d  recorded=%s\n", r.RunID, r.Year, r.Month, r.ExitCode, r.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
