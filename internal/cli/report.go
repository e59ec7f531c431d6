package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/loopbuild/internal/config"
	"github.com/aretw0/loopbuild/internal/presentation/tui"
	"github.com/aretw0/loopbuild/pkg/domain"
	"github.com/aretw0/loopbuild/pkg/ports"
)

// withReportStore opens the report store of the run file and calls fn with it.
func withReportStore(configPath string, fn func(ports.ReportStore) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, _, closer, err := createReportStore(cfg.Report)
	if err != nil {
		return err
	}
	defer closer.Close()
	if store == nil {
		return fmt.Errorf("report.driver is %q, no reports are kept: %w", cfg.Report.Driver, domain.ErrInvalidRequest)
	}
	return fn(store)
}

// ListReports prints the stored run ids, one per line.
func ListReports(ctx context.Context, configPath string, w io.Writer) error {
	return withReportStore(configPath, func(store ports.ReportStore) error {
		ids, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	})
}

// ShowReport prints one stored report as rendered markdown, or as JSON.
func ShowReport(ctx context.Context, configPath, runID string, asJSON bool, w io.Writer) error {
	return withReportStore(configPath, func(store ports.ReportStore) error {
		report, err := store.Load(ctx, runID)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return printReport(w, report, tui.RendererFor(stdoutFile(w)))
	})
}

// DeleteReport removes a stored report.
func DeleteReport(ctx context.Context, configPath, runID string) error {
	return withReportStore(configPath, func(store ports.ReportStore) error {
		return store.Delete(ctx, runID)
	})
}
