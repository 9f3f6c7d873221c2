package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/amqp"
	"expensetracker/internal/charts"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

const (
	CategoryChartFile = "categories.png"
	MonthlyChartFile  = "monthly.png"
)

// Source is what the worker reads. It talks to the store directly: the
// service cache lives in another process and would be stale here.
type Source interface {
	ledger.TransactionLister
	ledger.MonthlyReader
}

// ChartWorker keeps the rendered chart files in dir up to date.
type ChartWorker struct {
	source   Source
	renderer charts.Renderer
	dir      string
	logger   *log.Logger
}

func NewChartWorker(source Source, renderer charts.Renderer, dir string, logger *log.Logger) *ChartWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ChartWorker{
		source:   source,
		renderer: renderer,
		dir:      dir,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionEvent re-renders after any committed change. The event
// only says that something changed; both charts are rebuilt from the store.
func (w *ChartWorker) HandleTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		log.FieldEventKind, ev.Kind,
		log.FieldTransactionID, ev.TransactionID,
		"event_id", ev.EventID)

	return w.RenderAll(ctx)
}

// RenderAll renders both charts concurrently. When there is nothing to plot
// the stale file is removed so readers see "no data".
func (w *ChartWorker) RenderAll(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create chart directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := w.source.List(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		img, err := w.renderer.CategoryPie(aggregate.CategoryExpenseTotals(txs))
		return w.store(ctx, CategoryChartFile, img, err)
	})

	g.Go(func() error {
		months, err := w.source.MonthlyIncomeVsExpense(ctx)
		if err != nil {
			return fmt.Errorf("monthly income vs expense: %w", err)
		}
		img, err := w.renderer.MonthlyBars(months)
		return w.store(ctx, MonthlyChartFile, img, err)
	})

	return g.Wait()
}

func (w *ChartWorker) store(ctx context.Context, name string, img []byte, renderErr error) error {
	path := filepath.Join(w.dir, name)

	if errors.Is(renderErr, charts.ErrNoData) {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale chart %s: %w", name, err)
		}
		w.logger.InfoContext(ctx, "No data to chart", "file", name)
		return nil
	}
	if renderErr != nil {
		return renderErr
	}

	// Write then rename so the HTTP side never reads a half-written image.
	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp chart: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		return fmt.Errorf("write chart %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close chart %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish chart %s: %w", name, err)
	}

	w.logger.InfoContext(ctx, "Chart rendered", "file", name, "bytes", len(img))
	return nil
}
