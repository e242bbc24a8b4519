package worker

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"
)

// SummaryReader is the part of the store the worker needs.
type SummaryReader interface {
	GetSummary(ctx context.Context, id int64) (core.Summary, error)
}

// SummarySyncWorker copies refreshed summaries from the store to a spreadsheet.
type SummarySyncWorker struct {
	store  SummaryReader
	sheets sheets.SummaryWriter
	logger *log.Logger
}

func NewSummarySyncWorker(store SummaryReader, sheets sheets.SummaryWriter, logger *log.Logger) *SummarySyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SummarySyncWorker{
		store:  store,
		sheets: sheets,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSummaryRefreshed appends the stored summary named by msg. The store is
// read again so the row reflects the latest upsert, not the event payload.
func (w *SummarySyncWorker) HandleSummaryRefreshed(ctx context.Context, msg *amqp.SummaryRefreshedMessage) error {
	w.logger.InfoContext(ctx, "Processing summary event",
		log.FieldSummaryID, msg.SummaryID,
		log.FieldUserID, msg.UserID,
		log.FieldPeriod, msg.Period().String())

	summary, err := w.store.GetSummary(ctx, msg.SummaryID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Summary deleted before sync, skipping", log.FieldSummaryID, msg.SummaryID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get summary %d: %w", msg.SummaryID, err)
	}

	ref, err := w.sheets.AppendSummary(ctx, summary)
	if err != nil {
		return fmt.Errorf("append summary %d to sheets: %w", summary.ID, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced summary",
		log.FieldSummaryID, summary.ID,
		"sheets_ref", ref,
		log.FieldTotalSpent, summary.TotalSpent.String())
	return nil
}

// Run consumes summary events until ctx is cancelled.
func (w *SummarySyncWorker) Run(ctx context.Context, events *amqp.Client) error {
	return events.ConsumeSummaryRefreshed(ctx, w.HandleSummaryRefreshed)
}
