package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/loyverse"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/staging"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/sync"
)

// Pipeline wires the extract and insert phases together. Each phase records a
// SyncRun report and can run as a separate invocation; the staging store is
// the hand-off between them.
type Pipeline struct {
	logger    *logger.Logger
	store     *staging.Store
	extractor *loyverse.Extractor
	upserter  *sync.Upserter
	db        *database.Database
	publisher *events.Publisher
}

func New(logger *logger.Logger, store *staging.Store, extractor *loyverse.Extractor,
	upserter *sync.Upserter, db *database.Database, publisher *events.Publisher) *Pipeline {
	return &Pipeline{
		logger:    logger,
		store:     store,
		extractor: extractor,
		upserter:  upserter,
		db:        db,
		publisher: publisher,
	}
}

type ExtractOptions struct {
	// SaveRaw also stages the merged raw items under the raw_ prefix.
	SaveRaw bool
	// Flush clears the staging store before writing.
	Flush bool
}

// Extract pulls the Loyverse catalog, flattens it and stages the records.
func (p *Pipeline) Extract(ctx context.Context, opts ExtractOptions) (*models.SyncRun, error) {
	run, err := p.db.StartRun(models.PhaseExtract)
	if err != nil {
		return nil, err
	}

	items, err := p.extractor.FetchCatalog(ctx)
	if err != nil {
		return run, p.fail(ctx, run, fmt.Errorf("extract: %w", err))
	}
	records := loyverse.Flatten(items)

	if opts.Flush {
		if err := p.store.Flush(ctx); err != nil {
			return run, p.fail(ctx, run, err)
		}
	}

	if err := p.store.PutRecords(ctx, records); err != nil {
		return run, p.fail(ctx, run, err)
	}

	if opts.SaveRaw {
		raw := make(map[string]interface{}, len(items))
		for _, item := range items {
			raw[item.ID] = item
		}
		if err := p.store.PutRaw(ctx, staging.RawPrefix, raw); err != nil {
			return run, p.fail(ctx, run, err)
		}
	}

	run.ItemCount = len(items)
	run.RecordCount = len(records)
	run.Status = models.StatusCompleted
	if err := p.db.FinishRun(run); err != nil {
		return run, err
	}

	p.publish(ctx, events.TypeSyncCompleted, run)
	p.logger.Info("Extract run %s staged %d records from %d items", run.ID, len(records), len(items))
	return run, nil
}

// Insert reads staged records back and upserts them into WooCommerce. A run
// with per-entity failures finishes as PARTIAL and the aggregated error is
// returned for the caller's exit policy.
func (p *Pipeline) Insert(ctx context.Context) (*models.SyncRun, error) {
	run, err := p.db.StartRun(models.PhaseInsert)
	if err != nil {
		return nil, err
	}

	records, err := p.store.Records(ctx)
	if err != nil {
		return run, p.fail(ctx, run, err)
	}

	started := time.Now()
	_, report := p.upserter.Run(ctx, records)
	p.logger.Info("Upsert finished in %s", time.Since(started))

	run.RecordCount = len(records)
	run.Status = models.StatusCompleted
	for _, failure := range report.Failures {
		run.Failures = append(run.Failures, models.SyncFailure{
			EntityType: failure.EntityType,
			Key:        failure.Key,
			Reason:     failure.Reason,
		})
	}
	if report.Failed() {
		run.Status = models.StatusPartial
		reason := report.Err().Error()
		run.Error = &reason
	}
	if err := p.db.FinishRun(run); err != nil {
		return run, err
	}

	if report.Failed() {
		p.publish(ctx, events.TypeSyncFailed, run)
		return run, report.Err()
	}
	p.publish(ctx, events.TypeSyncCompleted, run)
	return run, nil
}

// Run executes both phases back to back.
func (p *Pipeline) Run(ctx context.Context, opts ExtractOptions) error {
	if _, err := p.Extract(ctx, opts); err != nil {
		return err
	}
	_, err := p.Insert(ctx)
	return err
}

func (p *Pipeline) fail(ctx context.Context, run *models.SyncRun, cause error) error {
	run.Status = models.StatusFailed
	reason := cause.Error()
	run.Error = &reason
	if err := p.db.FinishRun(run); err != nil {
		p.logger.Error("Failed to record failed run %s: %v", run.ID, err)
	}
	p.publish(ctx, events.TypeSyncFailed, run)
	return cause
}

func (p *Pipeline) publish(ctx context.Context, eventType string, run *models.SyncRun) {
	if p.publisher == nil {
		return
	}
	err := p.publisher.Publish(ctx, events.Event{
		Type:  eventType,
		RunID: run.ID,
		Phase: string(run.Phase),
		Data: map[string]interface{}{
			"status":       run.Status,
			"item_count":   run.ItemCount,
			"record_count": run.RecordCount,
			"failures":     len(run.Failures),
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish %s event: %v", eventType, err)
	}
}
