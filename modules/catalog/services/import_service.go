package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/eventbus"
)

var tracer = otel.Tracer("semi-catalog-import")

// ArtifactStore holds uploaded files until they are imported.
type ArtifactStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// ImportSummary describes one finished import.
type ImportSummary struct {
	Rows                 int           `json:"rows"`
	Skipped              int           `json:"skipped"`
	Categories           int           `json:"categories"`
	CategoriesCreated    int           `json:"categoriesCreated"`
	SubCategories        int           `json:"subCategories"`
	SubCategoriesCreated int           `json:"subCategoriesCreated"`
	PartsCreated         int           `json:"partsCreated"`
	PartsUpdated         int           `json:"partsUpdated"`
	Chunks               int           `json:"chunks"`
	Duration             time.Duration `json:"duration"`
}

// ImportService runs the import pipeline: read, normalize, reconcile categories,
// reconcile subcategories, upsert parts. Imports are serialized.
type ImportService struct {
	artifacts     ArtifactStore
	publisher     eventbus.EventBus
	categories    *CategoryReconciler
	subCategories *SubCategoryReconciler
	parts         *PartUpserter

	mu sync.Mutex
}

func NewImportService(store Store, artifacts ArtifactStore, publisher eventbus.EventBus, chunkSize int) *ImportService {
	return &ImportService{
		artifacts:     artifacts,
		publisher:     publisher,
		categories:    NewCategoryReconciler(store),
		subCategories: NewSubCategoryReconciler(store),
		parts:         NewPartUpserter(store, chunkSize),
	}
}

// ImportUpload stores r as an artifact and imports it. The import is not bound to
// ctx's cancellation: once started it runs to completion or failure.
func (s *ImportService) ImportUpload(ctx context.Context, name string, format Format, r io.Reader) (*ImportSummary, error) {
	ctx = context.WithoutCancel(ctx)
	path, err := s.artifacts.Save(ctx, name, r)
	if err != nil {
		return nil, err
	}
	return s.ImportArtifact(ctx, path, format)
}

// ImportArtifact imports a stored artifact. The artifact is removed after a
// successful import and after a read failure; it is kept when writing fails.
func (s *ImportService) ImportArtifact(ctx context.Context, path string, format Format) (*ImportSummary, error) {
	logger := composables.UseLogger(ctx)

	records, err := s.readArtifact(ctx, path, format)
	if err != nil {
		logger.WithError(err).Error("Error reading import file")
		s.removeArtifact(logger, path)
		s.publish(ctx, &ImportFinishedEvent{Err: err})
		return nil, err
	}

	summary, err := s.ImportRecords(ctx, records)
	if err != nil {
		return nil, err
	}
	s.removeArtifact(logger, path)
	return summary, nil
}

func (s *ImportService) readArtifact(ctx context.Context, path string, format Format) ([]RawRecord, error) {
	_, span := tracer.Start(ctx, "import.read", trace.WithAttributes(attribute.String("import.format", string(format))))
	defer span.End()

	f, err := s.artifacts.Open(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer f.Close()

	records, err := ReadRecords(f, format)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("import.rows", len(records)))
	return records, nil
}

func (s *ImportService) removeArtifact(logger *logrus.Entry, path string) {
	if err := s.artifacts.Remove(path); err != nil {
		logger.WithError(err).Warn("failed to remove import artifact")
	}
}

func (s *ImportService) publish(ctx context.Context, e *ImportFinishedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishE(e); err != nil && !errors.Is(err, eventbus.ErrNoSubscribers) {
		composables.UseLogger(ctx).WithError(err).Warn("import event handler failed")
	}
}

// ImportRecords runs the pipeline over already parsed records.
func (s *ImportService) ImportRecords(ctx context.Context, records []RawRecord) (*ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	summary := &ImportSummary{Rows: len(records)}
	err := s.run(ctx, records, summary)
	summary.Duration = time.Since(start)
	s.publish(ctx, &ImportFinishedEvent{Summary: summary, Err: err})

	logger := composables.UseLogger(ctx).WithField("duration", summary.Duration.String())
	if err != nil {
		logger.WithError(err).Error("Error saving to database")
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"parts_created": summary.PartsCreated,
		"parts_updated": summary.PartsUpdated,
	}).Info("CSV Data Imported Successfully")
	return summary, nil
}

func (s *ImportService) run(ctx context.Context, records []RawRecord, summary *ImportSummary) error {
	ctx, span := tracer.Start(ctx, "import.run")
	defer span.End()
	logger := composables.UseLogger(ctx)

	logger.Infof("Processing %d rows...", len(records))
	rows, skipped := NormalizeRows(records, logger)
	summary.Skipped = skipped
	summary.Categories = len(DistinctCategories(rows))
	summary.SubCategories = len(DistinctSubCategories(rows))
	logger.Infof("Found %d unique categories and %d unique subcategories", summary.Categories, summary.SubCategories)

	categoryIDs, created, err := s.reconcileCategories(ctx, rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	summary.CategoriesCreated = created

	subCategoryIDs, created, err := s.reconcileSubCategories(ctx, rows, categoryIDs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	summary.SubCategoriesCreated = created

	res, err := s.upsertParts(ctx, rows, subCategoryIDs)
	summary.PartsCreated = res.Created
	summary.PartsUpdated = res.Updated
	summary.Chunks = res.Chunks
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *ImportService) reconcileCategories(ctx context.Context, rows []Row) (CategoryIDs, int, error) {
	ctx, span := tracer.Start(ctx, "import.categories")
	defer span.End()
	ids, created, err := s.categories.Reconcile(ctx, rows)
	span.SetAttributes(attribute.Int("import.categories.created", created))
	return ids, created, err
}

func (s *ImportService) reconcileSubCategories(ctx context.Context, rows []Row, categories CategoryIDs) (SubCategoryIDs, int, error) {
	ctx, span := tracer.Start(ctx, "import.subcategories")
	defer span.End()
	ids, created, err := s.subCategories.Reconcile(ctx, rows, categories)
	span.SetAttributes(attribute.Int("import.subcategories.created", created))
	return ids, created, err
}

func (s *ImportService) upsertParts(ctx context.Context, rows []Row, subCategories SubCategoryIDs) (UpsertResult, error) {
	ctx, span := tracer.Start(ctx, "import.parts")
	defer span.End()
	logger := composables.UseLogger(ctx)

	total := s.parts.ChunkCount(len(rows))
	logger.Infof("Processing parts in %d batches of %d", total, s.parts.ChunkSize())
	res, err := s.parts.Upsert(ctx, rows, subCategories, func(chunk, total, _ int) {
		recordChunk()
		logger.Infof("Processed batch %d of %d", chunk, total)
	})
	span.SetAttributes(
		attribute.Int("import.parts.created", res.Created),
		attribute.Int("import.parts.updated", res.Updated),
		attribute.Int("import.chunks", res.Chunks),
	)
	if err != nil {
		return res, err
	}
	logger.Info("All parts processed successfully")
	return res, nil
}

// Preview reports what importing records would touch without writing anything.
func (s *ImportService) Preview(ctx context.Context, records []RawRecord) *ImportSummary {
	rows, skipped := NormalizeRows(records, composables.UseLogger(ctx))
	return &ImportSummary{
		Rows:          len(records),
		Skipped:       skipped,
		Categories:    len(DistinctCategories(rows)),
		SubCategories: len(DistinctSubCategories(rows)),
		Chunks:        s.parts.ChunkCount(len(rows)),
	}
}
