package worker

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/queue"
	"github.com/pulse-reports/backend/pkg/storage"
)

// ExportStore is the export persistence the processor needs.
type ExportStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReportExport, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkReady(ctx context.Context, id uuid.UUID, objectKey string, rowCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// ReportLister lists the reports of one tenant.
type ReportLister interface {
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Report, error)
}

// Uploader stores a finished export body under a key.
type Uploader interface {
	UploadExport(ctx context.Context, key string, body io.Reader) error
}

// ExportProcessor processes report export jobs: query the tenant's reports,
// build a CSV, upload to S3, and mark the export ready. The tenant id comes
// from the job payload, which was captured from a verified identity at
// enqueue time.
type ExportProcessor struct {
	exportRepo ExportStore
	reportRepo ReportLister
	uploads    Uploader
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewExportProcessor creates an export processor.
func NewExportProcessor(exportRepo ExportStore, reportRepo ReportLister, uploads Uploader, q *queue.Queue, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{exportRepo: exportRepo, reportRepo: reportRepo, uploads: uploads, queue: q, logger: logger}
}

// Process executes one export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReportExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	export, err := p.exportRepo.GetByID(ctx, payload.ExportID)
	if err != nil {
		return fmt.Errorf("export not found: %s", payload.ExportID)
	}
	if export.Status == models.ExportReady {
		p.logger.Info("export already completed", zap.String("export_id", export.ID.String()))
		return nil
	}
	// The job's tenant id and the row's tenant id must agree; a disagreement
	// means a corrupted job and the export is not built.
	if export.TenantID != payload.TenantID {
		return fmt.Errorf("export %s tenant mismatch", payload.ExportID)
	}

	if err := p.exportRepo.MarkProcessing(ctx, export.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	list, err := p.reportRepo.ListByTenant(ctx, payload.TenantID)
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}

	body, err := buildCSV(list)
	if err != nil {
		return fmt.Errorf("build csv: %w", err)
	}

	key := storage.ExportKey(payload.TenantID.String(), export.ID.String())
	if err := p.uploads.UploadExport(ctx, key, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.exportRepo.MarkReady(ctx, export.ID, key, len(list)); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}

	p.logger.Info("export completed",
		zap.String("export_id", export.ID.String()),
		zap.String("s3_key", key),
		zap.Int("rows", len(list)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			exhausted, reErr := p.queue.Retry(ctx, job)
			if reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if exhausted {
				p.markJobFailed(ctx, job)
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}

func (p *ExportProcessor) markJobFailed(ctx context.Context, job *queue.Job) {
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := p.exportRepo.MarkFailed(ctx, payload.ExportID); err != nil {
		p.logger.Error("mark export failed", zap.String("export_id", payload.ExportID.String()), zap.Error(err))
	}
}

func buildCSV(list []models.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "user_id", "report_date", "title", "content", "created_at"}); err != nil {
		return nil, err
	}
	for _, rep := range list {
		record := []string{
			rep.ID.String(),
			rep.UserID.String(),
			rep.ReportDate.Format("2006-01-02"),
			rep.Title,
			rep.Content,
			rep.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
