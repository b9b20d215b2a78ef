package worker

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pulse-reports/backend/internal/models"
	"github.com/pulse-reports/backend/pkg/queue"
	"github.com/pulse-reports/backend/pkg/storage"
)

type fakeExportStore struct {
	export     *models.ReportExport
	processing []uuid.UUID
	readyKey   string
	readyRows  int
	failed     []uuid.UUID
}

func (f *fakeExportStore) GetByID(_ context.Context, id uuid.UUID) (*models.ReportExport, error) {
	if f.export == nil || f.export.ID != id {
		return nil, models.ErrNotFound
	}
	return f.export, nil
}

func (f *fakeExportStore) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeExportStore) MarkReady(_ context.Context, _ uuid.UUID, objectKey string, rowCount int) error {
	f.readyKey, f.readyRows = objectKey, rowCount
	return nil
}

func (f *fakeExportStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeReportLister struct {
	listedTenant uuid.UUID
	result       []models.Report
}

func (f *fakeReportLister) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.Report, error) {
	f.listedTenant = tenantID
	return f.result, nil
}

type fakeUploader struct {
	key  string
	body []byte
}

func (f *fakeUploader) UploadExport(_ context.Context, key string, body io.Reader) error {
	f.key = key
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.body = b
	return nil
}

func exportJob(t *testing.T, exportID, tenantID uuid.UUID) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.ExportPayload{ExportID: exportID, TenantID: tenantID})
	require.NoError(t, err)
	return &queue.Job{ID: uuid.NewString(), Type: queue.JobTypeReportExport, Payload: payload}
}

func TestProcessScopesReportsToJobTenant(t *testing.T) {
	tenantID := uuid.New()
	export := &models.ReportExport{ID: uuid.New(), TenantID: tenantID, Status: models.ExportPending}
	store := &fakeExportStore{export: export}
	lister := &fakeReportLister{result: []models.Report{
		{ID: uuid.New(), TenantID: tenantID, UserID: uuid.New(), Title: "Friday status", ReportDate: time.Now(), CreatedAt: time.Now()},
	}}
	uploads := &fakeUploader{}
	p := NewExportProcessor(store, lister, uploads, nil, nil)

	err := p.Process(context.Background(), exportJob(t, export.ID, tenantID))
	require.NoError(t, err)

	require.Equal(t, tenantID, lister.listedTenant)
	require.Equal(t, storage.ExportKey(tenantID.String(), export.ID.String()), uploads.key)
	require.Equal(t, uploads.key, store.readyKey)
	require.Equal(t, 1, store.readyRows)
	require.Contains(t, string(uploads.body), lister.result[0].ID.String())
}

// A job whose tenant id disagrees with the export row is corrupted and must
// not produce an upload for either tenant.
func TestProcessRejectsTenantMismatch(t *testing.T) {
	export := &models.ReportExport{ID: uuid.New(), TenantID: uuid.New(), Status: models.ExportPending}
	store := &fakeExportStore{export: export}
	lister := &fakeReportLister{}
	uploads := &fakeUploader{}
	p := NewExportProcessor(store, lister, uploads, nil, nil)

	err := p.Process(context.Background(), exportJob(t, export.ID, uuid.New()))
	require.Error(t, err)

	require.Empty(t, store.processing)
	require.Equal(t, uuid.Nil, lister.listedTenant)
	require.Empty(t, uploads.key)
}

func TestProcessSkipsCompletedExport(t *testing.T) {
	tenantID := uuid.New()
	export := &models.ReportExport{ID: uuid.New(), TenantID: tenantID, Status: models.ExportReady}
	store := &fakeExportStore{export: export}
	uploads := &fakeUploader{}
	p := NewExportProcessor(store, &fakeReportLister{}, uploads, nil, nil)

	err := p.Process(context.Background(), exportJob(t, export.ID, tenantID))
	require.NoError(t, err)
	require.Empty(t, uploads.key)
	require.Empty(t, store.processing)
}

func TestBuildCSV(t *testing.T) {
	tenantID := uuid.New()
	reports := []models.Report{
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			UserID:     uuid.New(),
			ReportDate: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
			Title:      "Wednesday",
			Content:    "shipped the thing, with a comma",
			CreatedAt:  time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC),
		},
		{
			ID:         uuid.New(),
			TenantID:   tenantID,
			UserID:     uuid.New(),
			ReportDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
			Title:      "Thursday",
			Content:    "reviews",
			CreatedAt:  time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC),
		},
	}

	body, err := buildCSV(reports)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,user_id,report_date,title,content,created_at", lines[0])
	require.Contains(t, lines[1], reports[0].ID.String())
	require.Contains(t, lines[1], `"shipped the thing, with a comma"`)
	require.Contains(t, lines[2], "2026-08-28")
}

func TestBuildCSVEmpty(t *testing.T) {
	body, err := buildCSV(nil)
	require.NoError(t, err)
	require.Equal(t, "id,user_id,report_date,title,content,created_at\n", string(body))
}
