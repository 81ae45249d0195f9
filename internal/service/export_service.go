package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
	"github.com/noah-isme/camp-ops-api/pkg/export"
	"github.com/noah-isme/camp-ops-api/pkg/jobs"
	"github.com/noah-isme/camp-ops-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export job status values.
const (
	ExportStatusQueued    = "queued"
	ExportStatusRunning   = "running"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportJob tracks one render request through the queue.
type ExportJob struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"sessionId"`
	View        string     `json:"view"`
	Format      string     `json:"format"`
	Status      string     `json:"status"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	Error       string     `json:"error,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	relPath string
}

// ExportService renders schedule views to CSV or PDF asynchronously. Files
// land in local storage behind HMAC-signed download tokens.
type ExportService struct {
	sessions   sessionReader
	groups     groupLister
	activities activityLister
	facilities facilityLister
	staff      staffLister
	slots      slotStore
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig

	queue *jobs.Queue

	mu      sync.RWMutex
	records map[string]*ExportJob
}

// NewExportService constructs an ExportService. Call Start before enqueueing.
func NewExportService(
	sessions sessionReader,
	groups groupLister,
	activities activityLister,
	facilities facilityLister,
	staff staffLister,
	slots slotStore,
	files fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportService{
		sessions:   sessions,
		groups:     groups,
		activities: activities,
		facilities: facilities,
		staff:      staff,
		slots:      slots,
		storage:    files,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
		records:    make(map[string]*ExportJob),
	}
	s.queue = jobs.NewQueue("schedule-export", s.process, jobs.QueueConfig{Workers: 2, Logger: logger})
	return s
}

// Start launches the render workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the render workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue validates the request and queues a render job.
func (s *ExportService) Enqueue(ctx context.Context, sessionID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	view := req.View
	if view == "" {
		view = "master"
	}
	format := req.Format
	if format == "" {
		format = "csv"
	}
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}

	job := &ExportJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		View:      view,
		Format:    format,
		Status:    ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.records[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "schedule-export", Payload: job.ID}); err != nil {
		s.mu.Lock()
		delete(s.records, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return &dto.ExportJobResponse{JobID: job.ID, Status: job.Status}, nil
}

// Status reports a job's progress and, once rendered, its download URL.
func (s *ExportService) Status(jobID string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	job, ok := s.records[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return &dto.ExportJobResponse{
		JobID:       job.ID,
		Status:      job.Status,
		DownloadURL: job.DownloadURL,
		ExpiresAt:   job.ExpiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) process(ctx context.Context, queued jobs.Job) error {
	jobID, _ := queued.Payload.(string)
	s.mu.Lock()
	job, ok := s.records[jobID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	job.Status = ExportStatusRunning
	s.mu.Unlock()

	result, err := s.render(ctx, job)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		job.Status = ExportStatusFailed
		job.Error = err.Error()
		s.logger.Warn("schedule export failed", zap.String("jobId", job.ID), zap.Error(err))
		return err
	}
	job.Status = ExportStatusCompleted
	job.relPath = result.relPath
	job.DownloadURL = result.url
	job.ExpiresAt = &result.expiresAt
	return nil
}

type renderResult struct {
	relPath   string
	url       string
	expiresAt time.Time
}

func (s *ExportService) render(ctx context.Context, job *ExportJob) (*renderResult, error) {
	dataset, title, err := s.buildDataset(ctx, job.SessionID, job.View)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("schedule_%s_%s_%s.%s", job.View, sanitizeFilename(job.SessionID), timestamp, job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &renderResult{
		relPath:   relPath,
		url:       fmt.Sprintf("%s/export/%s", prefix, token),
		expiresAt: expiresAt,
	}, nil
}

// buildDataset flattens the session grid into the requested tabular view.
func (s *ExportService) buildDataset(ctx context.Context, sessionID, view string) (export.Dataset, string, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	slots, err := s.slots.ListBySession(ctx, sessionID, dto.SlotFilter{})
	if err != nil {
		return export.Dataset{}, "", err
	}
	groups, err := s.groups.ListBySession(ctx, sessionID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	activities, err := s.activities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return export.Dataset{}, "", err
	}
	facilities, err := s.facilities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return export.Dataset{}, "", err
	}
	staff, err := s.staff.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return export.Dataset{}, "", err
	}

	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}
	activityNames := make(map[string]string, len(activities))
	for _, a := range activities {
		activityNames[a.ID] = a.Name
	}
	facilityNames := make(map[string]string, len(facilities))
	for _, f := range facilities {
		facilityNames[f.ID] = f.Name
	}
	staffNames := make(map[string]string, len(staff))
	for _, st := range staff {
		staffNames[st.ID] = st.FirstName + " " + st.LastName
	}

	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, map[string]string{
			"Date":     slot.Date,
			"Start":    slot.StartTime,
			"End":      slot.EndTime,
			"Group":    nameOr(groupNames, slot.GroupID),
			"Activity": nameOrPtr(activityNames, slot.ActivityID),
			"Facility": nameOrPtr(facilityNames, slot.FacilityID),
			"Staff":    joinStaffNames(staffNames, slot.StaffIDs),
		})
	}

	headers := []string{"Date", "Start", "End", "Group", "Activity", "Facility", "Staff"}
	switch view {
	case "master", "":
	case "group":
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i]["Group"] != rows[j]["Group"] {
				return rows[i]["Group"] < rows[j]["Group"]
			}
			if rows[i]["Date"] != rows[j]["Date"] {
				return rows[i]["Date"] < rows[j]["Date"]
			}
			return rows[i]["Start"] < rows[j]["Start"]
		})
		headers = []string{"Group", "Date", "Start", "End", "Activity", "Facility", "Staff"}
	case "day":
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i]["Date"] != rows[j]["Date"] {
				return rows[i]["Date"] < rows[j]["Date"]
			}
			if rows[i]["Start"] != rows[j]["Start"] {
				return rows[i]["Start"] < rows[j]["Start"]
			}
			return rows[i]["Group"] < rows[j]["Group"]
		})
	case "facility":
		filtered := rows[:0]
		for _, row := range rows {
			if row["Facility"] != "" {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i]["Facility"] != rows[j]["Facility"] {
				return rows[i]["Facility"] < rows[j]["Facility"]
			}
			if rows[i]["Date"] != rows[j]["Date"] {
				return rows[i]["Date"] < rows[j]["Date"]
			}
			return rows[i]["Start"] < rows[j]["Start"]
		})
		headers = []string{"Facility", "Date", "Start", "End", "Group", "Activity", "Staff"}
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported view %s", view)
	}

	title := fmt.Sprintf("%s Schedule (%s)", session.Name, view)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func nameOrPtr(names map[string]string, id *string) string {
	if id == nil || *id == "" {
		return ""
	}
	return nameOr(names, *id)
}

func joinStaffNames(names map[string]string, ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, nameOr(names, id))
	}
	return strings.Join(parts, "; ")
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
