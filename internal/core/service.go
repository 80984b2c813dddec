package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/config"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/metrics"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

// Service wires entity definitions to the table engine and the import
// orchestrator. It holds no per-user state; callers pass the API client of
// the session they act for.
type Service struct {
	fetchPageSize  int
	pageSize       int
	maxPageSize    int
	extensions     []string
	maxSizeMB      int64
	autoCloseDelay time.Duration
	importTimeout  time.Duration
	theme          table.Theme

	limiter *importer.UploadLimiter
	history HistoryStore
	metrics *metrics.Metrics
}

// NewService creates a service. A nil history keeps records in memory;
// a nil metrics disables instrumentation.
func NewService(cfg *config.Config, history HistoryStore, m *metrics.Metrics) *Service {
	if history == nil {
		history = NewMemoryHistory(cfg.History.MaxEntries)
	}
	return &Service{
		fetchPageSize:  cfg.API.FetchPageSize,
		pageSize:       cfg.Table.PageSize,
		maxPageSize:    cfg.Table.MaxPageSize,
		extensions:     cfg.Import.AcceptedExtensions,
		maxSizeMB:      cfg.Import.MaxSizeMB,
		autoCloseDelay: cfg.Import.AutoCloseDelay,
		importTimeout:  cfg.Import.Timeout,
		theme:          table.DefaultTheme(),
		limiter:        importer.NewUploadLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		history:        history,
		metrics:        m,
	}
}

// Extensions returns the accepted import file extensions.
func (s *Service) Extensions() []string {
	return slices.Clone(s.extensions)
}

// Theme returns the table theme.
func (s *Service) Theme() table.Theme {
	return s.theme
}

// PageSize returns the default table page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// ClampPageSize bounds a requested page size to [1, max page size].
func (s *Service) ClampPageSize(size int) int {
	return min(max(size, 1), s.maxPageSize)
}

// History returns the import history store.
func (s *Service) History() HistoryStore {
	return s.history
}

// LoadRecords fetches an entity's collection from the backend.
func (s *Service) LoadRecords(ctx context.Context, client *apiclient.Client, key string) ([]table.Record, error) {
	ent, err := Lookup(key)
	if err != nil {
		return nil, err
	}

	resp, err := apiclient.Get[json.RawMessage](ctx, client, ent.Endpoint, map[string]any{
		"page_size": s.fetchPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	records, err := table.RecordsFromJSON(resp.Data, ent.DataPath)
	if errors.Is(err, table.ErrNotArray) && ent.DataPath != "" {
		// Some endpoints skip the pagination envelope.
		if bare, berr := table.RecordsFromJSON(resp.Data, ""); berr == nil {
			records, err = bare, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	logging.FromContext(ctx).Debug("records loaded", "entity", key, "count", len(records))
	return records, nil
}

// TableView loads the entity's records and builds the page st points at.
// st is clamped to the result.
func (s *Service) TableView(ctx context.Context, client *apiclient.Client, key string, st *table.State) (table.View, error) {
	ent, err := Lookup(key)
	if err != nil {
		return table.View{}, err
	}
	records, err := s.LoadRecords(ctx, client, key)
	if err != nil {
		return table.View{}, err
	}
	return table.Build(records, ent.TableConfig(s.theme), st), nil
}

// NewImport creates an import session for key whose uploads go through
// client. onClose runs when the session closes itself after a success or
// is closed by the user.
func (s *Service) NewImport(client *apiclient.Client, key string, onClose func()) (*importer.Orchestrator, error) {
	ent, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	if !ent.Importable() {
		return nil, fmt.Errorf("%w: %q", ErrImportUnsupported, key)
	}

	var orch *importer.Orchestrator
	fileName := func() string { return orch.Snapshot().FileName }

	orch = importer.NewOrchestrator(importer.Options{
		AcceptedExtensions: s.extensions,
		MaxSizeMB:          s.maxSizeMB,
		Mapping:            ent.Import.Mapping,
		RequiredFields:     ent.Import.RequiredFields,
		Checks:             ent.Import.Checks,
		Upload:             s.uploadFunc(client, ent, fileName),
		AutoCloseDelay:     s.autoCloseDelay,
		OnClose:            onClose,
		Logger:             slog.Default().With("entity", key),
	})
	return orch, nil
}

// Sample returns the import template for key. When the entity points at
// a server-side template, url is set and data is nil.
func (s *Service) Sample(key string) (data []byte, url string, err error) {
	ent, err := Lookup(key)
	if err != nil {
		return nil, "", err
	}
	if !ent.Importable() {
		return nil, "", fmt.Errorf("%w: %q", ErrImportUnsupported, key)
	}
	if ent.Import.SampleURL != "" {
		return nil, ent.Import.SampleURL, nil
	}
	return importer.SampleCSV(ent.Import.RequiredFields), "", nil
}

// RecentImports returns the latest import records for key ("" for all).
func (s *Service) RecentImports(ctx context.Context, key string, limit int) ([]ImportRecord, error) {
	if key != "" {
		if _, err := Lookup(key); err != nil {
			return nil, err
		}
	}
	return s.history.Recent(ctx, key, limit)
}

// UploadLimiterStatus reports shared upload slot usage.
func (s *Service) UploadLimiterStatus() importer.LimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
