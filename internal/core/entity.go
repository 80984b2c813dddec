package core

import (
	"errors"

	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

var (
	// ErrUnknownEntity is returned for a key that was never registered.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrImportUnsupported is returned when an entity has no bulk import.
	ErrImportUnsupported = errors.New("bulk import not supported for entity")
)

// Entity describes one list page of the dashboard: where its records live
// on the backend and how they are shown and imported.
type Entity struct {
	Key      string // URL segment, e.g. "members"
	Group    string // dashboard section, e.g. "Membership"
	Label    string
	Endpoint string // collection endpoint, e.g. "/members/"

	// DataPath locates the record array in the collection response.
	// Empty means the response body is the array.
	DataPath string

	Columns     []table.Column
	StatusField string
	DefaultSort table.SortKey

	// Import is nil for entities without bulk import.
	Import *ImportSpec
}

// ImportSpec configures bulk import for an entity.
type ImportSpec struct {
	Mapping        importer.FieldMapping
	RequiredFields []string
	Checks         []importer.RowCheck

	// BulkEndpoint receives all rows in one POST. When empty, rows are
	// posted one at a time to the entity Endpoint.
	BulkEndpoint string

	// SampleURL points at a server-provided template. When empty a
	// template is generated from RequiredFields.
	SampleURL string
}

// Batch reports whether rows are sent in a single request.
func (s *ImportSpec) Batch() bool {
	return s.BulkEndpoint != ""
}

// TableConfig returns the table engine configuration for e.
func (e Entity) TableConfig(theme table.Theme) table.Config {
	return table.Config{
		Columns:     e.Columns,
		StatusField: e.StatusField,
		Theme:       theme,
	}
}

// NewTableState returns a fresh table state using the entity's default sort.
func (e Entity) NewTableState(pageSize int) table.State {
	return table.NewState(pageSize, e.DefaultSort)
}

// Importable reports whether the entity supports bulk import.
func (e Entity) Importable() bool {
	return e.Import != nil
}
