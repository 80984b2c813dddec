package entities

import (
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

const groupProviders = "Providers"

func init() {
	registerHospitals()
	registerDoctors()
}

func registerHospitals() {
	core.Register(core.Entity{
		Key:         "hospitals",
		Group:       groupProviders,
		Label:       "Hospitals",
		Endpoint:    "/providers/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "name", Label: "Hospital", Sortable: true},
			{Key: "provider_type", Label: "Type", Sortable: true},
			{Key: "county", Label: "County", Sortable: true},
			{Key: "phone", Label: "Phone"},
			{Key: "is_panel", Label: "Panel", Renderer: table.RenderBoolean},
			{Key: "status", Label: "Status", Sortable: true, Renderer: table.RenderStatus},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("hospitals"),
			RequiredFields: []string{"name", "provider_type", "county"},
			Checks: []importer.RowCheck{
				importer.OneOf("provider_type", "Hospital", "Clinic", "Pharmacy", "Laboratory"),
				importer.BoolField("is_panel"),
				importer.EmailField("email"),
			},
			BulkEndpoint: "/providers/bulk-upload/",
		},
	})
}

func registerDoctors() {
	core.Register(core.Entity{
		Key:         "doctors",
		Group:       groupProviders,
		Label:       "Doctors",
		Endpoint:    "/doctors/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "name", Label: "Doctor", Sortable: true},
			{Key: "specialization", Label: "Specialization", Sortable: true},
			{Key: "provider_detail.name", Label: "Hospital", Sortable: true},
			{Key: "license_number", Label: "License No"},
			{Key: "email", Label: "Email", Renderer: table.RenderLink, LinkPattern: "mailto:{email}"},
			{Key: "status", Label: "Status", Renderer: table.RenderStatus},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("doctors"),
			RequiredFields: []string{"name", "license_number", "specialization"},
			Checks:         []importer.RowCheck{importer.EmailField("email")},
		},
	})
}
