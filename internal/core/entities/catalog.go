package entities

import (
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

func init() {
	core.Register(core.Entity{
		Key:         "medicines",
		Group:       "Catalog",
		Label:       "Medicines",
		Endpoint:    "/medicines/",
		DataPath:    "results",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "name", Label: "Medicine", Sortable: true},
			{Key: "generic_name", Label: "Generic Name", Sortable: true},
			{Key: "strength", Label: "Strength"},
			{Key: "form", Label: "Form"},
			{Key: "unit_price", Label: "Unit Price", Sortable: true, Renderer: table.RenderCurrency},
			{Key: "is_covered", Label: "Covered", Renderer: table.RenderBoolean},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("medicines"),
			RequiredFields: []string{"name", "unit_price"},
			Checks: []importer.RowCheck{
				importer.AmountField("unit_price"),
				importer.BoolField("is_covered"),
			},
			BulkEndpoint: "/medicines/bulk-upload/",
			SampleURL:    "/media/templates/medicines_template.csv",
		},
	})

	// Claims are created by providers; the dashboard only reviews them.
	core.Register(core.Entity{
		Key:         "claims",
		Group:       "Claims",
		Label:       "Claims",
		Endpoint:    "/claims/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "date_of_service", Dir: table.Desc},
		Columns: []table.Column{
			{Key: "claim_number", Label: "Claim No", Sortable: true},
			{Key: "member_detail.name", Label: "Member", Sortable: true},
			{Key: "provider_detail.name", Label: "Provider", Sortable: true},
			{Key: "amount", Label: "Amount", Sortable: true, Renderer: table.RenderCurrency},
			{Key: "date_of_service", Label: "Date of Service", Sortable: true, Renderer: table.RenderDate},
			{Key: "status", Label: "Status", Sortable: true, Renderer: table.RenderStatus},
		},
	})
}
