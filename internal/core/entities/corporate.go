package entities

import (
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

const groupCorporate = "Corporate"

func init() {
	registerCompanies()
	registerSchemes()
}

func registerCompanies() {
	core.Register(core.Entity{
		Key:         "companies",
		Group:       groupCorporate,
		Label:       "Companies",
		Endpoint:    "/companies/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "company_name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "company_name", Label: "Company", Sortable: true},
			{Key: "registration_number", Label: "Reg No", Sortable: true},
			{Key: "contact_person", Label: "Contact"},
			{Key: "contact_email", Label: "Email", Renderer: table.RenderLink, LinkPattern: "mailto:{contact_email}"},
			{Key: "member_count", Label: "Members", Sortable: true, Align: table.AlignRight},
			{Key: "status", Label: "Status", Sortable: true, Renderer: table.RenderStatus},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("companies"),
			RequiredFields: []string{"company_name", "registration_number"},
			Checks:         []importer.RowCheck{importer.EmailField("contact_email")},
			BulkEndpoint:   "/companies/bulk-upload/",
		},
	})
}

func registerSchemes() {
	core.Register(core.Entity{
		Key:         "schemes",
		Group:       groupCorporate,
		Label:       "Schemes",
		Endpoint:    "/schemes/",
		DataPath:    "results",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "name", Label: "Scheme", Sortable: true},
			{Key: "company_detail.company_name", Label: "Company", Sortable: true},
			{Key: "cover_limit", Label: "Cover Limit", Sortable: true, Renderer: table.RenderCurrency},
			{Key: "start_date", Label: "Start", Sortable: true, Renderer: table.RenderDate},
			{Key: "end_date", Label: "End", Sortable: true, Renderer: table.RenderDate},
			{Key: "is_active", Label: "Active", Renderer: table.RenderBoolean},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("schemes"),
			RequiredFields: []string{"name", "company", "cover_limit", "start_date"},
			Checks: []importer.RowCheck{
				importer.AmountField("cover_limit"),
				importer.DateField("start_date"),
				importer.DateField("end_date"),
			},
		},
	})
}
