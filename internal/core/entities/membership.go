package entities

import (
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

const groupMembership = "Membership"

func init() {
	registerMembers()
	registerDependants()
}

func registerMembers() {
	core.Register(core.Entity{
		Key:         "members",
		Group:       groupMembership,
		Label:       "Members",
		Endpoint:    "/members/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "member_number", Label: "Member No", Sortable: true, Width: "8rem"},
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "company_detail.company_name", Label: "Company", Sortable: true},
			{Key: "scheme_detail.name", Label: "Scheme"},
			{Key: "date_of_birth", Label: "Date of Birth", Sortable: true, Renderer: table.RenderDate},
			{Key: "phone", Label: "Phone"},
			{Key: "status", Label: "Status", Sortable: true, Renderer: table.RenderStatus},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("members"),
			RequiredFields: []string{"name", "member_number", "company", "date_of_birth"},
			Checks: []importer.RowCheck{
				importer.DateField("date_of_birth"),
				importer.EmailField("email"),
				importer.OneOf("gender", "Male", "Female"),
				importer.OneOf("status", "active", "inactive", "suspended"),
			},
			BulkEndpoint: "/members/bulk-upload/",
		},
	})
}

func registerDependants() {
	core.Register(core.Entity{
		Key:         "dependants",
		Group:       groupMembership,
		Label:       "Dependants",
		Endpoint:    "/dependants/",
		DataPath:    "results",
		StatusField: "status",
		DefaultSort: table.SortKey{Field: "name", Dir: table.Asc},
		Columns: []table.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "principal_detail.name", Label: "Principal", Sortable: true},
			{Key: "relationship", Label: "Relationship", Sortable: true},
			{Key: "date_of_birth", Label: "Date of Birth", Sortable: true, Renderer: table.RenderDate},
			{Key: "status", Label: "Status", Renderer: table.RenderStatus},
		},
		Import: &core.ImportSpec{
			Mapping:        mustMapping("dependants"),
			RequiredFields: []string{"name", "principal_member_number", "relationship", "date_of_birth"},
			Checks: []importer.RowCheck{
				importer.DateField("date_of_birth"),
				importer.OneOf("relationship", "Spouse", "Child", "Parent"),
				importer.OneOf("gender", "Male", "Female"),
			},
		},
	})
}
