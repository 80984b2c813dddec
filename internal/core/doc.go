// Package core holds the dashboard's page controllers: the entity
// registry, the Service that loads entity tables and runs bulk imports
// against the backend, import history, and user-facing error codes.
//
// # Entity Registry
//
// Entities are registered at init time using [Register], usually from the
// entities package:
//
//	core.Register(core.Entity{
//	    Key: "members", Group: "Membership", Label: "Members",
//	    Endpoint: "/members/", DataPath: "results",
//	    Columns: []table.Column{{Key: "name", Label: "Name", Sortable: true}},
//	    Import: &core.ImportSpec{RequiredFields: []string{"name"}},
//	})
//
// # Imports
//
// [Service.NewImport] returns an importer.Orchestrator whose upload
// callback posts rows in one bulk request or one request per row, maps
// backend field errors back onto file line numbers, shares a process-wide
// upload limiter and writes an [ImportRecord] to the [HistoryStore].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages with support codes
// by [MapError].
package core
