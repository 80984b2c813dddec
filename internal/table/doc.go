// Package table is the dashboard's generic table engine.
//
// It works on collections of JSON records that have already been fetched
// from the backend. Each request for a table page runs the same pipeline:
//
//	Filter -> Sort -> State.Clamp -> Paginate -> Render
//
// Columns are plain data. How a cell is displayed is chosen from a fixed
// set of renderers, and styling comes from an explicit Theme.
package table
