// Package importer turns user-supplied delimited files into validated rows
// and drives a bulk import session from file selection to upload.
//
// The pipeline is deliberately small:
//
//  1. [ReadText] strips a UTF-8 BOM and replaces invalid UTF-8 bytes
//  2. [ParseTable] splits lines and fields, honouring double quotes
//  3. [MapHeaders] rewrites external headers to canonical field keys
//  4. [Validate] reports missing required values by display row number
//
// [Orchestrator] wraps the pipeline in the state machine used by the import
// modal:
//
//	Idle -> FileSelected -> ParsedValid | ParsedInvalid -> Uploading -> Success | Error
//
// Only one upload may be in flight per orchestrator. Successful sessions
// close themselves after [DefaultAutoCloseDelay].
package importer
