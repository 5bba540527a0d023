// Package diag defines the diagnostic model shared by the type table, the
// manifest loader and the typing bridge.
//
// Diagnostic is the central record: Severity, Code (numeric, with a stable
// LEX/SYN/SEM/IO string form), Message, the Primary span and optional Notes.
// Notes should add context ("declared here"), not repeat the message.
//
// Producers emit through a Reporter, usually via ReportError(...).Emit().
// BagReporter collects into a Bag, which enforces a limit, sorts
// deterministically and can be merged. Rendering lives in internal/diagfmt.
package diag
