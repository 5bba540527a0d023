// Package decls loads type manifests (TOML files of typedefs and structure
// declarations) and registers them in a types.Table.
//
// Files are read and decoded concurrently by LoadFiles; everything that
// touches the arena happens afterwards on one goroutine in Builder.Build.
package decls
