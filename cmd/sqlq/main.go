// Package main provides a CLI for inspecting what the sqlq builder renders.
//
// The CLI supports:
//   - render: build a SELECT statement from flags and print the SQL text
//     plus the bound-parameter list
//   - version: print version information
//
// This tool is meant for development: checking placeholder numbering,
// previewing lookup output, and generating fixtures.
//
// Usage:
//
//	sqlq render --from u=public.user --where u__org_id=42 --limit 10
package main

func main() {
	Execute()
}
