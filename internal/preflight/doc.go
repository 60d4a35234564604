// Package preflight provides the system checks behind cosim doctor.
//
// The checks cover:
//   - Disk space at the data directory (minimum 100MB)
//   - Available memory (minimum 1GB)
//   - Write permissions in the data directory
//   - Ollama backend reachability (non-critical, static fallback exists)
//   - Embedding model presence (non-critical)
//   - Disk headroom for the model download (non-critical)
//
// A Checker runs the whole battery at once:
//
//	checker := preflight.New(preflight.WithVerbose(true))
//	results := checker.RunAll(ctx, dataDir)
//	checker.PrintResults(results)
//	if checker.HasCriticalFailures(results) {
//		os.Exit(1)
//	}
package preflight
