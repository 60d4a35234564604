// Package logging provides structured logging for cosim.
//
// All diagnostic output is written as JSON lines to a rotating log file
// (default ~/.cosim/logs/cosim.log), never to stdout or stderr. The
// terminal is reserved for the similarity pipeline's own output, so log
// noise can never corrupt it. Each run is tagged with a unique run_id
// attribute to make interleaved runs searchable.
//
// Basic usage:
//
//	logger, cleanup, err := logging.Setup(logging.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//	logger.Info("scoring started", "query_len", len(query))
//
// The Viewer type supports tailing and following the log file from the
// `cosim logs` subcommand, with level and pattern filtering.
package logging
