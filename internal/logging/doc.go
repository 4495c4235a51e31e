// Package logging builds the slog loggers used by the command line tools.
//
// Two formats are available: "console", a single human-readable line per
// record with the level colored when writing to a terminal, and "json".
//
//	logger, err := logging.New(logging.Options{Level: "debug", Format: "console"})
//	if err != nil {
//	    return err
//	}
//	logger.Info("resolved album", "album", id, "tracks", n)
package logging
