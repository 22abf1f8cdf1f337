// Package logging provides structured logging for the heatlink bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge. It provides both general logging
// functions and specialized functions for protocol-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw XML payloads, hex dumps, framing)
//   - Info: Normal operations (connections, session progress, forwards)
//   - Warn: Non-fatal issues (empty pull responses, dropped telegrams)
//   - Error: Fatal issues (startup failures, protocol violations)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device discovered",
//	    zap.String("bus_address", "10"),
//	    zap.String("device_id", "HG1"),
//	    zap.String("software", "1.4.0"),
//	)
//
// # Debug Surface
//
// At debug level, LogFrame echoes every raw inbound and outbound XML
// payload verbatim. This is the protocol debug surface; it has no effect
// on protocol behavior.
//
//	logging.LogFrame("send", frame.Type, frame.Payload)
//	logging.LogFrame("recv", frame.Type, frame.Payload)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the HEATLINK_LOG_LEVEL environment variable is
// consulted; if that is also unset, logging is silent.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
