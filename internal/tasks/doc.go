// Package tasks orchestrates playlist conversion between music services with real-time progress reporting.
//
// # Core Operation
//
// The [ConversionEngine] interface defines one operation:
//
//	[ConversionEngine.Convert] : Full source → destination conversion
//	  - Fetches the source playlist's tracks
//	  - Resolves each track against the destination catalog (containment
//	    match with first-result fallback)
//	  - Creates the destination playlist with the resolved track IDs
//	  - Returns a [ConversionReport] including every unresolved track
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Pacing
//
// Destination searches are spaced by a token-bucket rate limiter so long
// playlists stay under the platforms' request quotas.
//
// # Implementation
//
// [PlaylistEngine] implements [ConversionEngine]; the source and destination
// [services.Service] values are passed per call, so the same engine converts
// in either direction.
package tasks
