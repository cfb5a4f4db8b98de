// Package layout is the orchestrator of the layout engine.
//
// [Engine.Layout] ties the stages together: the graph is sanitized, its
// complexity analyzed, an engine selected, the chosen backend run, the
// result optionally re-banded into swim lanes and finally scored. Each run
// walks a small state machine:
//
//	Idle -> Analyzing -> BackendExecuting -> PostProcessing -> Scoring -> Done
//	                           |
//	                           +-> (backend failed, grid placed) -> Degraded
//
// Every transition is reported to [observability.LayoutHooks] and recorded
// in [Result.Trace].
//
// # Failure Policy
//
// Layout never returns an error. A backend that fails, times out or panics
// is replaced by the grid backend, which cannot fail; the result then has
// Success=false, EngineUsed="grid-fallback", a fixed QualityScore of 0.5 and
// the error text in ErrorMessage. The assessor's real score for the grid
// placement is still reported in AssessedScore.
//
// # Concurrency
//
// Concurrent calls with an identical graph and options share a single run.
// Distinct runs are serialized. Completed runs are appended to a bounded
// performance history readable through [Engine.Stats].
package layout
