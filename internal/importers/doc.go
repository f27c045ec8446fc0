/*
Package importers converts heterogeneous voice-agent configuration formats
into the canonical domain.Graph.

The Registry tries adapters in a fixed priority order; the first whose
Detect accepts the input performs the conversion. Detection is structural,
never a guess: an input no adapter claims fails with a domain.FormatError
listing every attempted format.

Every adapter performs a deliberately lossy projection: each source
platform's native transition mechanism (prompt-evaluated edges, function
calls, handoffs) is normalized to exactly one of the four transition
condition kinds. Platform-specific evaluation timing is discarded; each
adapter's doc comment carries a fidelity note describing what is lost.
Adapters share no mutable state and are independently testable.
*/
package importers
