/*
Package domain contains the canonical conversation-flow representation and
the value types shared by every other Parley package.

The central type is Graph: an immutable, validated mapping of node IDs to
conversational states (Node) connected by Transitions. Graphs are produced
by importers, compiled by the runtime, projected by exporters and inspected
by judges. Nothing in this package performs I/O.

Transcripts, test cases and run results live here too, so that the runner,
the judges and external collaborators (CLI, HTTP API, stores) agree on one
serializable shape.
*/
package domain
