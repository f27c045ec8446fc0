/*
Package suite orchestrates test runs: it executes an ordered list of test
cases against one graph, judges every outcome, and aggregates the results
into a sealed TestRun.

Test cases are independent and run concurrently up to a configurable worker
limit; results keep submission order regardless of completion order. A
failing or erroring case never aborts the rest of the run.
*/
package suite
