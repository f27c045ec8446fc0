/*
Package runner drives a single simulated conversation: it alternates user
simulator output and execution engine output, tracks node visits, and
enforces turn budgets and termination conditions.

A Runner moves through Idle -> Running -> {Completed, BudgetExceeded,
Errored}. One Runner serves exactly one test case; the orchestrator creates
a fresh instance per case so no state leaks between cases.
*/
package runner
