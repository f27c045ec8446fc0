/*
Package judge converts a finished conversation into pass/fail evidence.

Three independent judge kinds exist, each pure with respect to a given
transcript and node trace:

  - the metric judge scores free-text criteria through the model,
  - the rule judge checks literal inclusions/exclusions and regex patterns,
  - the flow and tool judges compare the node-visit trace and recorded tool
    invocations against the test case's constraints.

A judge call failure never silently drops a metric: the affected metric is
recorded as unresolved and counts as failed.
*/
package judge
