// Package middleware provides composable wrappers around a RunStore.
// Middlewares transform the payload on its way to the inner store; the
// orchestrator and CLI only ever see the outermost store.
package middleware

import "github.com/aretw0/parley/pkg/ports"

// Middleware wraps a RunStore to add behavior around persistence.
type Middleware func(ports.RunStore) ports.RunStore
