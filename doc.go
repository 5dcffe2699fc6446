// Package wellness provides top-level documentation for the wellness-agents
// module. The module is organized as multiple subpackages (e.g. `llm`,
// `agent`, `orchestrator`, `memory`, `profile`, `observability`, and
// `server`).
//
// Importers typically depend on the subpackages directly, for example:
//
//	import (
//	  "github.com/wellnesskit/wellness-agents/llm"
//	  "github.com/wellnesskit/wellness-agents/agent"
//	  "github.com/wellnesskit/wellness-agents/orchestrator"
//	)
//
// The root package intentionally keeps a small surface area to avoid
// stuttering and to keep subpackages composable.
package wellness
