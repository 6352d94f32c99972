// Package server provides the HTTP server implementation for the Agentry API.
//
// The server exposes the agent registry and the execution runtime over a
// chi-based REST surface. It serves catalog views of the discovered agents,
// dispatches agent runs, streams runtime events, and reports run history.
//
// # API Endpoints
//
// The server exposes the following endpoint categories:
//
//   - /: Service banner with the main endpoints
//   - /health: Liveness probe with the indexed agent count
//   - /agents: Agent catalog (legacy list, registry view, grouped catalog)
//   - /agents/reload: Rebuild the registry index from the configured sources
//   - /agents/runs/*: Persisted run history
//   - /agents/{agent_id}/versions: Version listing for one agent
//   - /agents/{agent_id}/run: Execute an agent version
//   - /events: Real-time event streaming via SSE
//
// # Execution Envelopes
//
// Agent execution responses always use a uniform envelope carrying success,
// output or error, and the resolved agent_id and version. Agent failures
// (including panics and timeouts) are reported inside a 200 envelope;
// the 4xx range is reserved for requests where no agent code ran, such as
// unknown agents, unknown versions, or payloads rejected by the input schema.
//
// # Event System
//
// The server streams the runtime's events over SSE:
//   - Registry events (reload completed)
//   - Run lifecycle events (started, progress, completed, failed)
//
// The SSE implementation includes heartbeat support and drops events to slow
// clients rather than blocking publishers.
//
// # Usage Example
//
//	config := server.DefaultConfig()
//	config.Port = 8080
//
//	srv := server.New(config, reg, dispatcher, runs)
//
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
package server
