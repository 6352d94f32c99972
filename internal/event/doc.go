/*
Package event provides a type-safe pub/sub event system for the agent
runtime.

The event system decouples the registry, the dispatcher, and the HTTP
layer: publishers emit events and subscribers react to them without
direct dependencies.

# Architecture

The package is built on top of watermill's gochannel for infrastructure
while maintaining direct-call semantics to preserve type information. It
provides both synchronous and asynchronous event publishing patterns.

# Event Types

Registry events:
  - registry.reloaded: a fresh index was swapped in

Run events:
  - run.started: an agent run began
  - run.progress: the agent reported a stage transition
  - run.completed: the run finished with success = true
  - run.failed: the run finished with success = false

# Basic Usage

Publishing events:

	// Asynchronous publishing (non-blocking)
	event.Publish(event.Event{
		Type: event.RunStarted,
		Data: event.RunStartedData{
			RunID:   runID,
			AgentID: agentID,
			Version: version,
		},
	})

	// Synchronous publishing (blocking until all subscribers complete)
	event.PublishSync(event.Event{
		Type: event.RegistryReloaded,
		Data: event.RegistryReloadedData{Agents: n, Packages: m},
	})

Subscribing to specific events:

	unsubscribe := event.Subscribe(event.RunCompleted, func(e event.Event) {
		data := e.Data.(event.RunCompletedData)
		logging.Info().Str("runID", data.RunID).Msg("run completed")
	})
	defer unsubscribe()

Subscribing to all events:

	unsubscribe := event.SubscribeAll(func(e event.Event) {
		logging.Debug().Str("type", string(e.Type)).Msg("event received")
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the
publisher's goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber
  - Never acquire locks that the publisher might hold

# Custom Event Bus

For testing or isolation, you can create custom bus instances:

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.RunStarted, handler)
	bus.PublishSync(event.Event{Type: event.RunStarted, Data: data})

# Testing

The package provides utilities for testing:

	// Reset global bus state (use in test cleanup)
	event.Reset()

# Thread Safety

The event bus is thread-safe and can be used concurrently from multiple
goroutines. Both publishing and subscribing operations are protected by
internal synchronization.
*/
package event
