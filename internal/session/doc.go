// Package session implements the gateway protocol session workflow.
//
// A session drives the login → system-config → per-device pull →
// per-device push-subscription sequence over one connection. The
// protocol has no general request/response envelope; responses are
// matched to in-flight operations by message type and, for telegram
// bundles, by the bundle id the client embedded in the request.
//
// # Dispatch Model
//
// All inbound messages flow through a Bus. Workflow steps register
// predicate-gated handlers against the Bus before sending the request
// whose response they anticipate, so a response can never arrive ahead
// of its handler. Dispatch is strictly sequential, one message at a
// time, on the connection's single drain goroutine; every piece of
// session state (device table, subscription set, correlation map) is
// mutated only from that goroutine. The correlation allocator is the
// one exception and uses an atomic counter, because the per-device
// fan-out allocates ids in a loop before any response comes back.
//
// # Workflow States
//
// The session moves through named states:
//   - Authenticating: login request sent, awaiting the session id
//   - FetchingConfig: system-config request sent, awaiting topology
//   - Streaming: per-device exchanges in flight (steady state)
//
// and each discovered device independently through:
//   - PullingInitial: one-shot bundle request sent
//   - Streaming: push subscription established, periodic updates flow
//   - Idle: the initial pull returned no telegrams, nothing subscribed
//
// # Correlation
//
// Bundle responses are routed through an explicit correlation map from
// bundle id to pending continuation. Pull continuations are removed on
// first match; push continuations persist for the connection lifetime.
//
// # Error Handling
//
// A handler error is a protocol-level or data-integrity violation in
// the active step; it escapes Dispatch and ends the connection's run.
// Only per-telegram item failures are recovered locally (the item is
// dropped, its siblings still forwarded).
package session
