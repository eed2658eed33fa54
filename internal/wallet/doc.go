// Package wallet defines the capability boundary to the external passkey
// wallet SDK and provides an in-memory stub implementation.
//
// # Provider
//
// The Provider interface is the entire surface the rest of the gateway
// depends on: asynchronous Connect and Disconnect, the observable
// {Connected, Connecting} flag pair, the opaque wallet Identity, and
// Watch for flag change notifications. Everything behind it — passkey
// verification, smart wallet derivation, gasless sponsorship — is the
// SDK's business and carries no semantics here.
//
// # Stub
//
// StubProvider simulates the SDK in-process: configurable connect
// latency, scripted failures, and SetConnected for injecting external
// state changes such as a session expiring elsewhere. It backs tests
// and dev serving until a real SDK-backed Provider is plugged in.
package wallet
