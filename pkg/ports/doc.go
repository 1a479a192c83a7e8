/*
Package ports defines the boundary interfaces the session engine consumes:
container persistence, the outbound surface API and distributed locking.

Implementations live under pkg/adapters. The engine never depends on a
concrete backend, which keeps the core testable with in-memory fakes.
*/
package ports
