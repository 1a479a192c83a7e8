/*
Package session is the surface session engine. It owns the persisted
container lifecycle, routes inbound actions to the component tree that
rendered the surface, runs the two-pass reconcile cycle, and pushes updates
to the chat platform when the rendered document changes.

One inbound event is processed start-to-finish under the surface's lock
before its container is persisted; events for different surfaces proceed
concurrently. In multi-replica deployments a ports.DistributedLocker extends
the per-surface guarantee across instances.
*/
package session
