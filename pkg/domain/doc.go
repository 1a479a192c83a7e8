/*
Package domain contains the core types shared across the marquee engine:
surface containers, interaction events, inbound payload shapes and the
sentinel errors adapters are expected to return.

It depends on nothing else in the module, so component code, the reconciler
and the adapters can all import it freely.
*/
package domain
