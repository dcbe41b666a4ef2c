// Package di wires configuration, cache store, session store, transport,
// resource client and typed services into a single Container.
package di
