// Package upnp binds camsync to the network: SSDP discovery of the
// camera and the ContentDirectory Browse action, both via
// github.com/huin/goupnp.
//
// The Watcher turns goupnp's one-shot SSDP searches into the
// absent-to-present device events the sync controller consumes.
// Discovered devices resolve their ContentDirectory service lazily,
// only after the controller has matched the model description.
//
// The package is a thin adapter; the traversal and transfer logic it
// feeds live in internal/browse and internal/download, which are
// tested against fakes of the interfaces this package implements.
package upnp
