// Package memory provides in-process implementations of the repository
// interfaces. They back STORE_MODE=memory and the service tests.
//
// Locking is row-scoped: a short-lived index lock guards the maps, and each
// follow edge, notification inbox and device set carries its own mutex, so
// writes for one user never wait on another user's rows.
package memory
