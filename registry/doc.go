// Package registry keeps the ranked table of inventory printers and elects
// one active printer per name.
//
// Providers are admitted as Descriptors built by Validate from a metadata
// bag. For every name the candidates are ordered by Compare (rank
// descending, then identity ascending) and the head of that order is the
// elected printer. Consumers read only the active set through AllActive,
// ActiveSupporting and ActiveByName; those reads never take the table lock.
//
// Every change of the active set is reported to a LifecycleSink after the
// table lock is released. Notifications are delivered in the order their
// mutations committed. A sink may read the registry, and it may mutate it
// using the context it was handed; such a mutation returns at once and its
// notifications follow the current ones.
//
// Withdrawing the elected printer leaves its name without an active printer
// until a later admission changes the head of that name, even when other
// candidates remain registered.
package registry
