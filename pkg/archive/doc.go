/*
Package archive keeps the final documents of ended sessions.

The registry forgets a session once it ends; the Manager hands the last document
to a ports.ArchiveStore so it can still be inspected afterwards. Writes for the
same session ID are serialized with reference-counted local locks and, when
configured, a distributed lock shared between replicas.
*/
package archive
