/*
Package session serializes access to calculator sessions.

A Manager wraps a ports.SessionStore with per-session mutexes (reference
counted so idle sessions leave nothing behind) and, optionally, a
ports.DistributedLocker so replicas sharing a store do not interleave
read-modify-write cycles on the same session.
*/
package session
