/*
Package session serializes the processing of one participant's events.

A Manager holds an in-process mutex per participant, reference counted so that
idle participants leave nothing behind, and optionally a distributed lock so
that several replicas do not interleave the read-modify-write of the same state.
*/
package session
