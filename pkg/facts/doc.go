// Package facts provides the local facts consulted by template contexts.
//
// # Overview
//
// The facts scope sits below user variables in the resolution chain, so
// anything collected here can be overridden per run. Collect returns the
// built-in system facts (agent version, OS family, architecture, hostname),
// Environ snapshots the process environment for the env scope, and
// LoadEnvFile merges a .env file on top of it.
//
// Remote or pluggable fact collection is out of scope; this package only
// covers what a local render needs.
package facts
