// Package probe answers one question: is the remote API reachable?
//
// A probe runs up to three checks at once, each with its own deadline: the
// primary listing endpoint, the alternate bare domain, and a diagnostic check
// that requests the primary endpoint again and is reported with its timing. The checks do not
// have to agree. Any reachable check means connected.
//
// Reachable means any HTTP status in [200,500), including 404 and 422. The
// goal is telling "server alive" apart from "server absent", not business
// success. A check that hits its own deadline is TimedOut ("no responde"),
// distinct from Rejected (a 5xx answer) and Unreachable (no answer at all).
package probe
