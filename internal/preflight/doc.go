// Package preflight provides readiness checks for the filesystem paths and the
// remote service that Vouch depends on.
//
// These checks run in two contexts:
//   - The CLI "vouch status" command renders RunAll as a table.
//   - "vouch audit" and "vouch serve" call RunAll before doing any work and
//     stop early when a check fails, so a missing key or an unwritable staging
//     directory is reported before a large upload is read.
package preflight
