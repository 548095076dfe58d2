// Package staging owns the transient local copy of an uploaded video.
//
// Stager.Stage validates the file type, enforces the upload quota and free
// disk space, and writes the bytes to a fresh vouch-* file under the staging
// directory. Stager.Release removes it again and is safe to call more than
// once. CleanStale and List support the "vouch staging" commands by sweeping
// and listing files left behind by interrupted runs.
package staging
