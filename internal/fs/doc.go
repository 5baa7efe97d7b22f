// Package fs is the file system seam of the store.
//
// Production code uses Default, which forwards to package os. Tests wrap it in
// a FaultyFS to fail chosen operations on chosen paths:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("vectors.json", fs.Fault{FailOnRename: true})
//
// LockFile guards a data directory against a second process. Where flock is
// unavailable the lock never conflicts.
package fs
