// Package unixv6 implements the on-disk layout and operations of the UNIX
// Version 6 filesystem: a single backing file partitioned into fixed-size
// 512-byte sectors, with inode-addressed files and bitmap-backed
// allocation of inodes and data sectors.
//
// The package exposes the core storage stack only: mounting/formatting an
// image, resolving pathnames, and reading/writing file content. Shells,
// FUSE adapters and other user-facing tooling are expected to be thin
// consumers of this package, not part of it.
package unixv6
