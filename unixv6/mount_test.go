package unixv6

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-unixv6/unixv6fs/backend/file"
)

const testTotalSectors = 256
const testIsize = 16

func newTestImage(t *testing.T) *UnixFilesystem {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.img")
	b, err := file.CreateFromPath(path, int64(testTotalSectors)*SectorSize)
	if err != nil {
		t.Fatalf("CreateFromPath: %v", err)
	}
	u, err := Mkfs(b, testTotalSectors, testIsize)
	if err != nil {
		t.Fatalf("Mkfs: %v", err)
	}
	return u
}

func TestMkfsCreatesRoot(t *testing.T) {
	u := newTestImage(t)

	var root Inode
	if err := u.InodeRead(RootInumber, &root); err != nil {
		t.Fatalf("InodeRead(root): %v", err)
	}
	if !root.IsDir() {
		t.Fatal("root inode is not a directory")
	}
	if root.Size() != 0 {
		t.Fatalf("root size = %d, want 0", root.Size())
	}
}

func TestMkfsRootIsEmpty(t *testing.T) {
	u := newTestImage(t)

	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	entries, err := d.ReadDir()
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len(entries) = %d, want 0", len(entries))
	}
}

func TestMkfsScanPrintMatchesSpecScenario(t *testing.T) {
	u := newTestImage(t)
	out, err := u.ScanPrint()
	if err != nil {
		t.Fatalf("ScanPrint: %v", err)
	}
	want := "inode   1 (DIR) len 0\n"
	if out != want {
		t.Fatalf("ScanPrint() = %q, want %q", out, want)
	}
}

func TestReservedInodesOutsideBitmapRange(t *testing.T) {
	u := newTestImage(t)
	if _, err := u.ibm.Get(0); !errors.Is(err, ErrBadParameter) {
		t.Fatalf("ibm.Get(0) = %v, want ErrBadParameter", err)
	}
	if _, err := u.ibm.Get(1); !errors.Is(err, ErrBadParameter) {
		t.Fatalf("ibm.Get(1) = %v, want ErrBadParameter", err)
	}
}

func TestMountRoundTrip(t *testing.T) {
	t.TempDir()
	path := filepath.Join(t.TempDir(), "roundtrip.img")
	b, err := file.CreateFromPath(path, int64(testTotalSectors)*SectorSize)
	if err != nil {
		t.Fatalf("CreateFromPath: %v", err)
	}
	u, err := Mkfs(b, testTotalSectors, testIsize)
	if err != nil {
		t.Fatalf("Mkfs: %v", err)
	}

	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	child, err := d.Create("hello.txt", IAlloc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	content := []byte("hello, unix v6")
	if err := child.WriteBytes(content); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := u.Umount(); err != nil {
		t.Fatalf("Umount: %v", err)
	}

	reopened, err := Mount(b)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	d2, err := OpenDir(reopened, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir after remount: %v", err)
	}
	inr, err := d2.Lookup("hello.txt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	fv, err := Open(reopened, inr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := make([]byte, SectorSize)
	n, err := fv.ReadBlock(buf)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if string(buf[:n]) != string(content) {
		t.Fatalf("read back %q, want %q", buf[:n], content)
	}
}

func TestDirectoryCreateDuplicateName(t *testing.T) {
	u := newTestImage(t)
	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if _, err := d.Create("dup", IAlloc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := d.Create("dup", IAlloc); err == nil {
		t.Fatal("Create with duplicate name should fail")
	}
}

func TestLookupMissingName(t *testing.T) {
	u := newTestImage(t)
	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	if _, err := d.Lookup("does-not-exist"); !errors.Is(err, ErrNameNotFound) {
		t.Fatalf("Lookup missing name = %v, want ErrNameNotFound", err)
	}
}

func TestPathCreateDefaultsParentToRoot(t *testing.T) {
	u := newTestImage(t)
	if _, err := Create(u, "top.txt", IAlloc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	inr, err := Lookup(u, RootInumber, "top.txt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if inr == 0 {
		t.Fatal("Lookup returned inode 0")
	}
}

func TestPathCreateAndLookupMultiSegment(t *testing.T) {
	u := newTestImage(t)
	if _, err := Create(u, "d", IAlloc|IFDir); err != nil {
		t.Fatalf("Create(d): %v", err)
	}
	fv, err := Create(u, "d/f", IAlloc)
	if err != nil {
		t.Fatalf("Create(d/f): %v", err)
	}
	if err := fv.WriteBytes([]byte("nested")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	// Scenario: lookup(root, "/d/f") -- a leading slash is skipped, not
	// treated as a path component.
	inr, err := Lookup(u, RootInumber, "/d/f")
	if err != nil {
		t.Fatalf("Lookup(/d/f): %v", err)
	}
	if inr != fv.Inr {
		t.Fatalf("Lookup(/d/f) = %d, want %d", inr, fv.Inr)
	}
}

func TestPathCreateChildTooLong(t *testing.T) {
	u := newTestImage(t)
	_, err := Create(u, "a-name-that-is-far-too-long-for-a-v6-dirent", IAlloc)
	if !errors.Is(err, ErrFilenameTooLong) {
		t.Fatalf("Create with over-length name = %v, want ErrFilenameTooLong", err)
	}
}

func TestPathLookupMissingParentDirectory(t *testing.T) {
	u := newTestImage(t)
	if _, err := Lookup(u, RootInumber, "nope/f"); err == nil {
		t.Fatal("Lookup through a missing parent directory should fail")
	}
}
