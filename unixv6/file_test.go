package unixv6

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-unixv6/unixv6fs/backend/file"
)

func newLargeTestImage(t *testing.T) *UnixFilesystem {
	t.Helper()
	const sectors = 4096
	const isize = 64
	path := filepath.Join(t.TempDir(), "large.img")
	b, err := file.CreateFromPath(path, int64(sectors)*SectorSize)
	if err != nil {
		t.Fatalf("CreateFromPath: %v", err)
	}
	u, err := Mkfs(b, sectors, isize)
	if err != nil {
		t.Fatalf("Mkfs: %v", err)
	}
	return u
}

func TestWriteBytesSmallFileSpansSectors(t *testing.T) {
	u := newLargeTestImage(t)
	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	fv, err := d.Create("spans.bin", IAlloc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := bytes.Repeat([]byte("x"), SectorSize+100)
	if err := fv.WriteBytes(content); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if fv.Inode.Size() != uint32(len(content)) {
		t.Fatalf("size = %d, want %d", fv.Inode.Size(), len(content))
	}

	read, err := Open(u, fv.Inr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var got []byte
	buf := make([]byte, SectorSize)
	for {
		n, err := read.ReadBlock(buf)
		if err != nil {
			t.Fatalf("ReadBlock: %v", err)
		}
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("read back %d bytes, want %d matching bytes", len(got), len(content))
	}
}

func TestWriteBytesCrossesSmallToLargeBoundary(t *testing.T) {
	u := newLargeTestImage(t)
	d, err := OpenDir(u, RootInumber)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	fv, err := d.Create("big.bin", IAlloc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := bytes.Repeat([]byte("y"), SmallFileMaxSize+SectorSize*3)
	if err := fv.WriteBytes(content); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if fv.Inode.Addr[0] == 0 {
		t.Fatal("inode Addr[0] should hold the promoted indirect sector")
	}

	read, err := Open(u, fv.Inr)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var got []byte
	buf := make([]byte, SectorSize)
	for {
		n, err := read.ReadBlock(buf)
		if err != nil {
			t.Fatalf("ReadBlock: %v", err)
		}
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("read back %d bytes, want %d matching bytes", len(got), len(content))
	}
}

func TestSeekPastEndRejected(t *testing.T) {
	u := newTestImage(t)
	fv, err := Open(u, RootInumber)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := fv.Seek(fv.Inode.Size()); err != nil {
		t.Fatalf("Seek(size) should be allowed: %v", err)
	}
	if err := fv.Seek(fv.Inode.Size() + 1); err == nil {
		t.Fatal("Seek(size+1) should fail")
	}
}
