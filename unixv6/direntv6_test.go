package unixv6

import "testing"

func TestDirentSetNameRoundTrip(t *testing.T) {
	var d Direntv6
	if err := d.SetName("readme.txt"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if got := d.NameString(); got != "readme.txt" {
		t.Fatalf("NameString() = %q, want %q", got, "readme.txt")
	}
}

func TestDirentSetNameTooLong(t *testing.T) {
	var d Direntv6
	if err := d.SetName("a-name-that-is-far-too-long-for-a-v6-dirent"); err == nil {
		t.Fatal("SetName with an over-length name should fail")
	}
}

func TestDirentSetNameExactLength(t *testing.T) {
	var d Direntv6
	name := "12345678901234" // exactly DirentMaxlen bytes
	if err := d.SetName(name); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if got := d.NameString(); got != name {
		t.Fatalf("NameString() = %q, want %q", got, name)
	}
}

func TestDirentFree(t *testing.T) {
	var d Direntv6
	if !d.Free() {
		t.Fatal("zero-value dirent should be free")
	}
	d.Inum = 1
	if d.Free() {
		t.Fatal("dirent with non-zero Inum should not be free")
	}
}

func TestDirentMarshalUnmarshal(t *testing.T) {
	var d Direntv6
	d.Inum = 7
	if err := d.SetName("x.txt"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	buf := d.marshal()
	if len(buf) != DirentSize {
		t.Fatalf("marshal length = %d, want %d", len(buf), DirentSize)
	}
	var out Direntv6
	if err := out.unmarshal(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != d {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, d)
	}
}
