package unixv6

import (
	"strings"
	"testing"
)

func TestPrintSuperblockIncludesAllFields(t *testing.T) {
	u := newTestImage(t)
	out := u.PrintSuperblock()

	for _, label := range []string{
		"s_isize", "s_fsize", "s_fbmsize", "s_ibmsize",
		"s_inode_start", "s_block_start", "s_fbm_start", "s_ibm_start",
		"s_flock", "s_ilock", "s_fmod", "s_ronly", "s_time",
	} {
		if !strings.Contains(out, label) {
			t.Fatalf("PrintSuperblock output missing field %q:\n%s", label, out)
		}
	}
}

func TestMountRejectsBadBootblock(t *testing.T) {
	u := newTestImage(t)
	zero := make([]byte, SectorSize)
	if err := writeSector(u.f, BootblockSector, zero); err != nil {
		t.Fatalf("writeSector: %v", err)
	}
	if _, err := Mount(u.f); err == nil {
		t.Fatal("Mount with corrupted bootblock magic should fail")
	}
}
