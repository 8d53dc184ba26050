package minimap

import (
	"testing"
	"voxmap/internal/world"
)

func newTestThread(mode ModeDef, pos world.Pos) (*updateThread, *scanState) {
	st := &scanState{
		pos:         pos,
		mode:        mode,
		scan:        make([]Pixel, 0, MinimapMax*MinimapMax),
		invalidated: true,
	}
	return newUpdateThread(st), st
}

func TestEnqueueReplacesPendingUpdate(t *testing.T) {
	th, _ := newTestThread(offMode, world.Pos{})
	pos := world.BlockPos{X: 1, Y: 2, Z: 3}
	first := &Mapblock{}
	second := &Mapblock{}

	th.enqueueBlock(pos, first)
	th.enqueueBlock(world.BlockPos{}, &Mapblock{})
	th.enqueueBlock(pos, second)
	if got := th.stats().Queued; got != 2 {
		t.Fatalf("queued = %d, want 2", got)
	}

	u, ok := th.popBlockUpdate()
	if !ok || u.pos != pos || u.data != second {
		t.Fatalf("first pop = %+v, %v; want replaced update for %v kept in its queue slot", u, ok, pos)
	}
	th.enqueueBlock(pos, first)
	th.enqueueBlock(pos, second)
	th.doUpdate()

	if len(th.blocks) != 2 {
		t.Fatalf("cache has %d entries, want 2", len(th.blocks))
	}
	if th.blocks[pos] != second {
		t.Fatal("cache kept the superseded snapshot")
	}
	if _, ok := th.popBlockUpdate(); ok {
		t.Fatal("queue not drained")
	}
}

func TestCacheReplaceKeepsOneEntry(t *testing.T) {
	th, _ := newTestThread(offMode, world.Pos{})
	pos := world.BlockPos{X: -4, Y: 0, Z: 9}
	th.enqueueBlock(pos, &Mapblock{})
	th.doUpdate()
	newer := &Mapblock{}
	th.enqueueBlock(pos, newer)
	th.doUpdate()

	if len(th.blocks) != 1 || th.blocks[pos] != newer {
		t.Fatalf("cache = %v, want only the newer snapshot", th.blocks)
	}
	if s := th.stats(); s.Cached != 1 || s.Cycles != 2 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestGetMapSingleBlock(t *testing.T) {
	th, _ := newTestThread(offMode, world.Pos{})
	th.blocks[world.BlockPos{}] = filledMapblock(world.Node{Content: world.ContentStone}, 5, 10)

	dst := make([]Pixel, 16*16)
	th.getMap(dst, world.Pos{X: 8, Y: 8, Z: 8}, 16, 16)
	for i, px := range dst {
		want := Pixel{Node: world.Node{Content: world.ContentStone}, Height: 5, AirCount: 10}
		if px != want {
			t.Fatalf("pixel %d = %+v, want %+v", i, px, want)
		}
	}
}

func TestGetMapTopmostBlockWins(t *testing.T) {
	th, _ := newTestThread(offMode, world.Pos{})
	// insert the upper block first so map order cannot help
	th.blocks[world.BlockPos{Y: 1}] = filledMapblock(world.Node{Content: world.ContentSnow}, 3, 12)
	th.blocks[world.BlockPos{Y: 0}] = filledMapblock(world.Node{Content: world.ContentStone}, 10, 5)
	th.blocks[world.BlockPos{Y: -1}] = filledMapblock(world.Node{Content: world.ContentDirt}, 15, 0)

	dst := make([]Pixel, 16*16)
	for run := 0; run < 10; run++ {
		th.getMap(dst, world.Pos{X: 8, Y: 16, Z: 8}, 16, 32)
		for i, px := range dst {
			if px.Node.Content != world.ContentSnow || px.Height != 19 || px.AirCount != 17 {
				t.Fatalf("run %d pixel %d = %+v, want snow at 19 with 17 air", run, i, px)
			}
		}
	}
}

func TestGetMapClipsToVolume(t *testing.T) {
	th, _ := newTestThread(offMode, world.Pos{})
	th.blocks[world.BlockPos{}] = filledMapblock(world.Node{Content: world.ContentSand}, 1, 0)
	th.blocks[world.BlockPos{X: 5}] = filledMapblock(world.Node{Content: world.ContentWater}, 1, 0)

	// volume x in [-4, 3]: block 0 covers the right half of the scan
	dst := make([]Pixel, 8*8)
	th.getMap(dst, world.Pos{X: 0, Y: 4, Z: 4}, 8, 8)
	for z := 0; z < 8; z++ {
		for x := 0; x < 8; x++ {
			px := dst[x+z*8]
			if x >= 4 && px.Node.Content != world.ContentSand {
				t.Errorf("(%d,%d) = %+v, want sand", x, z, px)
			}
			if x < 4 && px != (Pixel{}) {
				t.Errorf("(%d,%d) = %+v, want air outside the block", x, z, px)
			}
		}
	}
}

func TestRescanWaitsForConsumedScan(t *testing.T) {
	th, st := newTestThread(ModeDef{Type: ModeSurface, MapSize: 16, ScanHeight: 16}, world.Pos{X: 8, Y: 8, Z: 8})
	th.blocks[world.BlockPos{}] = filledMapblock(world.Node{Content: world.ContentStone}, 0, 0)

	th.rescan(false)
	if st.invalidated || len(st.scan) != 256 {
		t.Fatalf("rescan not published: invalidated %v, %d pixels", st.invalidated, len(st.scan))
	}

	// an unconsumed scan is never overwritten
	st.invalidated = false
	th.rescan(true)
	if !st.needsRescan {
		t.Fatal("cache change while the scan was unconsumed not recorded")
	}
	if got := th.stats().Scans; got != 1 {
		t.Fatalf("scans = %d, want 1", got)
	}
}

func TestWorkerStartStop(t *testing.T) {
	th, st := newTestThread(ModeDef{Type: ModeRadar, MapSize: 32, ScanHeight: 32}, world.Pos{})
	th.Start()
	th.Start()
	th.enqueueBlock(world.BlockPos{}, filledMapblock(world.Node{}, 0, 16))
	th.Stop()
	th.Stop()

	// Stop returns only after the worker exited; the queue may or may not
	// have been merged but nothing runs concurrently any more.
	th.doUpdate()
	if th.stats().Cached != 1 {
		t.Fatalf("cached = %d, want 1", th.stats().Cached)
	}
	if st.invalidated {
		t.Fatal("scan not published")
	}
}
