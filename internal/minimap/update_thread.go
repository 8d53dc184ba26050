package minimap

import (
	"log"
	"sort"
	"sync"
	"voxmap/internal/profiling"
	"voxmap/internal/world"

	"go.uber.org/atomic"
)

// queuedUpdate carries a block snapshot to the worker; nil data evicts the block.
type queuedUpdate struct {
	pos  world.BlockPos
	data *Mapblock
}

// Stats reports update thread counters.
type Stats struct {
	Wakes  uint64 // deferUpdate requests
	Cycles uint64 // completed doUpdate runs
	Scans  uint64 // published rescans
	Cached int64  // blocks held in the cache
	Queued int64  // updates waiting to be merged
}

// updateThread merges block snapshots into its cache and rebuilds the scan
// buffer of the shared state. The cache and spare buffer are only touched
// from doUpdate.
type updateThread struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []queuedUpdate
	wake    bool
	stop    bool
	running bool
	wg      sync.WaitGroup

	state  *scanState
	blocks map[world.BlockPos]*Mapblock
	spare  []Pixel

	wakes  atomic.Uint64
	cycles atomic.Uint64
	scans  atomic.Uint64
	cached atomic.Int64
	queued atomic.Int64

	panicked bool
}

func newUpdateThread(state *scanState) *updateThread {
	t := &updateThread{
		state:  state,
		blocks: make(map[world.BlockPos]*Mapblock),
		spare:  make([]Pixel, MinimapMax*MinimapMax),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Start launches the worker goroutine.
func (t *updateThread) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stop = false
	t.wg.Add(1)
	go t.run()
}

// Stop asks the worker to exit and waits for it.
func (t *updateThread) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.stop = true
	t.cond.Signal()
	t.mu.Unlock()

	t.wg.Wait()

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *updateThread) run() {
	defer t.wg.Done()
	for {
		t.mu.Lock()
		for !t.wake && len(t.queue) == 0 && !t.stop {
			t.cond.Wait()
		}
		if t.stop {
			t.mu.Unlock()
			return
		}
		t.wake = false
		t.mu.Unlock()

		t.doUpdate()
	}
}

// deferUpdate schedules a worker cycle. It never blocks on the worker.
func (t *updateThread) deferUpdate() {
	t.wakes.Inc()
	t.mu.Lock()
	t.wake = true
	t.cond.Signal()
	t.mu.Unlock()
}

// enqueueBlock queues a snapshot for pos, replacing one still pending for
// the same block. Ownership of data passes to the thread.
func (t *updateThread) enqueueBlock(pos world.BlockPos, data *Mapblock) {
	t.mu.Lock()
	replaced := false
	for i := range t.queue {
		if t.queue[i].pos == pos {
			t.queue[i].data = data
			replaced = true
			break
		}
	}
	if !replaced {
		t.queue = append(t.queue, queuedUpdate{pos: pos, data: data})
	}
	t.queued.Store(int64(len(t.queue)))
	t.mu.Unlock()

	t.deferUpdate()
}

// popBlockUpdate removes the oldest queued update.
func (t *updateThread) popBlockUpdate() (queuedUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return queuedUpdate{}, false
	}
	u := t.queue[0]
	t.queue[0] = queuedUpdate{}
	t.queue = t.queue[1:]
	if len(t.queue) == 0 {
		t.queue = nil
	}
	t.queued.Store(int64(len(t.queue)))
	return u, true
}

// doUpdate drains the queue into the cache and rescans if the shared state asks for it.
func (t *updateThread) doUpdate() {
	defer profiling.Track("minimap.doUpdate")()
	defer func() {
		if r := recover(); r != nil {
			if !t.panicked {
				log.Printf("minimap: update failed: %v", r)
				t.panicked = true
			}
		}
	}()
	defer t.cycles.Inc()

	changed := false
	for {
		u, ok := t.popBlockUpdate()
		if !ok {
			break
		}
		if u.data != nil {
			t.blocks[u.pos] = u.data
		} else {
			delete(t.blocks, u.pos)
		}
		changed = true
	}
	t.cached.Store(int64(len(t.blocks)))

	t.rescan(changed)
}

func (t *updateThread) rescan(cacheChanged bool) {
	st := t.state
	st.mu.Lock()
	if !st.mode.Type.scans() {
		st.mu.Unlock()
		return
	}
	if !st.invalidated {
		// the last scan has not been consumed yet
		if cacheChanged {
			st.needsRescan = true
		}
		st.mu.Unlock()
		return
	}
	pos, mode, gen := st.pos, st.mode, st.modeGen
	st.needsRescan = false
	st.mu.Unlock()

	buf := t.spare[:mode.MapSize*mode.MapSize]
	t.getMap(buf, pos, mode.MapSize, mode.ScanHeight)

	st.mu.Lock()
	if st.modeGen != gen {
		st.mu.Unlock()
		t.deferUpdate()
		return
	}
	t.spare, st.scan = st.scan[:cap(st.scan)], buf
	st.scanPos = pos
	st.invalidated = false
	st.mu.Unlock()

	t.scans.Inc()
}

// getMap fills dst (size*size pixels, indexed x + z*size) from the cached
// blocks intersecting the size x height x size volume centred on pos.
// Blocks are visited bottom-up so the highest surface of a column wins.
func (t *updateThread) getMap(dst []Pixel, pos world.Pos, size, height int) {
	defer profiling.Track("minimap.getMap")()

	clear(dst)

	posMin := pos.Sub(world.Pos{X: size / 2, Y: height / 2, Z: size / 2})
	posMax := posMin.Add(world.Pos{X: size - 1, Y: height - 1, Z: size - 1})
	blockMin := world.NodeToBlock(posMin)
	blockMax := world.NodeToBlock(posMax)

	var visible []world.BlockPos
	for bp := range t.blocks {
		if bp.X < blockMin.X || bp.X > blockMax.X ||
			bp.Y < blockMin.Y || bp.Y > blockMax.Y ||
			bp.Z < blockMin.Z || bp.Z > blockMax.Z {
			continue
		}
		visible = append(visible, bp)
	}
	sort.Slice(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})

	for _, bp := range visible {
		src := t.blocks[bp]
		nodeMin := bp.Origin()
		lo := nodeMin.Max(posMin)
		hi := nodeMin.Add(world.Pos{X: world.BlockSize - 1, Y: world.BlockSize - 1, Z: world.BlockSize - 1}).Min(posMax)

		yOff := nodeMin.Y - posMin.Y
		for z := lo.Z; z <= hi.Z; z++ {
			for x := lo.X; x <= hi.X; x++ {
				sp := src.At(x-nodeMin.X, z-nodeMin.Z)
				dp := &dst[(x-posMin.X)+(z-posMin.Z)*size]
				dp.AirCount += sp.AirCount
				if !sp.Node.IsAir() {
					dp.Node = sp.Node
					dp.Height = uint16(min(max(yOff+int(sp.Height), 0), height-1))
				}
			}
		}
	}
}

func (t *updateThread) stats() Stats {
	return Stats{
		Wakes:  t.wakes.Load(),
		Cycles: t.cycles.Load(),
		Scans:  t.scans.Load(),
		Cached: t.cached.Load(),
		Queued: t.queued.Load(),
	}
}

// release drops the cache and every pending update. The worker must be stopped.
func (t *updateThread) release() {
	t.mu.Lock()
	t.queue = nil
	t.queued.Store(0)
	t.mu.Unlock()
	clear(t.blocks)
	t.cached.Store(0)
}
