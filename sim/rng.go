package sim

// offspringSeed derives an independent, reproducible stream seed for one
// offspring slot from the master seed, the reproduction epoch and the slot
// index. Splitmix64 finalization keeps neighboring slots uncorrelated, so
// reproduction can run in parallel without sharing a stream.
func offspringSeed(master int64, epoch, slot int) int64 {
	z := uint64(master)
	z ^= (uint64(epoch) + 1) * 0x9e3779b97f4a7c15
	z ^= (uint64(slot) + 1) * 0xbf58476d1ce4e5b9
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z)
}
