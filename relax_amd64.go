package sheaf

// cpuPause issues the amd64 PAUSE instruction, the architecture relax hint
// used between lock-free CAS retries.
func cpuPause()
