package sheaf

// cpuPause issues the arm64 ISB SY instruction, the architecture relax
// hint used between lock-free CAS retries — matching the original C
// library's "isb sy" arch relax rather than YIELD.
func cpuPause()
