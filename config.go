package sheaf

import "github.com/go-kit/log"

const defaultPageSize = 4096

// config collects the optional knobs New accepts. None of them change the
// core push/pop/teardown semantics; they only select ambient behavior
// (page size, back-off strategy, logging) the way the C library selects
// them at compile time via macros.
type config struct {
	pageSize uintptr
	relax    RelaxBackend
	logger   log.Logger
}

func defaultConfig() config {
	return config{
		pageSize: defaultPageSize,
		relax:    RelaxArch,
		logger:   log.NewNopLogger(),
	}
}

// Option configures a Stack at construction time.
type Option func(*config)

// WithPageSize overrides the page size (default 4096) used for every node
// page and ring page, and for the one-page bound New applies to the slot
// count. It must match what the PageProvider actually hands back.
func WithPageSize(size uintptr) Option {
	return func(c *config) { c.pageSize = size }
}

// WithRelax selects the back-off primitive used between CAS retries.
func WithRelax(backend RelaxBackend) Option {
	return func(c *config) { c.relax = backend }
}

// WithLogger installs a structured logger used for the non-fatal events the
// spec allows to be observed: the teardown accounting-page exhaustion
// warning, and (nothing else — the core logs nothing on its hot path).
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
