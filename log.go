package sheaf

import "github.com/go-kit/log"

// logWrapper carries the structured logger a Stack was configured with. It
// exists only so Stack doesn't need a direct field of an interface type
// that zero-values to a nil logger (go-kit/log.Logger calls panic on a nil
// receiver); defaultConfig always installs log.NewNopLogger().
type logWrapper struct {
	l log.Logger
}
