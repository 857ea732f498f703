//go:build !linux

package pps

// Open is only implemented on linux, where the gpio character device exists
func Open(opts Options) (Pulser, error) {
	return nil, ErrUnsupported
}
