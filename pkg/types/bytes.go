package types

import "fmt"

// Bytes is a uint64 wrapper representing a size in bytes.
type Bytes uint64

const (
	KiB Bytes = 1 << 10
	MiB Bytes = 1 << 20
	GiB Bytes = 1 << 30
	TiB Bytes = 1 << 40
)

// FromMB converts a whole number of MiB, as taken by the memory thresholds,
// to Bytes.
func FromMB(mb uint64) Bytes { return Bytes(mb) * MiB }

// Humanized returns a human-readable string with automatic unit (B, KB, MB, GB, TB).
func (b Bytes) Humanized() string {
	v := float64(b)
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2f TB", v/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2f GB", v/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2f MB", v/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2f KB", v/float64(KiB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// WholeMB returns the size in MiB, truncated. Memory thresholds compare
// against this value.
func (b Bytes) WholeMB() uint64 { return uint64(b / MiB) }
