package host

const (
	// DefaultMaxUploadKiB is the size limit used when none is configured.
	DefaultMaxUploadKiB = 512
	// MinUploadKiB and MaxUploadKiB bound the configurable limit.
	MinUploadKiB = 10
	MaxUploadKiB = 8192
)

// SizePolicy is the maximum upload size.
type SizePolicy struct {
	kib int
}

// NewSizePolicy clamps kib to [MinUploadKiB, MaxUploadKiB]. Zero or
// negative values select DefaultMaxUploadKiB.
func NewSizePolicy(kib int) SizePolicy {
	switch {
	case kib <= 0:
		kib = DefaultMaxUploadKiB
	case kib < MinUploadKiB:
		kib = MinUploadKiB
	case kib > MaxUploadKiB:
		kib = MaxUploadKiB
	}
	return SizePolicy{kib: kib}
}

// KiB returns the effective limit in KiB.
func (p SizePolicy) KiB() int {
	if p.kib == 0 {
		return DefaultMaxUploadKiB
	}
	return p.kib
}

// Limit returns the effective limit in bytes.
func (p SizePolicy) Limit() int64 {
	return int64(p.KiB()) * 1024
}

// Allows reports whether n bytes fit.
func (p SizePolicy) Allows(n int64) bool {
	return n >= 0 && n <= p.Limit()
}
