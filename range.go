package echodb

import "cmp"

// Range is a half-open key interval: Lo is inclusive, Hi is exclusive. A
// range where Lo >= Hi is valid and simply matches no keys.
type Range[K cmp.Ordered] struct {
	Lo K
	Hi K
}

// Pair is a single key-value result from Transaction.Scan.
type Pair[K cmp.Ordered, V any] struct {
	Key K
	Val V
}
