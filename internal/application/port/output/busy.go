package output

import "context"

// BusyGuard marks one pending wait. Release may be called any number of
// times; only the first call counts.
type BusyGuard interface {
	Release()
}

// BusyTracker is the signal an external test runner polls to know whether
// simulated interactions are still settling.
type BusyTracker interface {
	Delay(reason string) BusyGuard
	Busy() bool
	Pending() int
	WaitIdle(ctx context.Context) error
}
