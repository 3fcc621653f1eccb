package bfs

import "sync/atomic"

type volumeState int32

const (
	volumeInit volumeState = iota
	volumeMounted
	volumeClosed
)

// Set moves the state forward by one step, returns false if already there.
func (s *volumeState) Set(val volumeState) bool {
	if val == 0 {
		return false
	}
	return atomic.CompareAndSwapInt32((*int32)(s), int32(val-1), int32(val))
}

func (s *volumeState) After(val volumeState) bool {
	return atomic.LoadInt32((*int32)(s)) >= int32(val)
}
