package metrics

import "runtime"

func numGoroutine() int {
	return runtime.NumGoroutine()
}
