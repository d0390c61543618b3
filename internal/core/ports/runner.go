package ports

// Runner is the execution strategy of a bus. It decides when and where
// a submitted task actually runs (inline, on a worker, deferred...).
type Runner interface {
	Submit(task func())
}

// RunnerFunc adapts an ordinary function to the Runner interface.
type RunnerFunc func(task func())

// Submit calls f(task).
func (f RunnerFunc) Submit(task func()) {
	f(task)
}

// KeyedRunner hands out one Runner per key. A bus asks for the runner of
// its own name, so the runner may pin each bus to its own worker.
type KeyedRunner interface {
	Runner
	For(key string) Runner
}
