package layout

import "sync"

// Request is the "layout requested" flag shared between a trigger (a key
// press, a file watcher, an HTTP call) and the host's update loop. The zero
// value is ready to use and unset.
type Request struct {
	mu        sync.Mutex
	requested bool
}

// Set raises the flag.
func (r *Request) Set() {
	r.mu.Lock()
	r.requested = true
	r.mu.Unlock()
}

// TakeRequested reports whether the flag was raised and clears it.
func (r *Request) TakeRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	was := r.requested
	r.requested = false
	return was
}
