package meshvk

// CoreRegistry records GPU object release functions in creation order
// and runs them strictly in reverse, so dependents always go before the
// objects they were created from. Release is idempotent.
type CoreRegistry struct {
	names    []string
	releases []func()
	released bool
}

func NewCoreRegistry() *CoreRegistry {
	return &CoreRegistry{}
}

// Track appends a named release function. The name is only used for
// teardown logging and debugging.
func (r *CoreRegistry) Track(name string, release func()) {
	r.names = append(r.names, name)
	r.releases = append(r.releases, release)
	r.released = false
}

func (r *CoreRegistry) Len() int {
	return len(r.releases)
}

// Release runs every tracked release in reverse creation order and
// clears the registry. Repeated calls are no-ops until new objects are
// tracked again.
func (r *CoreRegistry) Release() {
	if r.released {
		return
	}
	for i := len(r.releases) - 1; i >= 0; i-- {
		r.releases[i]()
	}
	r.names = r.names[:0]
	r.releases = r.releases[:0]
	r.released = true
}
