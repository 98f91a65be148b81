/*
Copyright 2026 The ArchiveText Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package textconv

import "github.com/archivetext/archivetext/go/charset"

type pairKey struct {
	from, to string
}

// Registry caches conversion profiles per (from, to) pair. One
// registry belongs to one handle (an archive reader or writer) and,
// like everything in this package, is not safe for concurrent use.
type Registry struct {
	profiles map[pairKey]*Profile
	system   string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[pairKey]*Profile)}
}

// SystemCharset reports the charset substituted for an empty name,
// resolved from the process locale on first use and cached for the
// registry's lifetime.
func (r *Registry) SystemCharset() string {
	if r.system == "" {
		r.system = charset.SystemCharset()
	}
	return r.system
}

// Get returns the cached profile for the pair, building and caching
// one on first request. Empty names mean the system charset. Options
// only take effect on the call that builds the profile; later calls
// for the same pair return the original.
func (r *Registry) Get(from, to string, opts Options) (*Profile, error) {
	if from == "" {
		from = r.SystemCharset()
	}
	if to == "" {
		to = r.SystemCharset()
	}
	key := pairKey{from, to}
	if p, ok := r.profiles[key]; ok {
		return p, nil
	}
	p, err := NewProfile(from, to, opts)
	if err != nil {
		return nil, err
	}
	r.profiles[key] = p
	return p, nil
}

// Close disposes every cached profile. The registry can be reused
// afterwards; profiles obtained from it cannot.
func (r *Registry) Close() {
	for key, p := range r.profiles {
		p.Close()
		delete(r.profiles, key)
	}
}
