// Package buildenv derives the process environment a toolchain needs. The
// result is an Overlay value applied only when spawning the external tool,
// never to the orchestrator's own environment.
package buildenv

import (
	"os"
	"runtime"
	"sort"
	"strings"
)

// Overlay is an ordered set of environment additions and overrides on top of
// an inherited environment. PATH contributions are collected separately and
// prefixed in the order they were added, so earlier contributions win on
// lookup. An overlay may also replace the inherited environment wholesale,
// which models compiler suites that require their own shell environment.
type Overlay struct {
	base         map[string]string
	replaced     bool // inherited env is discarded, even for an empty base
	vars         []Var
	pathPrefixes []string
}

// Var is one environment assignment.
type Var struct {
	Key, Value string
}

// Set records an assignment, overriding any inherited value.
func (o *Overlay) Set(key, value string) {
	o.vars = append(o.vars, Var{Key: key, Value: value})
}

// PrependPath records dir as a PATH prefix.
func (o *Overlay) PrependPath(dir string) {
	o.pathPrefixes = append(o.pathPrefixes, dir)
}

// ReplaceBase discards the inherited environment in favor of env. Assignments
// and PATH prefixes recorded on the overlay still apply on top of env.
func (o *Overlay) ReplaceBase(env map[string]string) {
	o.base = env
	o.replaced = true
}

// Vars returns the recorded assignments in order.
func (o *Overlay) Vars() []Var {
	out := make([]Var, len(o.vars))
	copy(out, o.vars)
	return out
}

// IsZero reports whether the overlay changes nothing.
func (o *Overlay) IsZero() bool {
	return !o.replaced && len(o.vars) == 0 && len(o.pathPrefixes) == 0
}

// Environ merges the overlay onto inherited ("KEY=value" form, as returned by
// os.Environ) and returns the merged environment with sorted keys.
func (o *Overlay) Environ(inherited []string) []string {
	env := make(map[string]string, len(inherited))
	if o.replaced {
		for k, v := range o.base {
			env[k] = v
		}
	} else {
		for _, kv := range inherited {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	for _, v := range o.vars {
		env[v.Key] = v.Value
	}
	if len(o.pathPrefixes) > 0 {
		parts := append([]string(nil), o.pathPrefixes...)
		if cur := env[pathKey(env)]; cur != "" {
			parts = append(parts, cur)
		}
		env[pathKey(env)] = strings.Join(parts, string(os.PathListSeparator))
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// pathKey finds the spelling of PATH in env. Windows environments are
// case-insensitive and often carry "Path".
func pathKey(env map[string]string) string {
	if runtime.GOOS == "windows" {
		for k := range env {
			if strings.EqualFold(k, "PATH") {
				return k
			}
		}
	}
	return "PATH"
}
