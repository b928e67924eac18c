// Package shellvars holds the shell's variable table: name/value entries
// with an "external" attribute recording whether they were inherited from
// the starting environment.
package shellvars

import "strings"

type Var struct {
	Value    string
	External bool
}

// Vars is keyed by name. Lookup is by name; mutation happens via
// SimpleAssignment execution at the top level, the cd builtin (PWD), and
// shell startup (PPID, PWD).
type Vars struct {
	entries map[string]Var
}

// FromEnviron imports a process environment (as returned by os.Environ)
// into a fresh Vars, marking every entry external.
func FromEnviron(environ []string) *Vars {
	v := &Vars{entries: make(map[string]Var, len(environ))}
	for _, e := range environ {
		name, value, _ := strings.Cut(e, "=")
		v.entries[name] = Var{Value: value, External: true}
	}
	return v
}

func (v *Vars) Get(name string) (string, bool) {
	val, ok := v.entries[name]
	return val.Value, ok
}

// Set upserts name=value, preserving External if the name already existed.
func (v *Vars) Set(name, value string) {
	entry := v.entries[name]
	entry.Value = value
	v.entries[name] = entry
}

// SetExternal upserts name=value and marks it external, used for
// shell-maintained variables such as PPID and PWD.
func (v *Vars) SetExternal(name, value string) {
	v.entries[name] = Var{Value: value, External: true}
}

func (v *Vars) MarkExternal(name string) {
	entry := v.entries[name]
	entry.External = true
	v.entries[name] = entry
}

// ExternalEntries returns every external=true entry as "name=value",
// suitable as the base of a child's envp before prefix-assignment
// overrides are applied.
func (v *Vars) ExternalEntries() []string {
	out := make([]string, 0, len(v.entries))
	for name, entry := range v.entries {
		if entry.External {
			out = append(out, name+"="+entry.Value)
		}
	}
	return out
}

// Clone performs a shallow copy suitable for a subshell's isolated vars.
func (v *Vars) Clone() *Vars {
	cp := make(map[string]Var, len(v.entries))
	for k, val := range v.entries {
		cp[k] = val
	}
	return &Vars{entries: cp}
}

// Snapshot returns a copy of every entry, used to ship the full variable
// table (not just the external=true subset envp carries) across the
// re-exec boundary to a subshell/async-list worker.
func (v *Vars) Snapshot() map[string]Var {
	return v.Clone().entries
}

// FromMap rebuilds a Vars from a Snapshot, used on the receiving end of a
// worker re-exec.
func FromMap(m map[string]Var) *Vars {
	cp := make(map[string]Var, len(m))
	for k, val := range m {
		cp[k] = val
	}
	return &Vars{entries: cp}
}
