package command

import (
	"fmt"

	"github.com/crossforge/mason/internal/toolchain"
)

// TargetList is an ordered, deduplicated list of build targets. First
// occurrence wins; order of addition is reproduced in Args.
type TargetList struct {
	names []string
	seen  map[string]bool
}

// Add appends name when cond holds and the name was not added before.
func (t *TargetList) Add(cond bool, name string) {
	if !cond || name == "" || t.seen[name] {
		return
	}
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	t.seen[name] = true
	t.names = append(t.names, name)
}

// Names returns the targets in addition order.
func (t *TargetList) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Args renders the targets as cmake --build arguments.
func (t *TargetList) Args() []string {
	var args []string
	for _, n := range t.names {
		args = append(args, "--target", n)
	}
	return args
}

// Targets validates the install/strip/target options against the descriptor
// and returns the ordered target list for the build command.
func Targets(d *toolchain.Descriptor, opts *Options) (*TargetList, error) {
	if opts.Install && opts.Strip {
		return nil, ErrConflictingInstallMode
	}
	if opts.Strip && !d.IsMake {
		return nil, fmt.Errorf("%w: toolchain %s uses generator %q",
			ErrUnsupportedStripTarget, d.Name, d.Generator)
	}

	installTarget := "install"
	if opts.Strip {
		installTarget = "install/strip"
	}

	list := &TargetList{}
	list.Add(opts.LocalInstall(), installTarget)
	list.Add(opts.Target != "", opts.Target)
	return list, nil
}
