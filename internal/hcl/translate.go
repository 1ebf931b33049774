package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/avask/buildgrid/internal/config"
)

// translateOverride converts a decoded override block into the agnostic
// model, resolving the free-form match block into axis/value pairs.
func (l *Loader) translateOverride(ov *overrideBlock) (*config.Override, error) {
	out := &config.Override{
		Label:      ov.Label,
		Flags:      ov.Flags,
		Target:     ov.Target,
		TargetName: ov.TargetName,
		Env:        ov.Env,
	}

	if ov.Match == nil {
		return nil, fmt.Errorf("override %q has no match block", ov.Label)
	}

	attrs, diags := ov.Match.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("override %q: invalid match block: %s", ov.Label, diags.Error())
	}

	out.Match = make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("override %q: match %s: %s", ov.Label, name, diags.Error())
		}
		if val.Type() != cty.String {
			return nil, fmt.Errorf("override %q: match %s must be a string", ov.Label, name)
		}
		out.Match[name] = val.AsString()
	}

	return out, nil
}
