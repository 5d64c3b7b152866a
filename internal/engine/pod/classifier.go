package pod

import (
	"fmt"
	"log/slog"

	coreerrors "cxxbind/internal/core/errors"
	"cxxbind/internal/engine/allowlist"
	"cxxbind/internal/engine/api"
)

// Options configures value-safety classification.
type Options struct {
	Known     *api.KnownTypes
	Blocklist *allowlist.Matcher
	// Requests are names the caller asserts are safe by value.
	Requests []string
}

type verdict struct {
	safety api.Safety
	reason string
}

// Checker answers value-safety queries over one graph. Results are memoised, so the
// answer for a type does not depend on the order in which types are asked about.
type Checker struct {
	lookup   func(api.QualifiedName) (*api.Declaration, bool)
	known    *api.KnownTypes
	block    *allowlist.Matcher
	verdicts map[api.QualifiedName]verdict
	visiting api.NameSet
}

func NewChecker(lookup func(api.QualifiedName) (*api.Declaration, bool), opts Options) *Checker {
	known := opts.Known
	if known == nil {
		known = api.DefaultKnownTypes()
	}
	return &Checker{
		lookup:   lookup,
		known:    known,
		block:    opts.Blocklist,
		verdicts: make(map[api.QualifiedName]verdict),
		visiting: api.NewNameSet(),
	}
}

// Safety classifies name, returning the judgment and a human-readable reason when unsafe.
func (c *Checker) Safety(name api.QualifiedName) (api.Safety, string) {
	v := c.classify(name)
	return v.safety, v.reason
}

func (c *Checker) classify(name api.QualifiedName) verdict {
	if v, ok := c.verdicts[name]; ok {
		return v
	}
	if c.visiting.Has(name) {
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s contains itself by value", name)}
	}
	c.visiting.Add(name)
	v := c.compute(name)
	delete(c.visiting, name)
	c.verdicts[name] = v
	return v
}

func (c *Checker) compute(name api.QualifiedName) verdict {
	d, inGraph := c.lookup(name)
	if inGraph && c.block.Match(d.ForeignName()) {
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s is blocked", name)}
	}
	if !inGraph {
		if k, ok := c.known.Lookup(name); ok {
			if k.ValueSafe {
				return verdict{safety: api.SafeByValue}
			}
			return verdict{api.UnsafeByValue, fmt.Sprintf("%s is not trivially relocatable", name)}
		}
		if c.block.Match(string(name)) {
			return verdict{api.UnsafeByValue, fmt.Sprintf("%s is blocked", name)}
		}
		return verdict{api.SafetyUnknown, fmt.Sprintf("%s is unknown", name)}
	}

	switch d.Kind {
	case api.KindEnum, api.KindCType:
		return verdict{safety: api.SafeByValue}
	case api.KindForward:
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s is incomplete", name)}
	case api.KindSubclass:
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s is a subclass with foreign overrides", name)}
	case api.KindErrorMarker:
		return verdict{api.SafetyUnknown, fmt.Sprintf("%s could not be generated", name)}
	case api.KindTypedef:
		target := d.Typedef.Target
		if target.IsComplex() {
			return verdict{api.UnsafeByValue, fmt.Sprintf("%s aliases %s, which is not a plain type", name, target)}
		}
		inner := c.classify(target.Name)
		if inner.safety == api.SafeByValue {
			return inner
		}
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s aliases %s: %s", name, target.Name, inner.reason)}
	case api.KindStruct:
		return c.classifyStruct(d)
	}
	return verdict{api.SafetyUnknown, fmt.Sprintf("%s is a %s, not a type", name, d.Kind)}
}

func (c *Checker) classifyStruct(d *api.Declaration) verdict {
	if d.Struct.HasVtable {
		return verdict{api.UnsafeByValue, fmt.Sprintf("%s has a vtable", d.Name)}
	}
	for _, base := range d.Struct.Bases {
		if v := c.classify(base); v.safety != api.SafeByValue {
			return verdict{api.UnsafeByValue, fmt.Sprintf("%s has base %s: %s", d.Name, base, v.reason)}
		}
	}
	for _, f := range d.Struct.Fields {
		held := f.Type.Contained()
		if held == "" {
			// Pointers and references copy as plain addresses.
			continue
		}
		if v := c.classify(held); v.safety != api.SafeByValue {
			return verdict{api.UnsafeByValue, fmt.Sprintf("%s has field %s of type %s: %s", d.Name, f.Name, f.Type, v.reason)}
		}
	}
	return verdict{safety: api.SafeByValue}
}

// Classify attaches a value-safety judgment to every type declaration, then checks the
// caller's requests against the fully propagated result. A request that does not hold
// is a fatal UNSAFE_POD_REQUEST error.
func Classify(g *api.Graph[api.Parsed], opts Options) (*api.Graph[api.Classified], error) {
	c := NewChecker(g.Get, opts)
	safe := 0
	for _, d := range g.Decls() {
		if !d.Kind.IsType() {
			continue
		}
		v := c.classify(d.Name)
		d.Analysis.Safety = v.safety
		d.Analysis.SafetyReason = v.reason
		if v.safety == api.SafeByValue {
			safe++
		} else {
			slog.Debug("type is not safe by value", "decl", d.Name, "reason", v.reason)
		}
	}
	slog.Debug("value-safety classification complete", "safe", safe, "decls", g.Len())

	if err := c.checkRequests(opts.Requests); err != nil {
		return nil, err
	}
	return api.Advance[api.Classified](g), nil
}

func (c *Checker) checkRequests(requests []string) error {
	for _, req := range requests {
		name := api.QualifiedName(req)
		if _, ok := c.lookup(name); !ok && !c.known.Has(name) {
			return coreerrors.Newf(coreerrors.CodeUnsafePodRequest, "requested POD type %s does not exist", name).
				WithContext(coreerrors.CtxDecl, req)
		}
		if v := c.classify(name); v.safety != api.SafeByValue {
			return coreerrors.Newf(coreerrors.CodeUnsafePodRequest, "type %s was requested as POD but is not safe by value", name).
				WithContext(coreerrors.CtxDecl, req).
				WithContext(coreerrors.CtxReason, v.reason)
		}
	}
	return nil
}
