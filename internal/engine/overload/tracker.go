package overload

import (
	"strconv"

	"cxxbind/internal/engine/api"
)

type methodKey struct {
	self api.QualifiedName
	name string
}

// Tracker hands out bridge names for one scope. Free functions and each type's methods
// count independently; the first use of a name keeps it and the Nth repeat gets suffix N.
type Tracker struct {
	funcs   map[string]int
	methods map[methodKey]int
}

func NewTracker() *Tracker {
	return &Tracker{
		funcs:   make(map[string]int),
		methods: make(map[methodKey]int),
	}
}

// FunctionName returns the bridge name for the next free function called name.
func (t *Tracker) FunctionName(name string) string {
	n := t.funcs[name]
	t.funcs[name] = n + 1
	return suffixed(name, n)
}

// MethodName returns the bridge name for the next method of self called name.
func (t *Tracker) MethodName(self api.QualifiedName, name string) string {
	k := methodKey{self: self, name: name}
	n := t.methods[k]
	t.methods[k] = n + 1
	return suffixed(name, n)
}

func suffixed(name string, n int) string {
	if n == 0 {
		return name
	}
	return name + strconv.Itoa(n)
}
