package fabric

import "strings"

// Evaluator decides whether a resolved context holds a capability.
// Implementations must be side-effect-free; the engine is responsible for
// logging denials.
type Evaluator interface {
	Check(rc *Context, capability, resourceHint string) Decision
}

// DefaultEvaluator returns the built-in deny-by-default evaluator over the
// fixed role→capability table.
func DefaultEvaluator() Evaluator { return &grantsEvaluator{} }

type grantsEvaluator struct{}

func (e *grantsEvaluator) Check(rc *Context, capability, resourceHint string) Decision {
	if rc == nil {
		return Decision{Reason: "no resolved context"}
	}

	// The elevated bypass is the single implicit allow path. The engine
	// flags every operation taken under it in the action log.
	if rc.Elevated {
		return Decision{Allowed: true, Reason: "elevated context"}
	}

	for _, granted := range grants[rc.Role] {
		if matchCapability(granted, capability) {
			return Decision{Allowed: true}
		}
	}

	reason := "role " + string(rc.Role) + " does not grant " + capability
	if resourceHint != "" {
		reason += " on " + resourceHint
	}
	return Decision{Reason: reason}
}

// matchCapability reports whether a granted capability covers a required
// one. The grants table holds "resource:action" strings where a trailing
// '*' stands for every action on the resource, and a bare "*" for every
// capability.
func matchCapability(granted, required string) bool {
	if granted == required || granted == "*" {
		return true
	}
	if strings.HasSuffix(granted, "*") {
		return strings.HasPrefix(required, strings.TrimSuffix(granted, "*"))
	}
	return false
}
