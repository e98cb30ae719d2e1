package dispatchloop

import "reflect"

// topology is the resolved, construction-time analysis of a builderState:
// the idiomatic-Go stand-in for the original's consteval routing tables.
// It never changes after New/Builder.Build returns.
type topology struct {
	loopReceiversFor   map[reflect.Type][]*declaration
	threadReceiversFor map[reflect.Type][]*declaration
	producerCount      map[*declaration]int
	inboxKind          map[*declaration]string
	needsSharedSide    bool
}

// emitsAny reports whether any type in emits also appears in receives.
func emitsAny(emits, receives []reflect.Type) bool {
	for _, e := range emits {
		for _, r := range receives {
			if e == r {
				return true
			}
		}
	}
	return false
}

// analyzeTopology validates and resolves a builderState's declarations into
// a topology. It is a pure function of its input: same declarations, same
// result, matching the core spec's requirement that routing be fixed before
// the loop ever dispatches an event.
func analyzeTopology(state *builderState) (*topology, error) {
	var errs []error

	seen := make(map[reflect.Type]*declaration)
	for _, d := range state.receivers {
		if prev, ok := seen[d.receiverType]; ok {
			errs = append(errs, wireErr(d.receiverType, nil, "duplicate receiver type: already declared as "+prev.name()))
			continue
		}
		seen[d.receiverType] = d
	}

	t := &topology{
		loopReceiversFor:   make(map[reflect.Type][]*declaration),
		threadReceiversFor: make(map[reflect.Type][]*declaration),
		producerCount:      make(map[*declaration]int),
		inboxKind:          make(map[*declaration]string),
	}

	for _, d := range state.receivers {
		for _, r := range d.receives {
			switch d.threadMode {
			case LoopHostedMode:
				t.loopReceiversFor[r] = append(t.loopReceiversFor[r], d)
			case ThreadHostedMode:
				t.threadReceiversFor[r] = append(t.threadReceiversFor[r], d)
			}
		}
	}

	for _, target := range state.receivers {
		if target.threadMode != ThreadHostedMode {
			continue
		}
		count := 0
		loopEmits := false
		for _, producer := range state.receivers {
			if producer == target || !emitsAny(producer.emits, target.receives) {
				continue
			}
			switch producer.threadMode {
			case LoopHostedMode:
				// Every loop-hosted emitter runs on the same loop goroutine,
				// so together they form at most one producer, regardless of
				// how many distinct loop-hosted receivers emit into R.
				loopEmits = true
			case ThreadHostedMode:
				count++
			}
		}
		if loopEmits {
			count++
		}
		for _, ext := range state.externals {
			if emitsAny(ext.emits, target.receives) {
				count++
			}
		}
		t.producerCount[target] = count
		if count <= 1 {
			t.inboxKind[target] = "spsc"
		} else {
			t.inboxKind[target] = "mpsc"
		}
	}

	for _, producer := range state.receivers {
		var loopTargets []reflect.Type
		for r := range t.loopReceiversFor {
			loopTargets = append(loopTargets, r)
		}
		if producer.threadMode == ThreadHostedMode && emitsAny(producer.emits, loopTargets) {
			t.needsSharedSide = true
		}
	}
	for _, ext := range state.externals {
		var loopTargets []reflect.Type
		for r := range t.loopReceiversFor {
			loopTargets = append(loopTargets, r)
		}
		if emitsAny(ext.emits, loopTargets) {
			t.needsSharedSide = true
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return t, nil
}
