// Package iterator provides the pull-based source abstraction consumed by
// the mapping engine.
//
// An Iterator is lazy, forward-only, and consumed exactly once — elements
// are produced on demand and never rewound. Exhaustion is signalled by a
// (zero, false, nil) return from Next, which is the expected termination
// condition and never an error.
//
// # Usage
//
//	src := iterator.Range(0, 20)
//	for {
//	    v, ok, err := src.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    use(v)
//	}
package iterator
