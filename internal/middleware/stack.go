package middleware

import (
	"cmp"
	"context"
	"net/http"
	"slices"
)

const traceContextKey contextKey = "trace"

// Named pairs a middleware with the identifier used in the priority list.
type Named struct {
	Name       string
	Middleware Middleware
}

// Stack collects named middleware in registration order and composes them
// in priority order.
type Stack struct {
	entries []Named
}

// Use registers mw under name.
func (s *Stack) Use(name string, mw Middleware) *Stack {
	s.entries = append(s.entries, Named{Name: name, Middleware: mw})
	return s
}

// Names returns the registered names in registration order.
func (s *Stack) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Handler wraps h with the stack sorted by priority. Every middleware
// appends its name to the request trace before it runs; see TraceFromContext.
func (s *Stack) Handler(h http.Handler, priority []string) http.Handler {
	sorted := Sort(s.entries, priority)
	mw := make([]Middleware, 0, len(sorted)+1)
	mw = append(mw, startTrace)
	for _, e := range sorted {
		mw = append(mw, traced(e.Name, e.Middleware))
	}
	return Chain(h, mw...)
}

// Sort orders entries by their position in priority. Entries whose name is
// not in priority keep their slot; ranked entries are redistributed over
// the slots the ranked entries occupied, lowest priority index first.
//
//	entries:  [a x b c]   priority: [c a]
//	result:   [c x b a]
func Sort(entries []Named, priority []string) []Named {
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}

	var slots []int
	var ranked []Named
	for i, e := range entries {
		if _, ok := rank[e.Name]; ok {
			slots = append(slots, i)
			ranked = append(ranked, e)
		}
	}
	slices.SortStableFunc(ranked, func(a, b Named) int {
		return cmp.Compare(rank[a.Name], rank[b.Name])
	})

	out := slices.Clone(entries)
	for k, i := range slots {
		out[i] = ranked[k]
	}
	return out
}

// TraceFromContext returns the names of the stack middleware that have run
// for this request so far, outermost first.
func TraceFromContext(ctx context.Context) []string {
	t, _ := ctx.Value(traceContextKey).(*[]string)
	if t == nil {
		return nil
	}
	return slices.Clone(*t)
}

func startTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(traceContextKey).(*[]string); ok {
			next.ServeHTTP(w, r)
			return
		}
		trail := make([]string, 0, 8)
		ctx := context.WithValue(r.Context(), traceContextKey, &trail)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traced(name string, mw Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		inner := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := r.Context().Value(traceContextKey).(*[]string); ok {
				*t = append(*t, name)
			}
			inner.ServeHTTP(w, r)
		})
	}
}
