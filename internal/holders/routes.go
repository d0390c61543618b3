package holders

import "sort"

// Route handles one event name. It returns false to stop the dispatch chain.
type Route func(payload any) (bool, error)

// Routes is a holder's event table: event name -> route.
type Routes map[string]Route

// Events returns the routed event names, sorted.
func (r Routes) Events() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the route for name. Unrouted names go to fallback, or pass
// through when fallback is nil.
func (r Routes) Dispatch(name string, payload any, fallback func(string, any) (bool, error)) (bool, error) {
	if route, ok := r[name]; ok {
		return route(payload)
	}
	if fallback != nil {
		return fallback(name, payload)
	}
	return true, nil
}
