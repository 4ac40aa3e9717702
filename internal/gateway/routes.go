package gateway

import (
	"sort"
	"strings"
)

// Route binds one discovered (method, path template) to its origin service.
type Route struct {
	Service  string
	Method   string
	Template string
	Summary  string

	segments []segment
}

type segment struct {
	literal string
	param   string
}

// RouteTable is the gateway's routable surface. It is built once from
// discovery results and never mutated afterwards; concurrent request handling
// reads it without locking.
type RouteTable struct {
	byMethod map[string][]*Route
}

func NewRouteTable() *RouteTable {
	return &RouteTable{byMethod: make(map[string][]*Route)}
}

func (t *RouteTable) Add(route *Route) {
	route.segments = compileTemplate(route.Template)
	t.byMethod[route.Method] = append(t.byMethod[route.Method], route)
}

// Freeze orders routes so templates with fewer parameters match first, making
// /api/v1/carts/summary win over /api/v1/carts/{user_uuid}.
func (t *RouteTable) Freeze() {
	for _, routes := range t.byMethod {
		sort.SliceStable(routes, func(i, j int) bool {
			return paramCount(routes[i].segments) < paramCount(routes[j].segments)
		})
	}
}

func (t *RouteTable) Len() int {
	n := 0
	for _, routes := range t.byMethod {
		n += len(routes)
	}
	return n
}

// Match finds the route for a live request path and extracts its template
// parameters.
func (t *RouteTable) Match(method, path string) (*Route, map[string]string, bool) {
	parts := splitPath(path)
	for _, route := range t.byMethod[method] {
		if params, ok := matchSegments(route.segments, parts); ok {
			return route, params, true
		}
	}
	return nil, nil, false
}

// Expand substitutes parameter values back into the route's template,
// producing the concrete downstream path.
func (r *Route) Expand(params map[string]string) string {
	var b strings.Builder
	for _, seg := range r.segments {
		b.WriteByte('/')
		if seg.param != "" {
			b.WriteString(params[seg.param])
		} else {
			b.WriteString(seg.literal)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func compileTemplate(template string) []segment {
	parts := splitPath(template)
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			segments = append(segments, segment{param: part[1 : len(part)-1]})
		} else {
			segments = append(segments, segment{literal: part})
		}
	}
	return segments
}

func matchSegments(segments []segment, parts []string) (map[string]string, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range segments {
		if seg.param != "" {
			if parts[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func paramCount(segments []segment) int {
	n := 0
	for _, seg := range segments {
		if seg.param != "" {
			n++
		}
	}
	return n
}
