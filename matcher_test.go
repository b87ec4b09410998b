package restcore

import "testing"

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		req     *Request
		want    bool
	}{
		{
			name:    "PathIs exact match",
			matcher: PathIs("/docs"),
			req:     getReq("GET", "/docs"),
			want:    true,
		},
		{
			name:    "PathIs rejects subpath",
			matcher: PathIs("/docs"),
			req:     getReq("GET", "/docs/users"),
			want:    false,
		},
		{
			name:    "PathPrefix matches subpath",
			matcher: PathPrefix("/docs/"),
			req:     getReq("GET", "/docs/users"),
			want:    true,
		},
		{
			name:    "PathPrefix rejects unrelated path",
			matcher: PathPrefix("/docs/"),
			req:     getReq("GET", "/users"),
			want:    false,
		},
		{
			name:    "MethodIs matches verb",
			matcher: MethodIs("POST"),
			req:     getReq("POST", "/mux"),
			want:    true,
		},
		{
			name:    "MethodIs rejects other verb",
			matcher: MethodIs("POST"),
			req:     getReq("GET", "/mux"),
			want:    false,
		},
		{
			name:    "And requires every matcher",
			matcher: And(MethodIs("POST"), PathIs("/mux")),
			req:     getReq("POST", "/mux"),
			want:    true,
		},
		{
			name:    "And fails on one mismatch",
			matcher: And(MethodIs("POST"), PathIs("/mux")),
			req:     getReq("GET", "/mux"),
			want:    false,
		},
		{
			name:    "Or matches on any",
			matcher: Or(PathIs("/debug/stats"), PathPrefix("/debug/stats/")),
			req:     getReq("GET", "/debug/stats/raw"),
			want:    true,
		},
		{
			name:    "Or fails when none match",
			matcher: Or(PathIs("/debug/stats"), PathPrefix("/debug/stats/")),
			req:     getReq("GET", "/debug/other"),
			want:    false,
		},
		{
			name:    "MatcherFunc adapts a function",
			matcher: MatcherFunc(func(r *Request) bool { return r.RawQuery != "" }),
			req:     &Request{Method: "GET", Path: "/users", RawQuery: "q=1"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matcher.Match(tt.req); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
