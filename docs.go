package restcore

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultDocsPath is where the documentation handler is mounted when
// enabled without an explicit path.
const DefaultDocsPath = "/docs"

// docsResource is the documentation document for one resource.
type docsResource struct {
	Name    string       `json:"name"`
	Methods []docsMethod `json:"methods"`
}

type docsMethod struct {
	Name         string `json:"name"`
	Verb         string `json:"verb"`
	Template     string `json:"template"`
	Unstructured bool   `json:"unstructured,omitempty"`
}

// docsHandler serves API documentation derived from the resource registry.
// GET <path> lists every resource; GET <path>/<resource> describes one.
type docsHandler struct {
	path     string
	registry *Registry
	match    Matcher
}

func newDocsHandler(path string, reg *Registry) *docsHandler {
	return &docsHandler{
		path:     path,
		registry: reg,
		match:    And(MethodIs(http.MethodGet), Or(PathIs(path), PathPrefix(path+"/"))),
	}
}

func (h *docsHandler) ShouldHandle(req *Request) bool {
	return h.match.Match(req)
}

func (h *docsHandler) HandleRequest(_ context.Context, req *Request, _ *RequestContext, cb Callback) {
	rest := strings.TrimPrefix(strings.TrimPrefix(req.Path, h.path), "/")
	var doc any
	if rest == "" {
		resources := make([]docsResource, 0, len(h.registry.Resources()))
		for _, r := range h.registry.Resources() {
			resources = append(resources, describeResource(r))
		}
		doc = struct {
			Resources []docsResource `json:"resources"`
		}{Resources: resources}
	} else {
		r, ok := h.registry.Lookup(rest)
		if !ok {
			cb.OnError(buildPreRoutingError(req, NewRoutingError(http.StatusNotFound, "no documentation for "+rest)))
			return
		}
		doc = describeResource(r)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		cb.OnError(err)
		return
	}
	header := make(http.Header)
	header.Set("Content-Type", MediaTypeJSON)
	cb.OnSuccess(&RestResponse{Status: http.StatusOK, Header: header, Body: body})
}

func describeResource(r *ResourceDescriptor) docsResource {
	methods := make([]docsMethod, 0, len(r.Methods))
	for _, m := range r.Methods {
		methods = append(methods, docsMethod{
			Name:         m.Name,
			Verb:         m.Verb,
			Template:     m.Template,
			Unstructured: m.Unstructured,
		})
	}
	return docsResource{Name: r.Name, Methods: methods}
}
