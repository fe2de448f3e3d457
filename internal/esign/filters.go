package esign

import "net/url"

// Filters contains optional filtering criteria for document listings.
// Nil fields are ignored.
type Filters struct {
	Status *Status `json:"status,omitempty"`
}

// Apply returns the documents matching all set filters.
func (f Filters) Apply(docs []DocumentState) []DocumentState {
	if f.Status == nil {
		return docs
	}

	out := docs[:0:0]
	for _, doc := range docs {
		if doc.Status == *f.Status {
			out = append(out, doc)
		}
	}
	return out
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		status := Status(s)
		f.Status = &status
	}

	return f
}
