package shortener

// extractor pulls a candidate shortened URL out of a decoded JSON response
type extractor struct {
	name string
	get  func(payload map[string]any) (string, bool)
}

// shortURLFields name the shortened link unambiguously, in priority order
var shortURLFields = []string{
	"shortenedUrl",
	"shortened_url",
	"shortUrl",
	"short_url",
	"shortlink",
}

// genericURLFields may also carry an echo of the submitted destination, so
// they are only consulted after every specific field
var genericURLFields = []string{
	"url",
	"link",
	"result",
}

// extractors is the ordered list tried against every JSON response: specific
// fields at the top level and under "data", then the generic ones likewise
var extractors = buildExtractors()

func buildExtractors() []extractor {
	out := make([]extractor, 0, (len(shortURLFields)+len(genericURLFields))*2)
	for _, fields := range [][]string{shortURLFields, genericURLFields} {
		for _, field := range fields {
			out = append(out, extractor{name: field, get: topLevel(field)})
		}
		for _, field := range fields {
			out = append(out, extractor{name: "data." + field, get: nested("data", field)})
		}
	}
	return out
}

func topLevel(field string) func(map[string]any) (string, bool) {
	return func(payload map[string]any) (string, bool) {
		s, ok := payload[field].(string)
		return s, ok
	}
}

func nested(parent, field string) func(map[string]any) (string, bool) {
	return func(payload map[string]any) (string, bool) {
		inner, ok := payload[parent].(map[string]any)
		if !ok {
			return "", false
		}
		s, ok := inner[field].(string)
		return s, ok
	}
}

// extractShortURL returns the first candidate that is an absolute http(s) URL
// other than the destination itself
func extractShortURL(payload map[string]any, destination string) (string, bool) {
	for _, ex := range extractors {
		candidate, ok := ex.get(payload)
		if !ok || candidate == destination {
			continue
		}
		if shortURL, err := validateShortURL(candidate); err == nil {
			return shortURL, true
		}
	}
	return "", false
}
