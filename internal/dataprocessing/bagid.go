package dataprocessing

import "strings"

// ParseBagID splits a composite bag identifier into named sub-fields.
//
// The identifier is a comma-delimited list of segments; a segment is either a
// "key=value" pair or a "key: value" pair. Segments matching neither pattern
// contribute nothing. The "=" pairs are collected first and the ": " pairs are
// applied on top, so a key appearing in both forms takes its ": " value. That
// ordering matches the upstream data source exactly and must not be "fixed".
// A segment like "=" yields an empty-string key, which is preserved for the
// same reason.
func ParseBagID(raw string) map[string]string {
	segments := strings.Split(raw, ",")
	fields := make(map[string]string)

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if i := strings.Index(seg, "="); i >= 0 {
			fields[seg[:i]] = seg[i+1:]
		}
	}

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if i := strings.Index(seg, ": "); i >= 0 {
			fields[seg[:i]] = seg[i+2:]
		}
	}

	return fields
}
