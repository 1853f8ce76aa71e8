package memento

import "strings"

// ParseTags splits a comma separated tags field. Segments are trimmed and empty
// ones dropped; the result is never nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
