package natsadapter

import (
	"strings"
	"testing"

	"github.com/nats-io/nats.go"
)

// covers handles the trailing ">" wildcard, the only one Streams uses.
func covers(filter, subject string) bool {
	if prefix, ok := strings.CutSuffix(filter, ">"); ok {
		return strings.HasPrefix(subject, prefix) && len(subject) > len(prefix)
	}
	return filter == subject
}

func TestStreams_CoverEverySubject(t *testing.T) {
	streams := Streams()
	for _, subject := range []string{SubjectRouteComputed, SubjectLocationFallback} {
		var owners []string
		for _, s := range streams {
			for _, f := range s.Subjects {
				if covers(f, subject) {
					owners = append(owners, s.Name)
				}
			}
		}
		if len(owners) != 1 {
			t.Errorf("subject %s should belong to exactly one stream, got %v", subject, owners)
		}
	}
}

func TestStreams_Retention(t *testing.T) {
	names := map[string]bool{}
	for _, s := range Streams() {
		if names[s.Name] {
			t.Errorf("duplicate stream %s", s.Name)
		}
		names[s.Name] = true
		if s.Retention != nats.InterestPolicy {
			t.Errorf("%s: expected interest retention, got %v", s.Name, s.Retention)
		}
		if s.MaxAge <= 0 {
			t.Errorf("%s: events must expire", s.Name)
		}
	}
}
