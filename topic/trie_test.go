package topic

import (
	"sort"
	"testing"
)

func filters(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Filter
	}
	sort.Strings(out)
	return out
}

func TestRegistryExactMatch(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("a/b/c"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	got := filters(r.Match("a/b/c"))
	if len(got) != 1 || got[0] != "a/b/c" {
		t.Errorf("Match = %v, want [a/b/c]", got)
	}
	if len(r.Match("a/b/d")) != 0 {
		t.Errorf("Match(a/b/d) should not match a/b/c")
	}
}

func TestRegistryPlusWildcard(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("a/+/c"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(r.Match("a/b/c")) != 1 {
		t.Error("a/+/c should match a/b/c")
	}
	if len(r.Match("a/b/x/c")) != 0 {
		t.Error("a/+/c should not match a/b/x/c, + covers exactly one level")
	}
}

func TestRegistryHashWildcard(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("a/#"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	for _, topicName := range []string{"a", "a/b", "a/b/c"} {
		if len(r.Match(topicName)) != 1 {
			t.Errorf("a/# should match %q", topicName)
		}
	}
	if len(r.Match("x/y")) != 0 {
		t.Error("a/# should not match x/y")
	}
}

func TestRegistryHashRejectedUnlessLastLevel(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("a/#/c"); err == nil {
		t.Error("a/#/c should be rejected, # must be the last level")
	}
	if _, err := r.Subscribe("a+/b"); err == nil {
		t.Error("a+/b should be rejected, + must occupy an entire level")
	}
}

func TestRegistryDollarPrefixExcludedFromWildcards(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("+/config"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := r.Subscribe("#"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(r.Match("$SYS/config")) != 0 {
		t.Error("a leading + must not match a topic name starting with $, MQTT-4.7.2-1")
	}
	if len(r.Match("$SYS/uptime")) != 0 {
		t.Error("a bare # must not match a topic name starting with $, MQTT-4.7.2-1")
	}
	if got := filters(r.Match("device/config")); len(got) != 2 || got[0] != "#" || got[1] != "+/config" {
		t.Errorf("Match(device/config) = %v, want [# +/config]: both wildcards still match a non-$ topic", got)
	}
}

func TestRegistrySharedSubscriptionGroup(t *testing.T) {
	r := NewRegistry()
	id, err := r.Subscribe("$share/workers/jobs/+")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	matches := r.Match("jobs/42")
	if len(matches) != 1 {
		t.Fatalf("Match = %v, want 1 hit", matches)
	}
	if matches[0].Group != "workers" {
		t.Errorf("Group = %q, want workers", matches[0].Group)
	}
	if matches[0].ID != id {
		t.Errorf("ID = %d, want %d", matches[0].ID, id)
	}
}

func TestRegistryUnsubscribeRemovesMatch(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Subscribe("a/b"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !r.Unsubscribe("a/b") {
		t.Fatal("Unsubscribe should report it removed a/b")
	}
	if len(r.Match("a/b")) != 0 {
		t.Error("a/b should no longer match after Unsubscribe")
	}
	if r.Unsubscribe("a/b") {
		t.Error("Unsubscribe should report false for an already-removed filter")
	}
}
