package board

import "testing"

func TestNormalizeSpaceKey(t *testing.T) {
	cases := map[string]string{
		"Mediterranean Avenue": "MEDITERRANEAN_AVENUE",
		"B. & O. Railroad":     "B_O_RAILROAD",
		"  GO  ":                "GO",
		"St. James Place":      "ST_JAMES_PLACE",
	}
	for in, want := range cases {
		if got := NormalizeSpaceKey(in); got != want {
			t.Errorf("NormalizeSpaceKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpaceKeysUnique(t *testing.T) {
	if len(SpaceKeyByIndex) != Size {
		t.Fatalf("expected %d space keys, got %d", Size, len(SpaceKeyByIndex))
	}
	seen := make(map[string]bool)
	for _, key := range SpaceKeyByIndex {
		if seen[key] {
			t.Fatalf("duplicate space key %q", key)
		}
		seen[key] = true
	}
}

func TestGroupIndexesCoverProperties(t *testing.T) {
	for group, indexes := range GroupIndexes {
		if len(indexes) == 0 {
			t.Errorf("group %s has no members", group)
		}
	}
	// Every color group in HouseCostByGroup should have board members.
	for group := range HouseCostByGroup {
		if len(GroupIndexes[group]) == 0 {
			t.Errorf("house-cost group %s missing from board", group)
		}
	}
}

func TestOwnableKindsMatchPriceSpaces(t *testing.T) {
	for _, s := range Spaces() {
		if OwnableKinds[s.Kind] && s.Price <= 0 {
			t.Errorf("ownable space %d (%s) has no price", s.Index, s.Name)
		}
	}
}
