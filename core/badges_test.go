package core

import (
	"reflect"
	"testing"
)

func testBadges() []BadgeDefinition {
	return []BadgeDefinition{
		{ID: "review_guru_10", Category: "contribution", Rarity: "rare", Predicate: CounterThreshold{Counter: CounterReviews, Threshold: 10}},
		{ID: "first_layover", Category: "travel", Rarity: "common", Predicate: CounterThreshold{Counter: CounterLayoverCheckins, Threshold: 1}},
		{ID: "city_expert", Category: "travel", Rarity: "epic", Predicate: PerEntityThreshold{Family: FamilyCityCheckins, Threshold: 5}},
		{ID: "founding_crew", Category: "cohort", Rarity: "legendary", Predicate: Manual{}},
	}
}

func TestEvaluateBadgesIdempotent(t *testing.T) {
	p := NewProfile("ana")
	p.Counters[CounterReviews] = 10

	earned := EvaluateBadges(p, testBadges())
	if !reflect.DeepEqual(earned, []BadgeID{"review_guru_10"}) {
		t.Fatalf("got %v", earned)
	}

	p.Badges["review_guru_10"] = struct{}{}
	if again := EvaluateBadges(p, testBadges()); len(again) != 0 {
		t.Fatalf("replay on unchanged profile must earn nothing, got %v", again)
	}
}

func TestEvaluateBadgesPerEntity(t *testing.T) {
	p := NewProfile("ana")
	p.PerEntity[FamilyCityCheckins] = map[string]int64{"CLT": 5, "ORD": 3}

	earned := EvaluateBadges(p, testBadges())
	if !reflect.DeepEqual(earned, []BadgeID{"city_expert:CLT"}) {
		t.Fatalf("only CLT crossed the threshold, got %v", earned)
	}

	// a second user with the same counters earns the same instance independently
	q := NewProfile("bo")
	q.PerEntity[FamilyCityCheckins] = map[string]int64{"CLT": 5}
	if earned := EvaluateBadges(q, testBadges()); !reflect.DeepEqual(earned, []BadgeID{"city_expert:CLT"}) {
		t.Fatalf("got %v", earned)
	}
}

func TestEvaluateBadgesSkipsManual(t *testing.T) {
	p := NewProfile("ana")
	p.Counters[CounterReviews] = 1000
	for _, id := range EvaluateBadges(p, testBadges()) {
		if id == "founding_crew" {
			t.Fatal("manual badges are never auto-awarded")
		}
	}
}

func TestEvaluateBadgesSkipsMalformed(t *testing.T) {
	defs := []BadgeDefinition{
		{ID: "", Predicate: CounterThreshold{Counter: CounterReviews, Threshold: 1}},
		{ID: "zero_threshold", Predicate: CounterThreshold{Counter: CounterReviews, Threshold: 0}},
		{ID: "no_predicate"},
		{ID: "ok_badge", Predicate: CounterThreshold{Counter: CounterReviews, Threshold: 1}},
	}
	p := NewProfile("ana")
	p.Counters[CounterReviews] = 5
	earned := EvaluateBadges(p, defs)
	if !reflect.DeepEqual(earned, []BadgeID{"ok_badge"}) {
		t.Fatalf("malformed definitions must be skipped, got %v", earned)
	}
}

func TestProgressFor(t *testing.T) {
	p := NewProfile("ana")
	p.Counters[CounterReviews] = 7
	p.Counters[CounterLayoverCheckins] = 4
	p.Badges["first_layover"] = struct{}{}
	p.PerEntity[FamilyCityCheckins] = map[string]int64{"CLT": 2}

	progress := ProgressFor(p, testBadges())
	byID := map[BadgeID]BadgeProgress{}
	for _, pr := range progress {
		byID[pr.BadgeID] = pr
	}

	if pr := byID["review_guru_10"]; pr.Earned || pr.Remaining != 3 {
		t.Fatalf("review_guru_10: %+v", pr)
	}
	if pr := byID["first_layover"]; !pr.Earned || pr.Remaining != 0 {
		t.Fatalf("first_layover: %+v", pr)
	}
	if pr := byID["city_expert:CLT"]; pr.Earned || pr.Remaining != 3 {
		t.Fatalf("city_expert:CLT: %+v", pr)
	}
	if _, ok := byID["founding_crew"]; ok {
		t.Fatal("manual badges have no progress entry")
	}
}
