package core

import (
	"math"
	"testing"
)

func TestAddSafe(t *testing.T) {
	if v, err := AddSafe(10, 5); err != nil || v != 15 {
		t.Fatalf("got %v %v", v, err)
	}
	if _, err := AddSafe(math.MaxInt64, 1); err == nil {
		t.Fatalf("expected overflow")
	}
}

func TestNormalizeUserID(t *testing.T) {
	id, err := NormalizeUserID(" Alice ")
	if err != nil || id != "alice" {
		t.Fatalf("got %v %v", id, err)
	}
	if _, err := NormalizeUserID("   "); err == nil {
		t.Fatalf("expected empty error")
	}
}

func TestValidateBadgeID(t *testing.T) {
	if err := ValidateBadgeID("review_guru_10"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := ValidateBadgeID("city_expert:CLT"); err != nil {
		t.Fatalf("composite ids are valid: %v", err)
	}
	if err := ValidateBadgeID("bad badge"); err == nil {
		t.Fatalf("expected invalid badge err")
	}
}

func TestBadgeKeyID(t *testing.T) {
	k := BadgeKey{FamilyID: "city_expert", EntityID: "CLT"}
	if k.ID() != "city_expert:CLT" {
		t.Fatalf("got %q", k.ID())
	}
}

func TestProfileClone(t *testing.T) {
	p := NewProfile("ana")
	p.CMS = 120
	p.Counters[CounterReviews] = 3
	p.Badges["first_layover"] = struct{}{}
	p.PerEntity[FamilyCityCheckins] = map[string]int64{"CLT": 2}

	cp := p.Clone()
	cp.Counters[CounterReviews] = 99
	cp.Badges["other"] = struct{}{}
	cp.PerEntity[FamilyCityCheckins]["CLT"] = 99

	if p.Counters[CounterReviews] != 3 || len(p.Badges) != 1 || p.PerEntity[FamilyCityCheckins]["CLT"] != 2 {
		t.Fatal("clone shares state with original")
	}
}
