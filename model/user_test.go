package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{999, 1},
		{1000, 2},
		{2500, 3},
		{9542, 10},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestUserJSONKeys(t *testing.T) {
	u := User{
		ID:           1,
		CreatedAt:    time.Now().UTC(),
		Username:     "alice",
		PasswordHash: "secret-material",
		DisplayName:  "Alice",
		Level:        1,
		XPPoints:     250,
	}

	raw, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var keys map[string]interface{}
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"id", "username", "displayName", "level", "xpPoints", "createdAt"} {
		if _, ok := keys[key]; !ok {
			t.Errorf("user JSON missing %q", key)
		}
	}
	for _, key := range []string{"display_name", "xp_points", "created_at", "passwordHash", "password_hash"} {
		if _, ok := keys[key]; ok {
			t.Errorf("user JSON must not carry %q", key)
		}
	}

	pub, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var pubKeys map[string]interface{}
	if err := json.Unmarshal(pub, &pubKeys); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"displayName", "xpPoints"} {
		if _, ok := pubKeys[key]; !ok {
			t.Errorf("public user JSON missing %q", key)
		}
	}
}
