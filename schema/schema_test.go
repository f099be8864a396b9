package schema

import "testing"

func eventDef() *Definition {
	return &Definition{
		Type:    "product",
		Subtype: "ticketed_event",
		Fields: []FieldDef{
			{Name: "capacity", Kind: KindNumber, Required: true},
			{Name: "venue", Kind: KindString},
			{Name: "tags", Kind: KindList},
			{Name: "pricing", Kind: KindObject},
			{Name: "published", Kind: KindBool},
		},
	}
}

func TestValidate(t *testing.T) {
	d := eventDef()

	ok := map[string]any{
		"capacity":  300,
		"venue":     "main hall",
		"tags":      []any{"gala", "spring"},
		"pricing":   map[string]any{"standard": 45.0},
		"published": true,
	}
	if err := d.Validate(ok); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	// Optional fields may be absent.
	if err := d.Validate(map[string]any{"capacity": 300}); err != nil {
		t.Fatalf("minimal payload rejected: %v", err)
	}

	// Floats count as numbers; JSON decoding produces them.
	if err := d.Validate(map[string]any{"capacity": 300.0}); err != nil {
		t.Fatalf("float capacity rejected: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	d := eventDef()

	cases := []struct {
		name  string
		props map[string]any
	}{
		{"missing required", map[string]any{"venue": "hall"}},
		{"nil required", map[string]any{"capacity": nil}},
		{"unknown field", map[string]any{"capacity": 1, "color": "red"}},
		{"wrong kind string", map[string]any{"capacity": "many"}},
		{"wrong kind list", map[string]any{"capacity": 1, "tags": "gala"}},
		{"wrong kind object", map[string]any{"capacity": 1, "pricing": []any{}}},
	}
	for _, c := range cases {
		if err := d.Validate(c.props); err == nil {
			t.Errorf("%s: payload accepted, want error", c.name)
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindString, KindNumber, KindBool, KindObject, KindList} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("datetime").Valid() {
		t.Error("unknown kind should be invalid")
	}
}
