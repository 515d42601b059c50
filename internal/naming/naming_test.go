package naming

import "testing"

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"User":        "user",
		"UserAccount": "user_account",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"ID":          "id",
		"OrderItem":   "order_item",
	}
	for in, want := range cases {
		if got := ToSnakeCase(in); got != want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPluralize(t *testing.T) {
	cases := map[string]string{
		"user":     "users",
		"box":      "boxes",
		"church":   "churches",
		"dish":     "dishes",
		"buzz":     "buzzes",
		"city":     "cities",
		"boy":      "boys",
		"knife":    "knives",
		"leaf":     "leaves",
		"hero":     "heroes",
		"photo":    "photos",
		"piano":    "pianos",
		"person":   "people",
		"child":    "children",
		"mouse":    "mice",
		"datum":    "data",
		"index":    "indices",
		"matrix":   "matrices",
		"analysis": "analyses",
	}
	for in, want := range cases {
		if got := Pluralize(in); got != want {
			t.Errorf("Pluralize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPluralizeIdempotentOnIrregulars(t *testing.T) {
	for _, plural := range []string{"people", "children", "mice", "data"} {
		if got := Pluralize(plural); got != plural {
			t.Errorf("Pluralize(%q) = %q, want unchanged", plural, got)
		}
	}
}

func TestTableName(t *testing.T) {
	cases := map[string]string{
		"User":      "users",
		"OrderItem": "order_items",
		"Person":    "people",
		"Category":  "categories",
	}
	for in, want := range cases {
		if got := TableName(in); got != want {
			t.Errorf("TableName(%q) = %q, want %q", in, got, want)
		}
	}
}
