package sqlite

import "testing"

func TestCountPlaceholders(t *testing.T) {
	cases := map[string]int{
		"SELECT 1":                               0,
		"SELECT * FROM t WHERE id = ?":            1,
		"INSERT INTO t (a, b) VALUES (?, ?)":      2,
		"SELECT * FROM t WHERE name = '?literal?'": 0,
	}
	for sql, want := range cases {
		if got := countPlaceholders(sql); got != want {
			t.Errorf("countPlaceholders(%q) = %d, want %d", sql, got, want)
		}
	}
}
