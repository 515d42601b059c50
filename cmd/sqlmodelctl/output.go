package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// printRows renders rows as either a simple fixed-width text table or
// newline-delimited JSON objects, treating terminal formatting as outside
// this CLI's job (spec §1) rather than pulling in a table-formatting
// dependency this diagnostic tool doesn't need.
func printRows(rows []sqlmodel.Row, asJSON bool) error {
	if len(rows) == 0 {
		fmt.Println("(0 rows)")
		return nil
	}

	if asJSON {
		return printRowsJSON(rows)
	}
	return printRowsTable(rows)
}

func printRowsTable(rows []sqlmodel.Row) error {
	cols := rows[0].Columns().Names()
	widths := make([]int, len(cols))
	cells := make([][]string, len(rows))

	for i, c := range cols {
		widths[i] = len(c)
	}
	for ri, row := range rows {
		cells[ri] = make([]string, len(cols))
		for ci := range cols {
			v, err := row.At(ci)
			if err != nil {
				return err
			}
			s := cellText(v)
			cells[ri][ci] = s
			if len(s) > widths[ci] {
				widths[ci] = len(s)
			}
		}
	}

	writeRow(cols, widths)
	sep := make([]string, len(cols))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep, widths)
	for _, row := range cells {
		writeRow(row, widths)
	}
	fmt.Printf("(%d rows)\n", len(rows))
	return nil
}

func writeRow(cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], c)
	}
	fmt.Println(strings.Join(parts, "  "))
}

func cellText(v sqlmodel.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}

func printRowsJSON(rows []sqlmodel.Row) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, row := range rows {
		obj := make(map[string]any, row.Len())
		for i, name := range row.Columns().Names() {
			v, err := row.At(i)
			if err != nil {
				return err
			}
			if v.IsNull() {
				obj[name] = nil
			} else {
				obj[name] = v.String()
			}
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}
