package model

import (
	"sort"
	"strings"
)

// ColumnPrefix is stripped from a column id to obtain the status of its tasks
const ColumnPrefix = "col-"

// Well-known columns the completion toggle moves tasks between
const (
	ColumnTodo = ColumnPrefix + "todo"
	ColumnDone = ColumnPrefix + "done"
)

// Column represents a board bucket that implies the status of its tasks
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
	Color string `json:"color"`
}

// StatusForColumn derives a task status from its column id
func StatusForColumn(columnID string) string {
	return strings.TrimPrefix(columnID, ColumnPrefix)
}

// SortColumns orders columns by Order, keeping insertion order for ties
func SortColumns(cols []Column) {
	sort.SliceStable(cols, func(i, j int) bool {
		return cols[i].Order < cols[j].Order
	})
}

// ColumnPalette holds the colours new columns are drawn from
var ColumnPalette = []string{
	"#6C757D", "#4ECDC4", "#FFB347", "#95E1A3", "#FF6B6B",
	"#A78BFA", "#60A5FA", "#F472B6", "#FFE66D", "#34D399",
}

// DefaultColumns returns the columns a fresh board starts with
func DefaultColumns() []Column {
	return []Column{
		{ID: ColumnPrefix + "backlog", Name: "Backlog", Order: 0, Color: "#6C757D"},
		{ID: ColumnTodo, Name: "To Do", Order: 1, Color: "#60A5FA"},
		{ID: ColumnPrefix + "in-progress", Name: "In Progress", Order: 2, Color: "#FFB347"},
		{ID: ColumnPrefix + "review", Name: "Review", Order: 3, Color: "#A78BFA"},
		{ID: ColumnDone, Name: "Done", Order: 4, Color: "#95E1A3"},
	}
}
