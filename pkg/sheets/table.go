// Package sheets reads and writes the club spreadsheet.
//
// The spreadsheet has one tab per record type. Every tab starts with a header
// row; columns are addressed by header name, so their order does not matter.
package sheets

import (
	"strings"
)

// Tab names
const (
	TabMembers       = "members"
	TabTimeTrials    = "time_trials"
	TabCategoryRules = "category_rules"
	TabRelayResults  = "relay_results"
	TabVenues        = "venues"
)

// Tabs lists every tab read by a sync, in load order
var Tabs = []string{TabMembers, TabVenues, TabCategoryRules, TabTimeTrials, TabRelayResults}

// Table is the raw content of one tab
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// NewTable splits raw records into header and data rows, dropping blank rows
func NewTable(name string, records [][]string) *Table {
	t := &Table{Name: name}
	if len(records) == 0 {
		return t
	}
	t.Header = records[0]
	for _, r := range records[1:] {
		if blank(r) {
			continue
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// Columns maps normalized header names to their index
func (t *Table) Columns() map[string]int {
	cols := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := normalizeHeader(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
