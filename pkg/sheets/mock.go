package sheets

import (
	"context"
	"sync"
)

// MockClient is an in-memory spreadsheet for testing
type MockClient struct {
	mu        sync.Mutex
	tables    map[string]*Table
	fetchErr  map[string]error
	appendErr error
	appended  map[string][][]string
	fetches   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithTable installs the raw records (header first) for a tab
func WithTable(tab string, records [][]string) MockOption {
	return func(m *MockClient) {
		m.tables[tab] = NewTable(tab, records)
	}
}

// WithFetchError makes FetchTable fail for tab; an empty tab fails every fetch
func WithFetchError(tab string, err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr[tab] = err
	}
}

// WithAppendError sets an error to return from AppendRow
func WithAppendError(err error) MockOption {
	return func(m *MockClient) {
		m.appendErr = err
	}
}

// NewMockClient creates a mock holding the sample club unless options replace tabs
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		tables:   make(map[string]*Table),
		fetchErr: make(map[string]error),
		appended: make(map[string][][]string),
	}
	for tab, records := range DefaultMockTables() {
		m.tables[tab] = NewTable(tab, records)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchTable returns the configured tab or error
func (m *MockClient) FetchTable(_ context.Context, tab string) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	if err := m.fetchErr[""]; err != nil {
		return nil, err
	}
	if err := m.fetchErr[tab]; err != nil {
		return nil, err
	}
	t, ok := m.tables[tab]
	if !ok {
		return NewTable(tab, nil), nil
	}
	cp := *t
	cp.Rows = append([][]string(nil), t.Rows...)
	return &cp, nil
}

// AppendRow records the row and adds it to the tab
func (m *MockClient) AppendRow(_ context.Context, tab string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended[tab] = append(m.appended[tab], row)
	if t, ok := m.tables[tab]; ok {
		t.Rows = append(t.Rows, row)
	}
	return nil
}

// Appended returns the rows appended to tab (for testing)
func (m *MockClient) Appended(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appended[tab]
}

// Fetches returns how many FetchTable calls were made (for testing)
func (m *MockClient) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// DefaultMockTables returns a small club: four men, four women, two venues
func DefaultMockTables() map[string][][]string {
	return map[string][][]string{
		TabMembers: {
			{"number", "first_name", "last_name", "gender", "birth_date", "role"},
			{"101", "Pablo", "Garcia", "M", "1985-04-02", ""},
			{"102", "Luis", "Moreno", "M", "1979-11-20", ""},
			{"103", "Jorge", "Navarro", "M", "1990-01-15", ""},
			{"104", "Andres", "Ruiz", "M", "1972-06-30", "coach"},
			{"201", "Marta", "Lopez", "F", "1988-09-09", ""},
			{"202", "Elena", "Sanz", "F", "1982-02-14", ""},
			{"203", "Irene", "Vidal", "F", "1995-07-07", ""},
			{"204", "Carmen", "Ortiz", "F", "1976-12-01", "admin"},
		},
		TabVenues: {
			{"id", "name", "course_length"},
			{"olympic", "Olympic Pool", "50"},
			{"club", "Club Pool", "25"},
		},
		TabCategoryRules: {
			{"ruleset", "min_age_sum", "max_age_sum", "label"},
			{"rfen", "80", "119", "+80"},
			{"rfen", "120", "159", "+120"},
			{"rfen", "160", "199", "+160"},
			{"rfen", "200", "239", "+200"},
		},
		TabTimeTrials: {
			{"id", "swimmer", "stroke", "distance", "time", "date", "venue"},
			{"", "101", "FREE", "50", "27.10", "2025-01-10", "club"},
			{"", "101", "BACK", "50", "33.40", "2025-01-10", "club"},
			{"", "101", "BREAST", "50", "36.00", "2025-01-10", "club"},
			{"", "101", "FLY", "50", "30.20", "2025-01-10", "club"},
			{"", "102", "FREE", "50", "28.30", "2025-01-10", "club"},
			{"", "102", "BACK", "50", "31.90", "2025-01-10", "club"},
			{"", "102", "BREAST", "50", "35.10", "2025-01-10", "club"},
			{"", "102", "FLY", "50", "31.50", "2025-01-10", "club"},
			{"", "103", "FREE", "50", "26.80", "2025-01-10", "club"},
			{"", "103", "BREAST", "50", "34.20", "2025-01-10", "club"},
			{"", "104", "FREE", "50", "30.00", "2025-01-10", "club"},
			{"", "104", "FLY", "50", "33.00", "2025-01-10", "club"},
			{"", "201", "FREE", "50", "30.50", "2025-01-10", "club"},
			{"", "201", "BACK", "50", "35.20", "2025-01-10", "club"},
			{"", "202", "FREE", "50", "31.70", "2025-01-10", "club"},
			{"", "202", "BREAST", "50", "39.80", "2025-01-10", "club"},
			{"", "203", "FREE", "50", "29.90", "2025-01-10", "club"},
			{"", "203", "FLY", "50", "33.60", "2025-01-10", "club"},
			{"", "204", "FREE", "50", "33.00", "2025-01-10", "club"},
			{"", "204", "BACK", "50", "38.40", "2025-01-10", "club"},
		},
		TabRelayResults: {
			{"id", "swimmer_1", "swimmer_2", "swimmer_3", "swimmer_4", "time", "venue", "date"},
			{"r1", "101", "102", "201", "202", "2:05.40", "olympic", "2024-06-01"},
		},
	}
}

var _ Client = (*MockClient)(nil)
