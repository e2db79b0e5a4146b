package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validEntry() *Entry {
	return &Entry{
		ID:      "entry-1",
		Name:    "grilled chicken salad",
		EatenOn: NewDate(2025, time.January, 2),
	}
}

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Entry)
		wantErr string
	}{
		{name: "valid", mutate: func(*Entry) {}},
		{name: "missing id", mutate: func(e *Entry) { e.ID = "" }, wantErr: "id is required"},
		{name: "missing name", mutate: func(e *Entry) { e.Name = "" }, wantErr: "name is required"},
		{name: "missing eaten_on", mutate: func(e *Entry) { e.EatenOn = Date{} }, wantErr: "eaten_on is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := validEntry()
			tc.mutate(e)
			err := e.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestChangeEvent_Validate(t *testing.T) {
	e := validEntry()

	tests := []struct {
		name    string
		event   ChangeEvent
		wantErr bool
	}{
		{name: "insert with after", event: ChangeEvent{Kind: ChangeInsert, After: e}},
		{name: "insert without after", event: ChangeEvent{Kind: ChangeInsert}, wantErr: true},
		{name: "delete with before", event: ChangeEvent{Kind: ChangeDelete, Before: e}},
		{name: "delete without before", event: ChangeEvent{Kind: ChangeDelete}, wantErr: true},
		{name: "update with both", event: ChangeEvent{Kind: ChangeUpdate, Before: e, After: e}},
		{name: "update missing before", event: ChangeEvent{Kind: ChangeUpdate, After: e}, wantErr: true},
		{name: "update missing after", event: ChangeEvent{Kind: ChangeUpdate, Before: e}, wantErr: true},
		{name: "unknown kind", event: ChangeEvent{Kind: "upsert", Before: e, After: e}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
