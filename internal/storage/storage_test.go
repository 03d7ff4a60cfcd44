package storage

import "testing"

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{
			name:     "session row",
			input:    sessionRow{},
			expected: "chat_id,step,form_data,updated_at",
		},
		{
			name: "skips untagged fields",
			input: struct {
				ID   int64 `db:"id"`
				Memo string
				Name string `db:"name"`
			}{},
			expected: "id,name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fields(tt.input); got != tt.expected {
				t.Errorf("fields() = %q, want %q", got, tt.expected)
			}
		})
	}
}
