// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
//
// SPDX-License-Identifier: Apache-2.0
package routes

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "civil date",
			value: "2025-06-15",
			want:  time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 timestamp",
			value: "2025-06-15T10:30:00Z",
			want:  time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			value:   "15/06/2025",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseDate(tt.value)
			if tt.wantErr {
				if !errors.Is(err, errInvalidDate) {
					t.Errorf("parseDate() error = %v, want errInvalidDate", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("parseDate() error = %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("parseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
