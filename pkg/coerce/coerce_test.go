package coerce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/igtools/igmigrate/pkg/coerce"
)

func TestFlexibleDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"padded day-first", "05/03/2024", "2024-03-05", true},
		{"unpadded day-first", "5/3/2024", "2024-03-05", true},
		{"leading and trailing space", " 25/12/2023 ", "2023-12-25", true},
		{"iso input rejected", "2024-03-05", "", false},
		{"us order impossible day", "03/25/2024", "", false},
		{"impossible calendar date", "31/02/2024", "", false},
		{"blank", "", "", false},
		{"whitespace only", "   ", "", false},
		{"garbage", "not a date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerce.FlexibleDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidISODate(t *testing.T) {
	valid := []string{"2024-03-05", "2000-02-29", "1999-12-31"}
	for _, s := range valid {
		assert.True(t, coerce.ValidISODate(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"05/03/2024",
		"2024-3-05",  // unpadded month
		"2024-03-5",  // unpadded day
		"2023-02-29", // not a leap year
		"2024-13-01",
		"2024-03-05T00:00:00Z",
	}
	for _, s := range invalid {
		assert.False(t, coerce.ValidISODate(s), "expected %q to be invalid", s)
	}
}

func TestBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", " True ", "1", "yes", "Y", "y"} {
		assert.True(t, coerce.Bool(s), "expected %q to coerce true", s)
	}
	for _, s := range []string{"", "false", "0", "no", "n", "maybe", "yess"} {
		assert.False(t, coerce.Bool(s), "expected %q to coerce false", s)
	}
}

func TestOptional(t *testing.T) {
	got, ok := coerce.Optional("  hello ")
	assert.True(t, ok)
	assert.Equal(t, "hello", got)

	_, ok = coerce.Optional("   ")
	assert.False(t, ok)

	_, ok = coerce.Optional("")
	assert.False(t, ok)
}
