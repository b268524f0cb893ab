package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInstalled(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "empty", value: "", want: false},
		{name: "whitespace only", value: "   ", want: false},
		{name: "male", value: "Male", want: true},
		{name: "female padded", value: "  FEMALE ", want: true},
		{name: "insert", value: "insert", want: true},
		{name: "one", value: "1", want: true},
		{name: "two", value: "2", want: true},
		{name: "three is not in vocabulary", value: "3", want: false},
		{name: "yes", value: "Yes", want: true},
		{name: "installed", value: "INSTALLED", want: true},
		{name: "x", value: "x", want: true},
		{name: "gpm substring", value: "1.5 GPM aerator", want: true},
		{name: "gpm bare", value: "gpm", want: true},
		{name: "no", value: "no", want: false},
		{name: "partial word", value: "maleable", want: false},
		{name: "not installed text", value: "not installed", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInstalled(tt.value))
		})
	}
}

func TestIsToiletInstalled(t *testing.T) {
	assert.True(t, IsToiletInstalled(" X "))
	assert.True(t, IsToiletInstalled("yes"))
	assert.True(t, IsToiletInstalled("1"))
	assert.False(t, IsToiletInstalled("2"))
	assert.False(t, IsToiletInstalled("male"))
	assert.False(t, IsToiletInstalled(""))
}
