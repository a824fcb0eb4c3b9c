package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Quality Systems", "acme-quality-systems"},
		{"  Rossi & Figli S.r.l.  ", "rossi-figli-s-r-l"},
		{"UPPER case", "upper-case"},
		{"già-slug", "gi-slug"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "Slugify(%q)", tt.name)
	}
}

func TestSlugPattern(t *testing.T) {
	assert.True(t, slugPattern.MatchString("acme-quality-2"))
	assert.False(t, slugPattern.MatchString("Acme"))
	assert.False(t, slugPattern.MatchString("acme_quality"))
	assert.False(t, slugPattern.MatchString("acme quality"))
}
