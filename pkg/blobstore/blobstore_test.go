package blobstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidenceObjectKey(t *testing.T) {
	key := EvidenceObjectKey(12, 34, "photo.JPG")
	assert.True(t, strings.HasPrefix(key, "audits/12/items/34/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestEvidenceObjectKeyWithoutExtension(t *testing.T) {
	key := EvidenceObjectKey(1, 2, "evidence")
	assert.True(t, strings.HasPrefix(key, "audits/1/items/2/"))
	assert.False(t, strings.Contains(key, "."))
}

func TestEvidenceObjectKeysNeverCollide(t *testing.T) {
	a := EvidenceObjectKey(1, 2, "photo.png")
	b := EvidenceObjectKey(1, 2, "photo.png")
	assert.NotEqual(t, a, b)
}

func TestPublicURL(t *testing.T) {
	s := &Store{bucket: "audit-evidence"}
	assert.Equal(t,
		"https://storage.googleapis.com/audit-evidence/audits/1/items/2/x.png",
		s.PublicURL("audits/1/items/2/x.png"))
}
