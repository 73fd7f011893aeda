package tokenid_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/tokenid"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func sampleFields() tokenid.Fields {
	return tokenid.Fields{
		OwnerID:   7,
		OwnerName: "meryem",
		FileName:  "designs/sunset.png",
		FileSize:  20480,
		Title:     "Sunset",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Style:     "watercolor",
		Model:     "sd2-inpainting",
	}
}

func TestGenerate_Format(t *testing.T) {
	id := tokenid.Generate(sampleFields(), time.Unix(1700000000, 123))
	assert.Len(t, id, 64)
	assert.Regexp(t, hexPattern, id)

	empty := tokenid.Generate(tokenid.Fields{}, time.Unix(0, 0))
	assert.Regexp(t, hexPattern, empty)
}

func TestGenerate_DeterministicForSameSample(t *testing.T) {
	at := time.Unix(1700000000, 42)
	assert.Equal(t, tokenid.Generate(sampleFields(), at), tokenid.Generate(sampleFields(), at))
}

func TestGenerate_DiffersByTimestamp(t *testing.T) {
	f := sampleFields()
	a := tokenid.Generate(f, time.Unix(1700000000, 1))
	b := tokenid.Generate(f, time.Unix(1700000000, 2))
	assert.NotEqual(t, a, b)
}

func TestRecord_EscapesDelimiters(t *testing.T) {
	at := time.Unix(1, 0)
	a := tokenid.Fields{OwnerName: "a:b", Title: "t"}
	b := tokenid.Fields{OwnerName: "a", Title: "t"}
	b.FileName = "b"

	assert.NotEqual(t, tokenid.Record(a, at), tokenid.Record(b, at))
	assert.NotEqual(t, tokenid.Generate(a, at), tokenid.Generate(b, at))

	piped := tokenid.Record(tokenid.Fields{Title: `x|y\z`}, at)
	assert.Contains(t, piped, `x\|y\\z`)
}

func TestRecord_FieldOrder(t *testing.T) {
	rec := tokenid.Record(sampleFields(), time.Unix(0, 99))
	assert.Equal(t, `7:meryem|designs/sunset.png:20480|99|Sunset:2025-03-01T12\:00\:00Z:watercolor:sd2-inpainting`, rec)
}

func TestAssign_OnlyOnce(t *testing.T) {
	first, issued := tokenid.Assign("", sampleFields(), time.Unix(10, 0))
	require.True(t, issued)
	require.Regexp(t, hexPattern, first)

	again, issued := tokenid.Assign(first, sampleFields(), time.Unix(20, 0))
	assert.False(t, issued)
	assert.Equal(t, first, again)
}
