package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	f, err := NewFile("Sample Pack", 2048, "s3://bucket/files/1", EligibilitySubscription)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(f.SID(), "file_"))
	assert.Equal(t, "Sample Pack", f.Title())
	assert.Equal(t, uint64(2048), f.ByteSize())
	assert.True(t, f.IsActive())
	assert.Zero(t, f.DownloadCount())
}

func TestNewFile_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		reference   string
		eligibility EligibilityClass
	}{
		{"empty title", "", "s3://bucket/files/1", EligibilityFree},
		{"empty reference", "Sample", "", EligibilityFree},
		{"unknown eligibility", "Sample", "s3://bucket/files/1", EligibilityClass("vip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(tt.title, 100, tt.reference, tt.eligibility)
			assert.Error(t, err)
		})
	}
}

func TestEligibilityClass(t *testing.T) {
	assert.True(t, EligibilityFree.IsFree())
	assert.True(t, EligibilityFeatured.IsFree())
	assert.False(t, EligibilityPaid.IsFree())
	assert.False(t, EligibilitySubscription.IsFree())

	assert.True(t, EligibilitySubscription.IsGated())
	assert.False(t, EligibilityPaid.IsGated())
	assert.False(t, EligibilityFree.IsGated())
}

func TestDownloadable(t *testing.T) {
	active, err := NewFile("Sample", 100, "s3://bucket/files/1", EligibilityFree)
	require.NoError(t, err)
	assert.True(t, active.Downloadable())

	inactive, err := ReconstructFile(FileReconstructParams{
		ID:          3,
		SID:         "file_off",
		Title:       "Retired",
		ByteSize:    100,
		Reference:   "s3://bucket/files/3",
		Eligibility: EligibilityFree,
		Active:      false,
	})
	require.NoError(t, err)
	assert.False(t, inactive.Downloadable())
}
