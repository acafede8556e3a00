package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ayse@example.com", NormalizeEmail(" Ayse@Example.com "))
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, IsHeaderRow([]string{"Ad", "Soyad", "E-posta"}))
	assert.True(t, IsHeaderRow([]string{"ADI"}))
	assert.False(t, IsHeaderRow([]string{"Ayşe", "Yılmaz", "ayse@example.com"}))
	assert.False(t, IsHeaderRow(nil))
}

func TestDirectoryHeader(t *testing.T) {
	header := DirectoryHeader()
	assert.Equal(t, "E-posta", header[ColumnEmail])
	assert.True(t, IsHeaderRow(header))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("TRT", 3*3600))
	assert.Equal(t, "2026-03-01T09:30:00Z", FormatTimestamp(ts))
}
