package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTargetURL(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"https URL", "https://example.com", false},
		{"http URL with path", "http://example.com/app", false},
		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"ftp scheme", "ftp://example.com", true},
		{"scheme only", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetURL(tt.target)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateScanMode(t *testing.T) {
	assert.NoError(t, ValidateScanMode("quick"))
	assert.NoError(t, ValidateScanMode("full"))
	assert.Error(t, ValidateScanMode("deep"))
	assert.Error(t, ValidateScanMode(""))
}

func TestValidateCronExpression(t *testing.T) {
	assert.NoError(t, ValidateCronExpression("0 2 * * *"))
	assert.NoError(t, ValidateCronExpression("*/15 * * * 1-5"))
	assert.Error(t, ValidateCronExpression(""))
	assert.Error(t, ValidateCronExpression("hourly"))
	assert.Error(t, ValidateCronExpression("0 2 * *"))
	assert.Error(t, ValidateCronExpression("0 2 * * * *"))
}
