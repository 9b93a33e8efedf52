package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eastfield/archivist/internal/model"
)

func TestAzureBlobProvider_ValidateSettings(t *testing.T) {
	p := AzureBlobProvider{}
	assert.Error(t, p.ValidateSettings(model.TargetDef{Type: "azureblob"}))
	assert.Error(t, p.ValidateSettings(model.TargetDef{
		Type:                   "azureblob",
		TargetSpecificSettings: map[string]any{"container": "backups"},
	}))
	assert.NoError(t, p.ValidateSettings(model.TargetDef{
		Type: "azureblob",
		TargetSpecificSettings: map[string]any{
			"container":        "backups",
			"connectionString": "UseDevelopmentStorage=true",
		},
	}))
}

func TestAzureFileProvider_ValidateSettings(t *testing.T) {
	p := AzureFileProvider{}
	assert.Error(t, p.ValidateSettings(model.TargetDef{Type: "azurefile"}))
	assert.NoError(t, p.ValidateSettings(model.TargetDef{
		Type: "azurefile",
		TargetSpecificSettings: map[string]any{
			"share":            "backups",
			"connectionString": "UseDevelopmentStorage=true",
		},
	}))
}

func TestS3Provider_ValidateSettings(t *testing.T) {
	p := S3Provider{}
	assert.Error(t, p.ValidateSettings(model.TargetDef{Type: "s3"}))
	assert.NoError(t, p.ValidateSettings(model.TargetDef{
		Type: "s3",
		TargetSpecificSettings: map[string]any{
			"bucket":   "backups",
			"endpoint": "s3.amazonaws.com",
		},
	}))
}

func TestGCSProvider_ValidateSettings(t *testing.T) {
	p := GCSProvider{}
	assert.Error(t, p.ValidateSettings(model.TargetDef{Type: "gcs"}))
	assert.NoError(t, p.ValidateSettings(model.TargetDef{
		Type:                   "gcs",
		TargetSpecificSettings: map[string]any{"bucket": "backups"},
	}))
}

func TestStringSetting_MissingKeyReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", stringSetting(model.TargetDef{}, "container"))
}

func TestBoolSetting_DefaultsWhenMissing(t *testing.T) {
	assert.True(t, boolSetting(model.TargetDef{}, "secure", true))
	assert.False(t, boolSetting(model.TargetDef{
		TargetSpecificSettings: map[string]any{"secure": false},
	}, "secure", true))
}
