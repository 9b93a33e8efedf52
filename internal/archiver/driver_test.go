package archiver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eastfield/archivist/internal/model"
)

const sampleListOutput = `7-Zip [64] 17.04

Listing archive: backup.7z

--
Path = backup.7z
Type = 7z

----------
Path = docs/report.docx
Size = 4096
Modified = 2026-01-15 10:22:00
Attributes = A
CRC = 9E103932
Encrypted = -

Path = docs/secrets.txt
Size = 128
Modified = 2026-01-15 10:22:01
Attributes = A
CRC = 1A2B3C4D
Encrypted = +
`

func TestParseListOutput_ExtractsRecords(t *testing.T) {
	records := ParseListOutput(sampleListOutput)
	assert.Len(t, records, 2)

	assert.Equal(t, "docs/report.docx", records[0].Path)
	assert.Equal(t, int64(4096), records[0].Size)
	assert.Equal(t, "9E103932", records[0].CRC)
	assert.False(t, records[0].Encrypted)

	assert.Equal(t, "docs/secrets.txt", records[1].Path)
	assert.True(t, records[1].Encrypted)
}

func TestParseListOutput_EmptyBeforeSeparatorIsIgnored(t *testing.T) {
	records := ParseListOutput("7-Zip [64] 17.04\n\nListing archive: x.7z\n")
	assert.Empty(t, records)
}

func TestStatusForExit(t *testing.T) {
	assert.Equal(t, model.StatusSuccess, statusForExit(0))
	assert.Equal(t, model.StatusWarnings, statusForExit(1))
	assert.Equal(t, model.StatusFailure, statusForExit(2))
	assert.Equal(t, model.StatusFailure, statusForExit(8))
}

func TestClassifyExit_WarningsBecomeArchiverWarningKind(t *testing.T) {
	err := classifyExit(Result{ExitCode: 1, Stderr: "some warning"}, &model.EffectiveJobConfig{})
	kind, ok := model.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, model.KindArchiverWarning, kind)
}

func TestClassifyExit_FailureBecomesArchiverErrorKind(t *testing.T) {
	err := classifyExit(Result{ExitCode: 2, Stderr: "boom"}, &model.EffectiveJobConfig{})
	kind, ok := model.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, model.KindArchiverError, kind)
}

func TestClassifyExit_SuccessIsNil(t *testing.T) {
	assert.NoError(t, classifyExit(Result{ExitCode: 0}, &model.EffectiveJobConfig{}))
}
