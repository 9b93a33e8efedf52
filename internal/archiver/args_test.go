package archiver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eastfield/archivist/internal/model"
)

func baseEff() *model.EffectiveJobConfig {
	return &model.EffectiveJobConfig{
		ArchiveType:         "7z",
		CompressionLevel:    5,
		FollowSymbolicLinks: true,
	}
}

// §4.4.1: argument order is fixed, 7-Zip is positional-sensitive around the
// archive path.
func TestBuildCreateArgs_Order(t *testing.T) {
	eff := baseEff()
	eff.CompressOpenFiles = true
	eff.ThreadsSetting = 4
	eff.FollowSymbolicLinks = false
	eff.SplitVolumeSize = "650m"

	args := BuildCreateArgs(eff, "/backups/out.7z", []string{"/data/a", "/data/b"}, "", nil)

	assert.Equal(t, "a", args[0])
	assert.Equal(t, "-t7z", args[1])
	assert.Equal(t, "-mx5", args[2])
	assert.Contains(t, args, "-ssw")
	assert.Contains(t, args, "-mmt4")
	assert.Contains(t, args, "-snl")
	assert.Contains(t, args, "-v650m")
	assert.Contains(t, args, `-x!$RECYCLE.BIN`)

	// Archive path must immediately precede the source paths, and both must
	// be the final two groups.
	pathIdx := indexOf(args, "/backups/out.7z")
	assert.GreaterOrEqual(t, pathIdx, 0)
	assert.Equal(t, []string{"/data/a", "/data/b"}, args[pathIdx+1:])
}

func TestBuildCreateArgs_PasswordAddsEncryptHeaders(t *testing.T) {
	eff := baseEff()
	args := BuildCreateArgs(eff, "/out.7z", []string{"/d"}, "hunter2", nil)
	assert.Contains(t, args, "-mhe=on")
	assert.Contains(t, args, "-phunter2")
}

func TestBuildCreateArgs_NoPasswordOmitsEncryptHeaders(t *testing.T) {
	eff := baseEff()
	args := BuildCreateArgs(eff, "/out.7z", []string{"/d"}, "", nil)
	assert.NotContains(t, args, "-mhe=on")
}

func TestBuildCreateArgs_MissingListFileWarns(t *testing.T) {
	eff := baseEff()
	eff.SevenZipIncludeListFile = "/does/not/exist.txt"
	var warned string
	BuildCreateArgs(eff, "/out.7z", []string{"/d"}, "", func(msg string) { warned = msg })
	assert.Contains(t, warned, "SevenZipIncludeListFile")
}

func TestBuildCreateArgs_SFXModuleSelectsStub(t *testing.T) {
	eff := baseEff()
	eff.CreateSFX = true
	eff.SFXModule = model.SFXInstaller
	args := BuildCreateArgs(eff, "/out.exe", []string{"/d"}, "", nil)
	assert.Contains(t, args, "-sfx7zSD.sfx")
}

func TestBuildTestArgs_ChecksumFlag(t *testing.T) {
	args := BuildTestArgs("/out.7z", "", true)
	assert.Contains(t, args, "-scrc")
	args = BuildTestArgs("/out.7z", "", false)
	assert.NotContains(t, args, "-scrc")
}

func TestBuildListArgs(t *testing.T) {
	args := BuildListArgs("/out.7z", "secret")
	assert.Equal(t, []string{"l", "-slt", "-psecret", "/out.7z"}, args)
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
