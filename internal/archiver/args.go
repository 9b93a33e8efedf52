// Package archiver implements ArchiverDriver (§4.4): building 7-Zip argv,
// running the subprocess with priority/affinity/retry, and parsing its
// "-slt" list output.
package archiver

import (
	"fmt"
	"os"
	"strconv"

	"github.com/eastfield/archivist/internal/model"
)

// BuildCreateArgs constructs the "a" (create) argv in the exact order
// §4.4.1 requires — 7-Zip is sensitive to flag position around the archive
// path.
func BuildCreateArgs(eff *model.EffectiveJobConfig, archivePath string, sourcePaths []string, password string, warn func(string)) []string {
	var args []string
	args = append(args, "a")

	args = append(args, "-t"+eff.ArchiveType)
	args = append(args, fmt.Sprintf("-mx%d", eff.CompressionLevel))
	if eff.CompressionMethod != "" {
		args = append(args, "-m0="+eff.CompressionMethod)
	}
	if eff.DictionarySize != "" {
		args = append(args, "-md"+eff.DictionarySize)
	}
	if eff.WordSize != "" {
		args = append(args, "-mfb"+eff.WordSize)
	}
	if eff.SolidBlockSize != "" {
		args = append(args, "-ms"+eff.SolidBlockSize)
	}

	if eff.CompressOpenFiles {
		args = append(args, "-ssw")
	}
	if eff.ThreadsSetting > 0 {
		args = append(args, fmt.Sprintf("-mmt%d", eff.ThreadsSetting))
	}
	if !eff.FollowSymbolicLinks {
		args = append(args, "-snl")
	}
	if eff.SevenZipTempDirectory != "" {
		if dirExists(eff.SevenZipTempDirectory) {
			args = append(args, `-w"`+eff.SevenZipTempDirectory+`"`)
		} else if warn != nil {
			warn(fmt.Sprintf("SevenZipTempDirectory %q does not exist, ignoring -w", eff.SevenZipTempDirectory))
		}
	}

	if eff.CreateSFX {
		args = append(args, sfxFlag(eff.SFXModule))
	}

	if eff.SplitVolumeSize != "" {
		args = append(args, "-v"+eff.SplitVolumeSize)
	}

	args = append(args, `-x!$RECYCLE.BIN`, `-x!System Volume Information`)
	args = append(args, eff.AdditionalExclusions...)

	if eff.SevenZipIncludeListFile != "" {
		if fileExists(eff.SevenZipIncludeListFile) {
			args = append(args, `-i@"`+eff.SevenZipIncludeListFile+`"`)
		} else if warn != nil {
			warn(fmt.Sprintf("SevenZipIncludeListFile %q not found, skipping -i@", eff.SevenZipIncludeListFile))
		}
	}
	if eff.SevenZipExcludeListFile != "" {
		if fileExists(eff.SevenZipExcludeListFile) {
			args = append(args, `-x@"`+eff.SevenZipExcludeListFile+`"`)
		} else if warn != nil {
			warn(fmt.Sprintf("SevenZipExcludeListFile %q not found, skipping -x@", eff.SevenZipExcludeListFile))
		}
	}

	if password != "" {
		args = append(args, "-mhe=on", "-p"+password)
	}

	args = append(args, archivePath)
	args = append(args, sourcePaths...)

	return args
}

func sfxFlag(module model.SFXModule) string {
	switch module {
	case model.SFXGUI:
		return "-sfx7zS.sfx"
	case model.SFXInstaller:
		return "-sfx7zSD.sfx"
	default:
		return "-sfx"
	}
}

// BuildTestArgs constructs the "t" (test) argv (§4.4.4).
func BuildTestArgs(archivePath, password string, verifyChecksumOnTest bool) []string {
	args := []string{"t"}
	if verifyChecksumOnTest {
		args = append(args, "-scrc")
	}
	if password != "" {
		args = append(args, "-p"+password)
	}
	args = append(args, archivePath)
	return args
}

// BuildListArgs constructs the "l -slt" (technical list) argv (§6).
func BuildListArgs(archivePath, password string) []string {
	args := []string{"l", "-slt"}
	if password != "" {
		args = append(args, "-p"+password)
	}
	args = append(args, archivePath)
	return args
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parseIntOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
