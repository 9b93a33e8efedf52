package pipeline

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/eastfield/archivist/internal/model"
)

func newHasher(alg model.ChecksumAlgorithm) hash.Hash {
	switch alg {
	case model.ChecksumMD5:
		return md5.New()
	case model.ChecksumSHA1:
		return sha1.New()
	case model.ChecksumSHA384:
		return sha512.New384()
	case model.ChecksumSHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}

func algExtension(alg model.ChecksumAlgorithm) string {
	switch alg {
	case model.ChecksumMD5:
		return "md5"
	case model.ChecksumSHA1:
		return "sha1"
	case model.ChecksumSHA384:
		return "sha384"
	case model.ChecksumSHA512:
		return "sha512"
	default:
		return "sha256"
	}
}

// hashFile returns the hex digest of path under alg.
func hashFile(path string, alg model.ChecksumAlgorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := newHasher(alg)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
