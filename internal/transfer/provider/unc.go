package provider

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// UNCProvider copies staged files to a local path or an already-mounted
// UNC/network share. There is no protocol to speak here, only a path join
// and a copy, so this provider is stdlib-only by design (DESIGN.md).
type UNCProvider struct{}

func (UNCProvider) Type() string { return "unc" }

func (UNCProvider) ValidateSettings(target model.TargetDef) error {
	_, err := requireString(target, "path")
	return err
}

func (UNCProvider) TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string) {
	root := stringSetting(target, "path")
	info, err := os.Stat(root)
	if err != nil {
		return false, err.Error()
	}
	if !info.IsDir() {
		return false, root + " is not a directory"
	}
	return true, ""
}

func (UNCProvider) Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (string, int64, error) {
	root := stringSetting(target, "path")
	prefix := stringSetting(target, "prefix")
	destDir := filepath.Join(root, prefix)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "creating %s", destDir)
	}
	destPath := filepath.Join(destDir, filepath.Base(localPath))

	src, err := os.Open(localPath)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "opening %s", localPath)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "creating %s", destPath)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "copying to %s", destPath)
	}
	return destPath, n, nil
}

func (UNCProvider) ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error) {
	root := stringSetting(target, "path")
	prefix := stringSetting(target, "prefix")
	dir := filepath.Join(root, prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.WrapError(model.KindTransfer, err, "listing %s", dir)
	}
	var refs []model.FileRef
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), baseFileName) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		refs = append(refs, model.FileRef{
			Path: filepath.Join(dir, e.Name()), Name: e.Name(),
			Size: info.Size(), CreationTime: info.ModTime(),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (UNCProvider) DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error {
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		return model.WrapError(model.KindTransfer, err, "deleting %s", file.Path)
	}
	return nil
}
