package provider

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/share"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// AzureFileProvider uploads staged archives to an Azure Files share,
// modelling a UNC-style network share target backed by the azfile SDK.
type AzureFileProvider struct{}

func (AzureFileProvider) Type() string { return "azurefile" }

func (AzureFileProvider) ValidateSettings(target model.TargetDef) error {
	if _, err := requireString(target, "share"); err != nil {
		return err
	}
	if stringSetting(target, "connectionString") == "" {
		return model.ConfigError("target %q: requires TargetSpecificSettings.connectionString", target.Type)
	}
	return nil
}

func newShareClient(target model.TargetDef) (*share.Client, error) {
	connStr, err := requireString(target, "connectionString")
	if err != nil {
		return nil, err
	}
	shareName, err := requireString(target, "share")
	if err != nil {
		return nil, err
	}
	return share.NewClientFromConnectionString(connStr, shareName, nil)
}

func (AzureFileProvider) TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string) {
	client, err := newShareClient(target)
	if err != nil {
		return false, err.Error()
	}
	if _, err := client.GetProperties(ctx, nil); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (AzureFileProvider) Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (string, int64, error) {
	client, err := newShareClient(target)
	if err != nil {
		return "", 0, err
	}
	directory := stringSetting(target, "directory")

	f, err := os.Open(localPath)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "opening %s", localPath)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "stat %s", localPath)
	}

	dirClient := client.NewDirectoryClient(directory)
	if _, err := dirClient.Create(ctx, nil); err != nil {
		// Already-exists is fine, anything else is a real transfer failure.
		if !strings.Contains(err.Error(), "ResourceAlreadyExists") {
			return "", 0, model.WrapError(model.KindTransfer, err, "creating directory %s", directory)
		}
	}

	fileName := filepath.Base(localPath)
	fileClient := dirClient.NewFileClient(fileName)
	if err := fileClient.UploadFile(ctx, f, nil); err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "uploading %s to share file %s/%s", localPath, directory, fileName)
	}
	return path.Join(directory, fileName), info.Size(), nil
}

func (AzureFileProvider) ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error) {
	client, err := newShareClient(target)
	if err != nil {
		return nil, err
	}
	directory := stringSetting(target, "directory")
	dirClient := client.NewDirectoryClient(directory)

	var refs []model.FileRef
	pager := dirClient.NewListFilesAndDirectoriesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, model.WrapError(model.KindTransfer, err, "listing share directory %s", directory)
		}
		for _, f := range page.Segment.Files {
			if f.Name == nil || !strings.HasPrefix(*f.Name, baseFileName) {
				continue
			}
			ref := model.FileRef{Path: path.Join(directory, *f.Name), Name: *f.Name}
			if f.Properties != nil && f.Properties.ContentLength != nil {
				ref.Size = *f.Properties.ContentLength
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (AzureFileProvider) DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error {
	client, err := newShareClient(target)
	if err != nil {
		return err
	}
	directory := path.Dir(file.Path)
	dirClient := client.NewDirectoryClient(directory)
	if _, err := dirClient.NewFileClient(file.Name).Delete(ctx, nil); err != nil {
		return model.WrapError(model.KindTransfer, err, "deleting share file %s", file.Path)
	}
	return nil
}
