package provider

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// AzureBlobProvider uploads staged archives to a blob container, using the
// modern client-based azblob SDK surface (not the teacher's legacy
// pipeline-based one, see DESIGN.md).
type AzureBlobProvider struct{}

func (AzureBlobProvider) Type() string { return "azureblob" }

func (AzureBlobProvider) ValidateSettings(target model.TargetDef) error {
	if _, err := requireString(target, "container"); err != nil {
		return err
	}
	if stringSetting(target, "connectionString") == "" && stringSetting(target, "serviceUrl") == "" {
		return model.ConfigError("target %q: requires TargetSpecificSettings.connectionString or serviceUrl", target.Type)
	}
	return nil
}

func newBlobClient(target model.TargetDef) (*azblob.Client, error) {
	if connStr := stringSetting(target, "connectionString"); connStr != "" {
		return azblob.NewClientFromConnectionString(connStr, nil)
	}
	serviceURL, err := requireString(target, "serviceUrl")
	if err != nil {
		return nil, err
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, model.WrapError(model.KindEnv, err, "acquiring default Azure credential")
	}
	return azblob.NewClient(serviceURL, cred, nil)
}

func (AzureBlobProvider) TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string) {
	client, err := newBlobClient(target)
	if err != nil {
		return false, err.Error()
	}
	containerName := stringSetting(target, "container")
	pager := client.NewListBlobsFlatPager(containerName, &azblob.ListBlobsFlatOptions{MaxResults: int32Ptr(1)})
	if !pager.More() {
		return true, ""
	}
	if _, err := pager.NextPage(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (AzureBlobProvider) Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (string, int64, error) {
	client, err := newBlobClient(target)
	if err != nil {
		return "", 0, err
	}
	containerName := stringSetting(target, "container")
	prefix := stringSetting(target, "prefix")
	blobName := joinBlobPath(prefix, filepath.Base(localPath))

	f, err := os.Open(localPath)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "opening %s", localPath)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "stat %s", localPath)
	}

	if _, err := client.UploadFile(ctx, containerName, blobName, f, &azblob.UploadFileOptions{}); err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "uploading %s to blob %s/%s", localPath, containerName, blobName)
	}
	return containerName + "/" + blobName, info.Size(), nil
}

func (AzureBlobProvider) ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error) {
	client, err := newBlobClient(target)
	if err != nil {
		return nil, err
	}
	containerName := stringSetting(target, "container")
	prefix := stringSetting(target, "prefix")

	var refs []model.FileRef
	pager := client.NewListBlobsFlatPager(containerName, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, model.WrapError(model.KindTransfer, err, "listing blobs in %s", containerName)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			name := path.Base(*item.Name)
			if !strings.HasPrefix(name, baseFileName) {
				continue
			}
			ref := model.FileRef{Path: *item.Name, Name: name}
			if item.Properties != nil {
				if item.Properties.ContentLength != nil {
					ref.Size = *item.Properties.ContentLength
				}
				if item.Properties.LastModified != nil {
					ref.CreationTime = *item.Properties.LastModified
				}
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (AzureBlobProvider) DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error {
	client, err := newBlobClient(target)
	if err != nil {
		return err
	}
	containerName := stringSetting(target, "container")
	if _, err := client.DeleteBlob(ctx, containerName, file.Path, nil); err != nil {
		return model.WrapError(model.KindTransfer, err, "deleting blob %s/%s", containerName, file.Path)
	}
	return nil
}

func joinBlobPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

func int32Ptr(v int32) *int32 { return &v }
