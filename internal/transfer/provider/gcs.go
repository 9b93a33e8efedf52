package provider

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// GCSProvider uploads staged archives to a Google Cloud Storage bucket
// using application-default credentials.
type GCSProvider struct{}

func (GCSProvider) Type() string { return "gcs" }

func (GCSProvider) ValidateSettings(target model.TargetDef) error {
	_, err := requireString(target, "bucket")
	return err
}

func (GCSProvider) TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return false, err.Error()
	}
	defer client.Close()
	bucket := stringSetting(target, "bucket")
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func (GCSProvider) Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (string, int64, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", 0, model.WrapError(model.KindEnv, err, "creating GCS client")
	}
	defer client.Close()

	bucket := stringSetting(target, "bucket")
	prefix := stringSetting(target, "prefix")
	objectName := joinBlobPath(prefix, filepath.Base(localPath))

	f, err := os.Open(localPath)
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "opening %s", localPath)
	}
	defer f.Close()

	w := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	n, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return "", 0, model.WrapError(model.KindTransfer, err, "uploading %s to gs://%s/%s", localPath, bucket, objectName)
	}
	if err := w.Close(); err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "finalising upload to gs://%s/%s", bucket, objectName)
	}
	return bucket + "/" + objectName, n, nil
}

func (GCSProvider) ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, model.WrapError(model.KindEnv, err, "creating GCS client")
	}
	defer client.Close()

	bucket := stringSetting(target, "bucket")
	prefix := stringSetting(target, "prefix")

	var refs []model.FileRef
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, model.WrapError(model.KindTransfer, err, "listing gs://%s/%s", bucket, prefix)
		}
		name := path.Base(attrs.Name)
		if !strings.HasPrefix(name, baseFileName) {
			continue
		}
		refs = append(refs, model.FileRef{
			Path: attrs.Name, Name: name, Size: attrs.Size, CreationTime: attrs.Created,
		})
	}
	return refs, nil
}

func (GCSProvider) DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return model.WrapError(model.KindEnv, err, "creating GCS client")
	}
	defer client.Close()
	bucket := stringSetting(target, "bucket")
	if err := client.Bucket(bucket).Object(file.Path).Delete(ctx); err != nil {
		return model.WrapError(model.KindTransfer, err, "deleting gs://%s/%s", bucket, file.Path)
	}
	return nil
}
