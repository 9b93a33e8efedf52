package provider

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go"
	"github.com/minio/minio-go/pkg/credentials"

	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/runctx"
)

// S3Provider uploads staged archives to an S3-compatible bucket via the v6
// minio-go client, so it covers both AWS S3 and S3-compatible stores (MinIO,
// Wasabi, Backblaze B2) behind one TargetProvider.
type S3Provider struct {
	// SecretLookup resolves CredentialsSecretName to an access/secret key
	// pair. Wired by the caller from PasswordBroker's secret store.
	SecretLookup func(name string) (accessKey, secretKey string, err error)
}

func (S3Provider) Type() string { return "s3" }

func (S3Provider) ValidateSettings(target model.TargetDef) error {
	if _, err := requireString(target, "bucket"); err != nil {
		return err
	}
	_, err := requireString(target, "endpoint")
	return err
}

func (p S3Provider) newClient(target model.TargetDef) (*minio.Client, error) {
	endpoint, err := requireString(target, "endpoint")
	if err != nil {
		return nil, err
	}
	secure := boolSetting(target, "secure", true)

	accessKey := stringSetting(target, "accessKey")
	secretKey := stringSetting(target, "secretKey")
	if target.CredentialsSecretName != "" && p.SecretLookup != nil {
		accessKey, secretKey, err = p.SecretLookup(target.CredentialsSecretName)
		if err != nil {
			return nil, model.WrapError(model.KindConfig, err, "resolving S3 credentials for %q", target.CredentialsSecretName)
		}
	}

	creds := credentials.NewStaticV4(accessKey, secretKey, "")
	region := stringSetting(target, "region")
	return minio.NewWithOptions(endpoint, &minio.Options{Creds: creds, Secure: secure, Region: region})
}

func (p S3Provider) TestConnectivity(ctx context.Context, target model.TargetDef) (bool, string) {
	client, err := p.newClient(target)
	if err != nil {
		return false, err.Error()
	}
	bucket := stringSetting(target, "bucket")
	ok, err := client.BucketExists(bucket)
	if err != nil {
		return false, err.Error()
	}
	if !ok {
		return false, "bucket " + bucket + " does not exist"
	}
	return true, ""
}

func (p S3Provider) Transfer(ctx context.Context, rc *runctx.RunContext, localPath string, target model.TargetDef) (string, int64, error) {
	client, err := p.newClient(target)
	if err != nil {
		return "", 0, err
	}
	bucket := stringSetting(target, "bucket")
	prefix := stringSetting(target, "prefix")
	key := joinBlobPath(prefix, filepath.Base(localPath))

	n, err := client.FPutObject(bucket, key, localPath, minio.PutObjectOptions{})
	if err != nil {
		return "", 0, model.WrapError(model.KindTransfer, err, "uploading %s to s3://%s/%s", localPath, bucket, key)
	}
	return bucket + "/" + key, n, nil
}

func (p S3Provider) ListRemoteInstances(ctx context.Context, target model.TargetDef, baseFileName, extension string) ([]model.FileRef, error) {
	client, err := p.newClient(target)
	if err != nil {
		return nil, err
	}
	bucket := stringSetting(target, "bucket")
	prefix := stringSetting(target, "prefix")

	doneCh := make(chan struct{})
	defer close(doneCh)

	var refs []model.FileRef
	for obj := range client.ListObjects(bucket, prefix, false, doneCh) {
		if obj.Err != nil {
			return nil, model.WrapError(model.KindTransfer, obj.Err, "listing s3://%s/%s", bucket, prefix)
		}
		name := path.Base(obj.Key)
		if !strings.HasPrefix(name, baseFileName) {
			continue
		}
		refs = append(refs, model.FileRef{
			Path: obj.Key, Name: name, Size: obj.Size, CreationTime: obj.LastModified,
		})
	}
	return refs, nil
}

func (p S3Provider) DeleteRemote(ctx context.Context, target model.TargetDef, file model.FileRef) error {
	client, err := p.newClient(target)
	if err != nil {
		return err
	}
	bucket := stringSetting(target, "bucket")
	if err := client.RemoveObject(bucket, file.Path); err != nil {
		return model.WrapError(model.KindTransfer, err, "deleting s3://%s/%s", bucket, file.Path)
	}
	return nil
}
