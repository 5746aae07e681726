// Package s3deploy implements `--upload-s3`: pushing every file in the
// generated output directory to an S3 bucket, for operators who want the
// build to double as a deploy step. Grounded on drand-drand's
// cmd/relay-s3/main.go (session.NewSession + s3manager.Uploader.UploadWithContext).
package s3deploy

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// UploadDir uploads every regular file under dir to bucket, keyed by its
// path relative to dir, using the default AWS credential chain (same as
// drand-drand's relay: session.NewSession with no explicit keys).
func UploadDir(ctx context.Context, bucket, dir string) error {
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return fmt.Errorf("s3deploy: creating aws session: %w", err)
	}
	if _, err := sess.Config.Credentials.Get(); err != nil {
		return fmt.Errorf("s3deploy: checking aws credentials: %w", err)
	}
	uploader := s3manager.NewUploader(sess)

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("s3deploy: %w", err)
		}
		return uploadFile(ctx, uploader, bucket, rel, path)
	})
}

func uploadFile(ctx context.Context, uploader *s3manager.Uploader, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("s3deploy: opening %s: %w", path, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3deploy: uploading %s: %w", key, err)
	}
	return nil
}
