// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file holds the Cloud Storage helpers: a small object writer used to
// store rendered chord diagrams and the gs:// URI helpers.
package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSObject is a bucket/object pair.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// form of the object.
func (o GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// ParseGCSURI splits a gs://bucket/object URI.
func ParseGCSURI(uri string) (GCSObject, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return GCSObject{}, fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, name, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || name == "" {
		return GCSObject{}, fmt.Errorf("gs:// uri needs a bucket and an object: %q", uri)
	}
	return GCSObject{Bucket: bucket, Name: name}, nil
}

// GCSObjectWriter writes small in-memory objects to one bucket.
type GCSObjectWriter struct {
	client *storage.Client
	bucket string
}

func NewGCSObjectWriter(client *storage.Client, bucket string) *GCSObjectWriter {
	return &GCSObjectWriter{client: client, bucket: bucket}
}

// Upload writes data to object and returns its gs:// URI. The object is
// overwritten if it already exists.
func (w *GCSObjectWriter) Upload(ctx context.Context, object string, data []byte, contentType string) (string, error) {
	obj := w.client.Bucket(w.bucket).Object(object)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if written, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		slog.WarnContext(ctx, "failed to copy to GCS or partial write", "object", object, "bytes", written, "error", err)
		_ = writer.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %w", w.bucket, object, err)
	}
	// The object is only committed when Close succeeds.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for gs://%s/%s: %w", w.bucket, object, err)
	}

	uri := GCSObject{Bucket: w.bucket, Name: object, MIMEType: contentType}.URI()
	slog.DebugContext(ctx, "uploaded object", "uri", uri)
	return uri, nil
}
