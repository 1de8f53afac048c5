// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS is a Bucket backed by Google Cloud Storage. Object names are
// placed under the URL's prefix.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	url    URL
}

// NewGCS connects to the bucket of u. If credentialsFile is empty,
// application default credentials are used.
func NewGCS(ctx context.Context, u URL, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCS{client, client.Bucket(u.Bucket), u}, nil
}

func (g *GCS) NewWriter(ctx context.Context, name, contentType string) (io.WriteCloser, error) {
	w := g.bucket.Object(g.url.Object(name)).NewWriter(ctx)
	w.ContentType = contentType
	return w, nil
}

// Close closes the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
