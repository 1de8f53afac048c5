// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish uploads a directory of report artifacts to an
// object store.
package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// A URL names a location in a bucket, "gs://bucket/prefix".
type URL struct {
	Bucket string
	Prefix string
}

func (u URL) String() string {
	if u.Prefix == "" {
		return "gs://" + u.Bucket
	}
	return "gs://" + u.Bucket + "/" + u.Prefix
}

// Object returns the name of the object holding name under u.Prefix.
func (u URL) Object(name string) string {
	return path.Join(u.Prefix, name)
}

// ParseURL parses a gs:// URL.
func ParseURL(s string) (URL, error) {
	pu, err := url.Parse(s)
	if err != nil {
		return URL{}, err
	}
	if pu.Scheme != "gs" {
		return URL{}, fmt.Errorf("%s: scheme must be gs", s)
	}
	if pu.Host == "" {
		return URL{}, fmt.Errorf("%s: missing bucket", s)
	}
	if pu.RawQuery != "" || pu.Fragment != "" || pu.User != nil {
		return URL{}, fmt.Errorf("%s: unexpected URL components", s)
	}
	return URL{Bucket: pu.Host, Prefix: strings.Trim(pu.Path, "/")}, nil
}

// A Bucket stores named objects.
type Bucket interface {
	// NewWriter returns a writer for a new object. The object is
	// stored when the writer is closed. If ctx is canceled before
	// then, the object is not stored.
	NewWriter(ctx context.Context, name, contentType string) (io.WriteCloser, error)
}

// ContentType returns the content type of a file name. It falls back
// to application/octet-stream.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".png":
		return "image/png"
	case ".html":
		return "text/html; charset=utf-8"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Dir uploads every regular file in dir to b, in lexical order, and
// returns their names. Subdirectories are not uploaded.
func Dir(ctx context.Context, b Bucket, dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ent := range ents {
		if !ent.Type().IsRegular() {
			continue
		}
		if err := upload(ctx, b, filepath.Join(dir, ent.Name())); err != nil {
			return names, err
		}
		names = append(names, ent.Name())
	}
	return names, nil
}

func upload(ctx context.Context, b Bucket, file string) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(file)
	w, err := b.NewWriter(ctx, name, ContentType(name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		// Abandon the object.
		cancel()
		w.Close()
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}
