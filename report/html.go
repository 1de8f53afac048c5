// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
figure { display: inline-block; margin: 0.5em; }
figcaption { font-size: small; text-align: center; }
img { width: 480px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Tables</h2>
<ul>
{{- range .Tables}}
<li><a href="{{.URL}}">{{.Name}}</a></li>
{{- end}}
</ul>
{{- range .Scopes}}
<h2>{{.Name}}</h2>
{{- range .Charts}}
<figure><a href="{{.URL}}"><img src="{{.URL}}" alt="{{.Name}}"></a><figcaption>{{.Name}}</figcaption></figure>
{{- end}}
{{- end}}
</body>
</html>
`))

type indexLink struct {
	Name string
	URL  safehtml.URL
}

type indexScope struct {
	Name   string
	Charts []indexLink
}

type indexPage struct {
	Title  string
	Tables []indexLink
	Scopes []indexScope
}

func link(name string) indexLink {
	u := &url.URL{Path: name}
	return indexLink{name, safehtml.URLSanitized(u.String())}
}

func newIndexPage(res *Result) *indexPage {
	p := &indexPage{Title: filepath.Base(filepath.Dir(res.OutDir))}
	for _, name := range res.Artifacts {
		p.Tables = append(p.Tables, link(name))
	}
	for _, r := range res.Charts {
		sc := indexScope{Name: r.Scope.Name}
		for _, name := range r.Files {
			sc.Charts = append(sc.Charts, link(name))
		}
		p.Scopes = append(p.Scopes, sc)
	}
	return p
}

// writeIndex writes index.html to the output directory of res.
func writeIndex(res *Result) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, newIndexPage(res)); err != nil {
		// Only possible if the template does not match the page.
		panic(err)
	}
	return os.WriteFile(filepath.Join(res.OutDir, IndexFile), buf.Bytes(), 0666)
}
