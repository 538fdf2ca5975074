// Package catalog assembles the documentation catalog and drives the documentation
// compiler: generated articles are linked into the catalog, the catalog is converted to an
// archive and a static site, and previews are served from it.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/logfields"
	"github.com/swiftusd/doctool/internal/observability"
)

const articleExt = ".md"

// Article is one generated article linked into the catalog.
type Article struct {
	Name   string // file name inside both directories
	Link   string // symlink in the catalog
	Target string // relative symlink target
	Title  string // first level-one heading, empty when missing
}

// LinkReport summarizes LinkArticles.
type LinkReport struct {
	Articles []Article
}

// Untitled returns the articles without a level-one heading.
func (r LinkReport) Untitled() []Article {
	var out []Article
	for _, a := range r.Articles {
		if a.Title == "" {
			out = append(out, a)
		}
	}
	return out
}

// LinkArticles recreates the catalog's generated directory and symlinks every generated
// article into it. Targets are relative so the repository can move. A missing articles
// directory yields an empty catalog directory.
func LinkArticles(ctx context.Context, l *layout.Layout) (LinkReport, error) {
	if err := os.RemoveAll(l.CatalogGenerated); err != nil {
		return LinkReport{}, fmt.Errorf("remove %s: %w", l.CatalogGenerated, err)
	}
	if err := os.MkdirAll(l.CatalogGenerated, 0o750); err != nil {
		return LinkReport{}, fmt.Errorf("create %s: %w", l.CatalogGenerated, err)
	}

	names, err := articleNames(l.GeneratedArticles)
	if err != nil {
		return LinkReport{}, err
	}
	rel, err := filepath.Rel(l.CatalogGenerated, l.GeneratedArticles)
	if err != nil {
		return LinkReport{}, fmt.Errorf("relative article path: %w", err)
	}

	var report LinkReport
	for _, name := range names {
		a := Article{
			Name:   name,
			Link:   filepath.Join(l.CatalogGenerated, name),
			Target: filepath.Join(rel, name),
		}
		if err := os.Symlink(a.Target, a.Link); err != nil {
			return report, fmt.Errorf("link article %s: %w", name, err)
		}
		body, err := os.ReadFile(filepath.Join(l.GeneratedArticles, name))
		if err != nil {
			return report, fmt.Errorf("read article %s: %w", name, err)
		}
		a.Title = ArticleTitle(body)
		if a.Title == "" {
			observability.WarnContext(ctx, "Generated article has no title heading",
				logfields.File(l.Rel(a.Link)))
		}
		report.Articles = append(report.Articles, a)
	}
	observability.InfoContext(ctx, "Linked generated articles",
		logfields.Count(len(report.Articles)),
		logfields.Path(l.Rel(l.CatalogGenerated)))
	return report, nil
}

func articleNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), articleExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ArticleTitle returns the text of the first level-one heading in a Markdown body.
func ArticleTitle(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok || h.Level != 1 {
			return gmast.WalkContinue, nil
		}
		title = strings.TrimSpace(inlineText(h, body))
		return gmast.WalkStop, nil
	})
	return title
}

func inlineText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}
