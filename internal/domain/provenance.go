package domain

import "strings"

const (
	// DefaultDescription is the description appended when none is configured.
	DefaultDescription = "PST ILocCatalog Modified"

	// DefaultAuthor is the author appended to the catalog creation info.
	DefaultAuthor = "PST ILocCatalog"
)

// Provenance is the new metadata an enrichment run adds to a catalog.
type Provenance struct {
	ResourceID  string
	Description string
	Author      string
	Comments    []Comment
}

// Annotate returns meta with the provenance appended. Original text is kept:
// the old description and author survive as "orig_" prefixed values and the
// original comments follow the new ones. Agency fields are carried over and
// the creation time is stamped from the package clock.
func Annotate(meta CatalogMeta, p Provenance) CatalogMeta {
	description := p.Description
	if description == "" {
		description = DefaultDescription
	}
	author := p.Author
	if author == "" {
		author = DefaultAuthor
	}

	comments := make([]Comment, 0, len(p.Comments)+len(meta.Comments))
	comments = append(comments, p.Comments...)
	comments = append(comments, meta.Comments...)

	var b strings.Builder
	if meta.Description != "" {
		b.WriteString("orig_description: " + meta.Description + "; ")
	}
	b.WriteString("description: " + description)

	ci := &CreationInfo{CreationTime: clock.Now().UTC()}
	if old := meta.CreationInfo; old != nil {
		ci.AgencyID = old.AgencyID
		ci.AgencyURI = old.AgencyURI
		if old.Author != "" {
			author = "orig_author: " + old.Author + "; " + author
		}
	}
	ci.Author = author

	id := meta.ID
	if p.ResourceID != "" {
		id = p.ResourceID
	}

	return CatalogMeta{
		ID:           id,
		Description:  b.String(),
		Comments:     comments,
		CreationInfo: ci,
	}
}
