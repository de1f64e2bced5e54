package github

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ContentsAPI is the part of the GitHub contents API used to sync profiles.
type ContentsAPI interface {
	ListDirectory(ctx context.Context, owner, repo, path, ref string) ([]DirectoryEntry, error)
	FetchFile(ctx context.Context, owner, repo, path, ref string) (*Blob, error)
}

var _ ContentsAPI = (*Client)(nil)

func isProfileFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// FetchProfiles downloads the profile tree under root: profile files at the
// top level and inside manufacturer directories one level down. Keys of the
// returned map are slash-separated paths relative to root.
func FetchProfiles(ctx context.Context, gh ContentsAPI, owner, repo, root, ref string) (map[string][]byte, error) {
	entries, err := gh.ListDirectory(ctx, owner, repo, root, ref)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, fmt.Errorf("directory %q not found in %s/%s", root, owner, repo)
	}

	files := make(map[string][]byte)

	fetch := func(rel, full string) error {
		result, err := gh.FetchFile(ctx, owner, repo, full, ref)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", full, err)
		}
		files[rel] = result.Content
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch entry.Type {
		case "file":
			if !isProfileFile(entry.Name) {
				continue
			}
			if err := fetch(entry.Name, entry.Path); err != nil {
				return nil, err
			}

		case "dir":
			children, err := gh.ListDirectory(ctx, owner, repo, entry.Path, ref)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", entry.Path, err)
			}
			for _, child := range children {
				if child.Type != "file" || !isProfileFile(child.Name) {
					continue
				}
				if err := fetch(entry.Name+"/"+child.Name, child.Path); err != nil {
					return nil, err
				}
			}
		}
	}

	return files, nil
}
