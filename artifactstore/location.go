package artifactstore

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Supported location schemes.
const (
	SchemeFile   = "file"
	SchemeS3     = "s3"
	SchemeAzBlob = "azblob"
)

// Location identifies an artifact. Bucket and Key are set for object stores
// (Bucket is the container for azblob); Path is set for local files.
type Location struct {
	Scheme string
	Bucket string
	Key    string
	Path   string
}

// ParseLocation accepts plain paths, file://, s3://bucket/key and azblob://container/blob.
func ParseLocation(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("%w: empty uri", ErrInvalidLocation)
	}
	if !strings.Contains(uri, "://") {
		return Location{Scheme: SchemeFile, Path: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeFile:
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = u.Host + p
		}
		if p == "" {
			return Location{}, fmt.Errorf("%w: %q has no path", ErrInvalidLocation, uri)
		}
		return Location{Scheme: SchemeFile, Path: filepath.FromSlash(p)}, nil
	case SchemeS3, SchemeAzBlob:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" {
			return Location{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidLocation, uri)
		}
		return Location{Scheme: strings.ToLower(u.Scheme), Bucket: u.Host, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Child returns the location of name inside l, treating l as a directory or prefix.
func (l Location) Child(name string) Location {
	out := l
	if l.Scheme == SchemeFile {
		out.Path = filepath.Join(l.Path, name)
		return out
	}
	out.Key = path.Join(l.Key, name)
	return out
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Path
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}
