// Package source reads raw results documents from local files, stdin or
// Azure Blob Storage, transparently decompressing gzip and zstd payloads.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxDocumentSize bounds the decompressed size of a results document.
const MaxDocumentSize = 64 << 20

// BlobScheme prefixes locations stored in Azure Blob Storage:
// azblob://<container>/<blob>.
const BlobScheme = "azblob://"

var (
	ErrTooLarge       = errors.New("results document exceeds size limit")
	ErrNoBlobAccount  = errors.New("blob account URL is not configured")
	ErrInvalidBlobRef = errors.New("invalid blob location")
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Options configures a Loader.
type Options struct {
	// BlobAccountURL is the storage account endpoint, optionally with a SAS
	// token, e.g. https://acct.blob.core.windows.net/.
	BlobAccountURL string
	// Credential authenticates blob reads. Nil selects the default Azure
	// credential chain.
	Credential azcore.TokenCredential
	// Stdin is read for the "-" location. Nil means os.Stdin.
	Stdin io.Reader
}

// Loader fetches results documents.
type Loader struct {
	opts  Options
	blobs func() (blobDownloader, error)
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts Options) *Loader {
	l := &Loader{opts: opts}
	l.blobs = func() (blobDownloader, error) {
		if opts.BlobAccountURL == "" {
			return nil, ErrNoBlobAccount
		}
		return newBlobClient(opts.BlobAccountURL, opts.Credential)
	}
	return l
}

// Location is a parsed document location.
type Location struct {
	Stdin     bool
	Path      string
	Container string
	Blob      string
}

// IsBlob reports whether the location refers to blob storage.
func (l Location) IsBlob() bool {
	return l.Container != ""
}

func (l Location) String() string {
	switch {
	case l.Stdin:
		return "-"
	case l.IsBlob():
		return BlobScheme + l.Container + "/" + l.Blob
	}
	return l.Path
}

// ParseLocation parses "-", "azblob://container/blob" or a file path.
func ParseLocation(s string) (Location, error) {
	if s == "-" {
		return Location{Stdin: true}, nil
	}
	if rest, ok := strings.CutPrefix(s, BlobScheme); ok {
		container, blob, _ := strings.Cut(rest, "/")
		if container == "" || blob == "" {
			return Location{}, fmt.Errorf("%w %q: expected %scontainer/blob", ErrInvalidBlobRef, s, BlobScheme)
		}
		return Location{Container: container, Blob: blob}, nil
	}
	return Location{Path: s}, nil
}

// Load reads and decompresses the document at location.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	rc, err := l.open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	data, err := ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	return data, nil
}

func (l *Loader) open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	switch {
	case loc.Stdin:
		in := l.opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	case loc.IsBlob():
		client, err := l.blobs()
		if err != nil {
			return nil, err
		}
		resp, err := client.DownloadStream(ctx, loc.Container, loc.Blob, nil)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", loc, err)
		}
		return resp.Body, nil
	}
	f, err := os.Open(loc.Path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ReadAll reads r to the end, decompressing gzip or zstd content detected
// by its magic bytes, and enforces MaxDocumentSize.
func ReadAll(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer zr.Close() //nolint:errcheck
		src = zr
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
