package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	octetStream = "application/octet-stream"
	sniffLen    = 3072
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// UploadService stores uploaded files under one directory of fs.
type UploadService struct {
	fs  afero.Fs
	dir string
}

// StoredFile describes a saved upload.
type StoredFile struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// NewUploadService creates a new UploadService. Use afero.NewOsFs() in production.
func NewUploadService(fsys afero.Fs, dir string) *UploadService {
	return &UploadService{fs: fsys, dir: dir}
}

// Save writes r to a new file named by a random UUID plus the extension of
// originalName. Without a usable extension, the sniffed content decides both
// the extension and the content type.
func (s *UploadService) Save(originalName, contentType string, r io.Reader) (*StoredFile, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	head := make([]byte, sniffLen)
	read, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:read]
	detected := mimetype.Detect(head)

	ext := strings.ToLower(filepath.Ext(originalName))
	if !extPattern.MatchString(ext) {
		ext = ""
		if guess := detected.Extension(); extPattern.MatchString(guess) {
			ext = guess
		}
	}
	name := uuid.New().String() + ext

	f, err := s.fs.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(filepath.Join(s.dir, name))
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if contentType == "" || contentType == octetStream {
		contentType = ContentTypeOf(name)
	}
	if contentType == octetStream {
		contentType = detected.String()
	}
	return &StoredFile{Filename: name, Size: n, ContentType: contentType}, nil
}

// Open returns a stored file for reading. Names that are not a plain file name
// are rejected.
func (s *UploadService) Open(filename string) (afero.File, fs.FileInfo, error) {
	if filename == "" || filename == "." || filename == ".." ||
		filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	path := filepath.Join(s.dir, filename)
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// ContentTypeOf guesses the media type from the file extension.
func ContentTypeOf(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return octetStream
}
