package utils

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"regdesk/metrics"
	"regdesk/models"

	"github.com/gabriel-vasile/mimetype"
)

// Upload form fields with dedicated storage and rules
const (
	AadharField    = "aadharFile"
	PanField       = "panFile"
	SignatureField = "signatureFile"
)

type uploadRule struct {
	dir        string
	extensions []string
	mimeTypes  []string
	allowed    string // Human readable list used in error messages
}

var (
	documentRule = uploadRule{
		extensions: []string{".jpg", ".jpeg", ".png", ".pdf"},
		mimeTypes:  []string{"image/jpeg", "image/png", "application/pdf"},
		allowed:    "JPG, JPEG, PNG and PDF",
	}
	imageRule = uploadRule{
		extensions: []string{".jpg", ".jpeg", ".png"},
		mimeTypes:  []string{"image/jpeg", "image/png"},
		allowed:    "JPG, JPEG and PNG",
	}
)

func ruleFor(field string) uploadRule {
	var rule uploadRule
	switch field {
	case AadharField:
		rule, rule.dir = documentRule, "aadhar"
	case PanField:
		rule, rule.dir = documentRule, "pan"
	case SignatureField:
		rule, rule.dir = imageRule, "signatures"
	default:
		rule, rule.dir = documentRule, "others"
	}
	return rule
}

// FileError is an upload rejected by type or size. Nothing is left on disk.
type FileError struct {
	Field   string
	Allowed string
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// FileIntake validates multipart uploads and stores them under root.
type FileIntake struct {
	root    string
	maxSize int64
	metrics *metrics.Metrics
}

// NewFileIntake returns an intake storing files below root. m may be nil.
func NewFileIntake(root string, maxSize int64, m *metrics.Metrics) *FileIntake {
	return &FileIntake{root: root, maxSize: maxSize, metrics: m}
}

func (fi *FileIntake) Root() string {
	return fi.root
}

// Save checks file against the rules of field and copies it to disk.
func (fi *FileIntake) Save(field string, file *multipart.FileHeader) (*models.FileInfo, error) {
	info, err := fi.save(field, file)
	var fileErr *FileError
	switch {
	case err == nil:
		fi.metrics.ObserveUpload(field, true)
	case errors.As(err, &fileErr):
		fi.metrics.ObserveUpload(field, false)
	}
	return info, err
}

func (fi *FileIntake) save(field string, file *multipart.FileHeader) (*models.FileInfo, error) {
	rule := ruleFor(field)

	if file.Size > fi.maxSize {
		return nil, fi.tooLarge(field)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !contains(rule.extensions, ext) {
		return nil, invalidType(field, rule)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer src.Close()

	mimeType := baseMediaType(file.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		detected, err := mimetype.DetectReader(src)
		if err != nil {
			return nil, fmt.Errorf("detect content type of %s: %w", field, err)
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload %s: %w", field, err)
		}
		mimeType = baseMediaType(detected.String())
	}
	if !contains(rule.mimeTypes, mimeType) {
		return nil, invalidType(field, rule)
	}

	destDir := filepath.Join(fi.root, rule.dir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%d-%d%s", field, time.Now().UnixMilli(), rand.IntN(1e9), ext)
	filePath := filepath.Join(destDir, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filePath, err)
	}

	// The header size is client supplied, so the copy enforces the limit again.
	written, err := io.Copy(dst, io.LimitReader(src, fi.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > fi.maxSize {
		err = fi.tooLarge(field)
	}
	if err != nil {
		_ = os.Remove(filePath)
		var fileErr *FileError
		if errors.As(err, &fileErr) {
			return nil, err
		}
		return nil, fmt.Errorf("write %s: %w", filePath, err)
	}

	return &models.FileInfo{
		Filename:     filename,
		OriginalName: file.Filename,
		MimeType:     mimeType,
		Size:         written,
		Path:         filePath,
	}, nil
}

// Remove deletes files best-effort. Missing files are not an error.
func (fi *FileIntake) Remove(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// URL maps a stored path to its public address under /uploads.
func (fi *FileIntake) URL(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(fi.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return "/uploads/" + filepath.ToSlash(rel)
}

// NewBatch starts tracking the files written for one request.
func (fi *FileIntake) NewBatch() *Batch {
	return &Batch{intake: fi}
}

// Batch collects files saved during one request so they can be rolled back
// when the record is not persisted.
type Batch struct {
	intake *FileIntake
	paths  []string
}

func (b *Batch) Save(field string, file *multipart.FileHeader) (*models.FileInfo, error) {
	info, err := b.intake.Save(field, file)
	if err != nil {
		return nil, err
	}
	b.paths = append(b.paths, info.Path)
	return info, nil
}

func (b *Batch) Paths() []string {
	return b.paths
}

// Rollback deletes every file saved through the batch.
func (b *Batch) Rollback() error {
	paths := b.paths
	b.paths = nil
	return b.intake.Remove(paths...)
}

func (fi *FileIntake) tooLarge(field string) *FileError {
	return &FileError{
		Field:   field,
		Allowed: fmt.Sprintf("max %d bytes", fi.maxSize),
		Message: fmt.Sprintf("%s exceeds the maximum file size of %s", field, humanSize(fi.maxSize)),
	}
}

// RequestTooLarge is the rejection for a request body over the server limit,
// which is refused before any single file can be inspected.
func (fi *FileIntake) RequestTooLarge() *FileError {
	return &FileError{
		Allowed: fmt.Sprintf("max %d bytes", fi.maxSize),
		Message: fmt.Sprintf("Upload exceeds the maximum file size of %s per file", humanSize(fi.maxSize)),
	}
}

func invalidType(field string, rule uploadRule) *FileError {
	return &FileError{
		Field:   field,
		Allowed: rule.allowed,
		Message: fmt.Sprintf("Invalid file type for %s. Only %s files are allowed", field, rule.allowed),
	}
}

func baseMediaType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
