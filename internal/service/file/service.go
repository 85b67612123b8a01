package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peoplecore/leave-backend-go/internal/pkg/storage"
)

var certificateExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

type FileService interface {
	// UploadCertificate stores a medical certificate attached to a leave request
	UploadCertificate(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// UploadFitnessCertificate stores the fitness-to-resume certificate
	// required when recalling from medical leave
	UploadFitnessCertificate(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func (s *fileServiceImpl) UploadCertificate(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	return s.uploadDocument(ctx, "certificates", employeeID, file, filename)
}

func (s *fileServiceImpl) UploadFitnessCertificate(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	return s.uploadDocument(ctx, "fitness-certificates", employeeID, file, filename)
}

func (s *fileServiceImpl) uploadDocument(ctx context.Context, category string, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	valid := false
	for _, allowed := range certificateExts {
		if ext == allowed {
			valid = true
			break
		}
	}
	if !valid {
		return "", fmt.Errorf("invalid file type %s, allowed: %s", ext, strings.Join(certificateExts, ", "))
	}

	contentType := "application/pdf"
	if ext != ".pdf" {
		contentType = "image/" + strings.TrimPrefix(ext, ".")
		if ext == ".jpg" {
			contentType = "image/jpeg"
		}
	}

	path := fmt.Sprintf("%s/%s/%s%s", category, employeeID, uuid.NewString(), ext)

	storedPath, err := s.storage.Upload(ctx, file, path, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", category, err)
	}

	return storedPath, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}
