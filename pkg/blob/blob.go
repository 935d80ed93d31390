package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store accepts uploads under a path prefix and returns a public URL.
type Store interface {
	Put(ctx context.Context, prefix, contentType string, data []byte) (string, error)
}

// DiskStore เก็บไฟล์ลง disk แล้วเสิร์ฟผ่าน static route
type DiskStore struct {
	Dir     string // e.g. ./uploads
	BaseURL string // e.g. /uploads
	MaxSize int
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), MaxSize: 5 * 1024 * 1024}
}

var extByType = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

func (s *DiskStore) Put(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, ok := extByType[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if s.MaxSize > 0 && len(data) > s.MaxSize {
		return "", fmt.Errorf("upload exceeds %d bytes", s.MaxSize)
	}

	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	folder := filepath.Join(s.Dir, filepath.FromSlash(prefix))
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(folder, name), data, 0644); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + path.Join(prefix, name), nil
}

// DecodeBase64 รับได้ทั้งแบบ data URL และ base64 ล้วน
func DecodeBase64(b64 string) ([]byte, string, error) {
	contentType := ""
	if strings.HasPrefix(b64, "data:") {
		meta, payload, ok := strings.Cut(b64, ",")
		if !ok {
			return nil, "", fmt.Errorf("malformed data url")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		b64 = payload
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
