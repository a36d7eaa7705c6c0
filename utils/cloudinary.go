package utils

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// PhotoUploader stores an image and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, file interface{}, publicID, folder string) (string, error)
}

// CloudinaryUploader uploads visitor photos to Cloudinary.
type CloudinaryUploader struct {
	cld          *cloudinary.Cloudinary
	uploadPreset string
}

// NewCloudinaryUploader builds the Cloudinary client from credentials.
func NewCloudinaryUploader(cloudName, apiKey, apiSecret, uploadPreset string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, uploadPreset: uploadPreset}, nil
}

// Upload sends file (a path, URL, io.Reader or base64 data URI) and returns
// the secure URL. Photos are cropped to a square thumbnail.
func (u *CloudinaryUploader) Upload(ctx context.Context, file interface{}, publicID, folder string) (string, error) {
	params := uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		UploadPreset:   u.uploadPreset,
		Transformation: "c_thumb,w_400,h_400,g_face",
	}

	resp, err := u.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}
