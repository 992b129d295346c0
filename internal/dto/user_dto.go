package dto

import "github.com/google/uuid"

type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ProfileSettingsRequest struct {
	DisplayName string `json:"displayName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

type AddLibraryRequest struct {
	SeriesID uuid.UUID `json:"series_id"`
	Status   string    `json:"status,omitempty"`
}

type UpdateLibraryRequest struct {
	Status      string `json:"status,omitempty"`
	LastChapter int    `json:"last_chapter,omitempty"`
}
