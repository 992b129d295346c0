package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAlreadyInLibrary = errors.New("series already in library")
	ErrNotInLibrary     = errors.New("series not in library")
	ErrInvalidStatus    = errors.New("status must be reading, completed, plan_to_read, or dropped")
)

type LibraryService struct {
	db      *gorm.DB
	profile *ProfileService
}

func NewLibraryService(db *gorm.DB, profile *ProfileService) *LibraryService {
	return &LibraryService{db: db, profile: profile}
}

func validLibraryStatus(status string) bool {
	switch status {
	case models.LibraryReading, models.LibraryCompleted, models.LibraryPlanToRead, models.LibraryDropped:
		return true
	}
	return false
}

// Add puts a series into the user's library.
func (s *LibraryService) Add(userID uuid.UUID, req *dto.AddLibraryRequest) (*models.LibraryEntry, error) {
	status := req.Status
	if status == "" {
		status = models.LibraryReading
	}
	if !validLibraryStatus(status) {
		return nil, ErrInvalidStatus
	}

	var series models.Series
	if err := s.db.First(&series, "id = ?", req.SeriesID).Error; err != nil {
		return nil, ErrSeriesNotFound
	}

	var existing models.LibraryEntry
	if err := s.db.Where("user_id = ? AND series_id = ?", userID, req.SeriesID).
		First(&existing).Error; err == nil {
		return nil, ErrAlreadyInLibrary
	}

	entry := models.LibraryEntry{
		ID:       uuid.New(),
		UserID:   userID,
		SeriesID: req.SeriesID,
		Status:   status,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to add library entry: %w", err)
	}
	entry.Series = series

	s.profile.RecordActivity(userID, "library.add", series.Title)
	return &entry, nil
}

// Update changes reading status or progress for a library entry. Progress
// increments feed the reader profile counters.
func (s *LibraryService) Update(userID, seriesID uuid.UUID, req *dto.UpdateLibraryRequest) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	if err := s.db.Preload("Series").
		Where("user_id = ? AND series_id = ?", userID, seriesID).
		First(&entry).Error; err != nil {
		return nil, ErrNotInLibrary
	}

	prevStatus := entry.Status
	prevChapter := entry.LastChapter

	updates := map[string]interface{}{}
	if req.Status != "" {
		if !validLibraryStatus(req.Status) {
			return nil, ErrInvalidStatus
		}
		updates["status"] = req.Status
	}
	if req.LastChapter > prevChapter {
		updates["last_chapter"] = req.LastChapter
	}
	if len(updates) == 0 {
		return &entry, nil
	}

	if err := s.db.Model(&entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update library entry: %w", err)
	}

	if req.LastChapter > prevChapter {
		s.profile.AddChaptersRead(userID, req.LastChapter-prevChapter)
		entry.LastChapter = req.LastChapter
	}
	if req.Status == models.LibraryCompleted && prevStatus != models.LibraryCompleted {
		s.profile.CompleteSeries(userID)
		s.profile.RecordActivity(userID, "library.complete", entry.Series.Title)
	}
	if req.Status != "" {
		entry.Status = req.Status
	}
	return &entry, nil
}

// Remove deletes a series from the user's library.
func (s *LibraryService) Remove(userID, seriesID uuid.UUID) error {
	result := s.db.Where("user_id = ? AND series_id = ?", userID, seriesID).
		Delete(&models.LibraryEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotInLibrary
	}
	return nil
}

// List returns the user's library, most recently updated first.
func (s *LibraryService) List(userID uuid.UUID, limit, offset int) ([]models.LibraryEntry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	query := s.db.Model(&models.LibraryEntry{}).Where("user_id = ?", userID)
	query.Count(&total)

	var entries []models.LibraryEntry
	err := query.Preload("Series").
		Order("updated_at DESC, id ASC").
		Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
