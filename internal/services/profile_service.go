package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/models"
	"gorm.io/gorm"
)

// activityWindow bounds how many recent activity entries are kept per user.
const activityWindow = 50

// chapterAchievements and completionAchievements map counter thresholds to
// achievement codes. Unlocks are one-way.
var chapterAchievements = map[int]string{
	1:    "first_chapter",
	100:  "hundred_chapters",
	1000: "thousand_chapters",
}

var completionAchievements = map[int]string{
	1:  "first_finish",
	10: "ten_finishes",
	50: "fifty_finishes",
}

// ProfileService owns reader profiles, the recent-activity feed, and derived
// achievements. All state lives in the injected database handle; there is no
// process-wide store.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the user's profile, creating an empty one on first read.
func (s *ProfileService) GetProfile(userID uuid.UUID) (*models.ReaderProfile, error) {
	profile := models.ReaderProfile{UserID: userID}
	if err := s.db.FirstOrCreate(&profile, models.ReaderProfile{UserID: userID}).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// RecordActivity appends to the user's activity feed and trims entries beyond
// the recent window. Best-effort: failures are logged, never returned.
func (s *ProfileService) RecordActivity(userID uuid.UUID, kind, detail string) {
	entry := models.ActivityEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   kind,
		Detail: detail,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		slog.Error("activity write failed", "error", err, "user_id", userID.String(), "kind", kind)
		return
	}

	// Trim entries beyond the window.
	var stale []uuid.UUID
	err := s.db.Model(&models.ActivityEntry{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(10 * activityWindow).Offset(activityWindow).
		Pluck("id", &stale).Error
	if err == nil && len(stale) > 0 {
		s.db.Delete(&models.ActivityEntry{}, "id IN ?", stale)
	}
}

// RecentActivity returns the user's activity feed, newest first.
func (s *ProfileService) RecentActivity(userID uuid.UUID, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > activityWindow {
		limit = 20
	}
	var entries []models.ActivityEntry
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// AddChaptersRead bumps the chapter counter and unlocks any crossed
// achievements.
func (s *ProfileService) AddChaptersRead(userID uuid.UUID, n int) {
	if n <= 0 {
		return
	}
	profile, err := s.GetProfile(userID)
	if err != nil {
		slog.Error("profile read failed", "error", err, "user_id", userID.String())
		return
	}
	profile.ChaptersRead += n
	if err := s.db.Model(profile).Update("chapters_read", profile.ChaptersRead).Error; err != nil {
		slog.Error("profile update failed", "error", err, "user_id", userID.String())
		return
	}
	s.unlockCrossed(userID, profile.ChaptersRead, chapterAchievements)
}

// CompleteSeries bumps the completion counter and unlocks any crossed
// achievements.
func (s *ProfileService) CompleteSeries(userID uuid.UUID) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		slog.Error("profile read failed", "error", err, "user_id", userID.String())
		return
	}
	profile.SeriesCompleted++
	if err := s.db.Model(profile).Update("series_completed", profile.SeriesCompleted).Error; err != nil {
		slog.Error("profile update failed", "error", err, "user_id", userID.String())
		return
	}
	s.unlockCrossed(userID, profile.SeriesCompleted, completionAchievements)
}

// Achievements returns the user's unlocked achievements, oldest first.
func (s *ProfileService) Achievements(userID uuid.UUID) ([]models.Achievement, error) {
	var out []models.Achievement
	err := s.db.Where("user_id = ?", userID).
		Order("unlocked_at ASC, code ASC").Find(&out).Error
	return out, err
}

func (s *ProfileService) unlockCrossed(userID uuid.UUID, counter int, thresholds map[int]string) {
	for threshold, code := range thresholds {
		if counter < threshold {
			continue
		}
		achievement := models.Achievement{
			ID:         uuid.New(),
			UserID:     userID,
			Code:       code,
			UnlockedAt: time.Now(),
		}
		// FirstOrCreate keeps unlocks idempotent and one-way.
		if err := s.db.Where("user_id = ? AND code = ?", userID, code).
			FirstOrCreate(&achievement).Error; err != nil {
			slog.Error("achievement unlock failed", "error", err, "user_id", userID.String(), "code", code)
		}
	}
}
