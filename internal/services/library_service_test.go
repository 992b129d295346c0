package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLibraryService(t *testing.T) (*LibraryService, *ProfileService, *gorm.DB) {
	db := newTestDB(t)
	profile := NewProfileService(db)
	return NewLibraryService(db, profile), profile, db
}

func TestLibrary_AddListRemove(t *testing.T) {
	svc, _, db := newLibraryService(t)
	userID := uuid.New()
	series := seedSeries(t, db, models.StatusPublished)

	entry, err := svc.Add(userID, &dto.AddLibraryRequest{SeriesID: series.ID})
	require.NoError(t, err)
	assert.Equal(t, models.LibraryReading, entry.Status)
	assert.Equal(t, series.Title, entry.Series.Title)

	_, err = svc.Add(userID, &dto.AddLibraryRequest{SeriesID: series.ID})
	assert.ErrorIs(t, err, ErrAlreadyInLibrary)

	_, err = svc.Add(userID, &dto.AddLibraryRequest{SeriesID: uuid.New()})
	assert.ErrorIs(t, err, ErrSeriesNotFound)

	_, err = svc.Add(userID, &dto.AddLibraryRequest{SeriesID: series.ID, Status: "bingeing"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	entries, total, err := svc.List(userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)

	require.NoError(t, svc.Remove(userID, series.ID))
	assert.ErrorIs(t, svc.Remove(userID, series.ID), ErrNotInLibrary)
}

func TestLibrary_AddAcceptsAnySeriesStatus(t *testing.T) {
	svc, _, db := newLibraryService(t)
	userID := uuid.New()

	// Creators track their own drafts too; library entry does not require a
	// published series.
	draft := seedSeries(t, db, models.StatusDraft)
	entry, err := svc.Add(userID, &dto.AddLibraryRequest{SeriesID: draft.ID, Status: models.LibraryPlanToRead})
	require.NoError(t, err)
	assert.Equal(t, models.LibraryPlanToRead, entry.Status)
}

func TestLibrary_ProgressFeedsProfile(t *testing.T) {
	svc, profile, db := newLibraryService(t)
	userID := uuid.New()
	series := seedSeries(t, db, models.StatusPublished)

	_, err := svc.Add(userID, &dto.AddLibraryRequest{SeriesID: series.ID})
	require.NoError(t, err)

	entry, err := svc.Update(userID, series.ID, &dto.UpdateLibraryRequest{LastChapter: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, entry.LastChapter)

	got, err := profile.GetProfile(userID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.ChaptersRead)

	// Chapter counts never move backwards.
	entry, err = svc.Update(userID, series.ID, &dto.UpdateLibraryRequest{LastChapter: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, entry.LastChapter)

	got, err = profile.GetProfile(userID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.ChaptersRead)
}

func TestLibrary_CompletionUnlocksAchievement(t *testing.T) {
	svc, profile, db := newLibraryService(t)
	userID := uuid.New()
	series := seedSeries(t, db, models.StatusPublished)

	_, err := svc.Add(userID, &dto.AddLibraryRequest{SeriesID: series.ID})
	require.NoError(t, err)

	_, err = svc.Update(userID, series.ID, &dto.UpdateLibraryRequest{Status: models.LibraryCompleted})
	require.NoError(t, err)

	got, err := profile.GetProfile(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeriesCompleted)

	achievements, err := profile.Achievements(userID)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, "first_finish", achievements[0].Code)

	// Re-completing does not double-unlock.
	_, err = svc.Update(userID, series.ID, &dto.UpdateLibraryRequest{Status: models.LibraryReading})
	require.NoError(t, err)
	_, err = svc.Update(userID, series.ID, &dto.UpdateLibraryRequest{Status: models.LibraryCompleted})
	require.NoError(t, err)

	achievements, err = profile.Achievements(userID)
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
}

func TestProfile_ChapterAchievementsAndActivityWindow(t *testing.T) {
	db := newTestDB(t)
	profile := NewProfileService(db)
	userID := uuid.New()

	profile.AddChaptersRead(userID, 1)
	achievements, err := profile.Achievements(userID)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, "first_chapter", achievements[0].Code)

	profile.AddChaptersRead(userID, 120)
	achievements, err = profile.Achievements(userID)
	require.NoError(t, err)
	assert.Len(t, achievements, 2)

	for i := 0; i < activityWindow+15; i++ {
		profile.RecordActivity(userID, "library.add", "Some Series")
	}
	var count int64
	db.Model(&models.ActivityEntry{}).Where("user_id = ?", userID).Count(&count)
	assert.LessOrEqual(t, count, int64(activityWindow))

	recent, err := profile.RecentActivity(userID, 20)
	require.NoError(t, err)
	assert.Len(t, recent, 20)
}
