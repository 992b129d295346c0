package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/mannaworks/manna-server/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newModerationService(t *testing.T) (*ModerationService, *gorm.DB) {
	db := newTestDB(t)
	return NewModerationService(db, notify.New(db, "")), db
}

func seedSeries(t *testing.T, db *gorm.DB, status string) *models.Series {
	t.Helper()
	series := &models.Series{
		ID:        uuid.New(),
		Title:     "Moonlit Blade",
		Slug:      "moonlit-blade",
		Status:    status,
		CreatorID: uuid.New(),
	}
	if status == models.StatusPublished {
		published := time.Now().Add(-24 * time.Hour)
		series.PublishedAt = &published
	}
	require.NoError(t, db.Create(series).Error)
	return series
}

func TestModerate_TransitionMatrix(t *testing.T) {
	expected := map[string]map[string]string{
		models.StatusDraft: {
			models.ActionApprove:        models.StatusDraft,
			models.ActionReject:         models.StatusDraft,
			models.ActionRequestChanges: models.StatusDraft,
		},
		models.StatusReview: {
			models.ActionApprove:        models.StatusPublished,
			models.ActionReject:         models.StatusDraft,
			models.ActionRequestChanges: models.StatusDraft,
		},
		models.StatusPublished: {
			models.ActionApprove:        models.StatusPublished,
			models.ActionReject:         models.StatusDraft,
			models.ActionRequestChanges: models.StatusDraft,
		},
	}

	for status, actions := range expected {
		for action, want := range actions {
			t.Run(fmt.Sprintf("%s_%s", status, action), func(t *testing.T) {
				svc, db := newModerationService(t)
				series := seedSeries(t, db, status)
				actorID := uuid.New()

				resp, err := svc.Moderate(series.ID, actorID, &dto.ModerateRequest{Action: action})
				require.NoError(t, err)
				assert.True(t, resp.Success)
				assert.Equal(t, action, resp.Action)
				assert.Equal(t, want, resp.NewStatus)

				var got models.Series
				require.NoError(t, db.First(&got, "id = ?", series.ID).Error)
				assert.Equal(t, want, got.Status)

				// Publish timestamp follows the transition.
				switch {
				case want == models.StatusPublished:
					assert.NotNil(t, got.PublishedAt)
				case want == models.StatusDraft:
					assert.Nil(t, got.PublishedAt)
				}

				// Exactly one history entry per invocation, whatever the outcome.
				var count int64
				db.Model(&models.ModerationAction{}).Where("series_id = ?", series.ID).Count(&count)
				assert.Equal(t, int64(1), count)

				var entry models.ModerationAction
				require.NoError(t, db.First(&entry, "series_id = ?", series.ID).Error)
				assert.Equal(t, actorID, entry.ActorID)
				assert.Equal(t, status, entry.FromStatus)
				assert.Equal(t, want, entry.ToStatus)

				// Best-effort creator notification was recorded.
				var notifications int64
				db.Model(&models.Notification{}).Where("user_id = ?", series.CreatorID).Count(&notifications)
				assert.Equal(t, int64(1), notifications)
			})
		}
	}
}

func TestModerate_ApproveOnDraftIsNoOpButAudited(t *testing.T) {
	svc, db := newModerationService(t)
	series := seedSeries(t, db, models.StatusDraft)

	resp, err := svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: models.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, resp.NewStatus)

	var got models.Series
	require.NoError(t, db.First(&got, "id = ?", series.ID).Error)
	assert.Equal(t, models.StatusDraft, got.Status)

	var count int64
	db.Model(&models.ModerationAction{}).Where("series_id = ?", series.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestModerate_PublishTimestampPreservedOnRepublish(t *testing.T) {
	svc, db := newModerationService(t)
	series := seedSeries(t, db, models.StatusReview)

	_, err := svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: models.ActionApprove})
	require.NoError(t, err)

	var first models.Series
	require.NoError(t, db.First(&first, "id = ?", series.ID).Error)
	require.NotNil(t, first.PublishedAt)

	// Send back to draft and through review again: reject clears the
	// timestamp, the second approval sets a fresh one.
	_, err = svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: models.ActionReject})
	require.NoError(t, err)

	var drafted models.Series
	require.NoError(t, db.First(&drafted, "id = ?", series.ID).Error)
	assert.Nil(t, drafted.PublishedAt)
}

func TestModerate_InvalidActionAndMissingSeries(t *testing.T) {
	svc, db := newModerationService(t)
	series := seedSeries(t, db, models.StatusReview)

	_, err := svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: "publish"})
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = svc.Moderate(uuid.New(), uuid.New(), &dto.ModerateRequest{Action: models.ActionApprove})
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, db := newModerationService(t)
	series := seedSeries(t, db, models.StatusReview)

	_, err := svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: models.ActionRequestChanges, Reason: "typos"})
	require.NoError(t, err)
	_, err = svc.Moderate(series.ID, uuid.New(), &dto.ModerateRequest{Action: models.ActionApprove})
	require.NoError(t, err)

	entries, err := svc.History(series.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionApprove, entries[0].Action)
	assert.Equal(t, models.ActionRequestChanges, entries[1].Action)
	assert.Equal(t, "typos", entries[1].Reason)
}

func TestSubmitForReview(t *testing.T) {
	svc, db := newModerationService(t)
	creator := uuid.New()

	series, err := svc.CreateSeries(creator, &dto.CreateSeriesRequest{Title: "Ash Ember"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, series.Status)
	assert.Equal(t, "ash-ember", series.Slug)

	_, err = svc.SubmitForReview(series.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotCreator)

	submitted, err := svc.SubmitForReview(series.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReview, submitted.Status)

	_, err = svc.SubmitForReview(series.ID, creator)
	assert.ErrorIs(t, err, ErrNotDraft)

	var count int64
	db.Model(&models.Series{}).Where("status = ?", models.StatusReview).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListPublished_DeterministicOrder(t *testing.T) {
	svc, db := newModerationService(t)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		published := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, db.Create(&models.Series{
			ID:          uuid.New(),
			Title:       fmt.Sprintf("Series %d", i),
			Slug:        fmt.Sprintf("series-%d", i),
			Status:      models.StatusPublished,
			CreatorID:   uuid.New(),
			PublishedAt: &published,
		}).Error)
	}
	seedSeries(t, db, models.StatusDraft)

	first, total, err := svc.ListPublished(3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, first, 3)
	assert.Equal(t, "Series 4", first[0].Title)

	// Identical queries with no intervening writes return identical pages.
	second, _, err := svc.ListPublished(3, 0)
	require.NoError(t, err)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
