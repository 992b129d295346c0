package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/mannaworks/manna-server/internal/notify"
	"gorm.io/gorm"
)

var (
	ErrSeriesNotFound = errors.New("series not found")
	ErrInvalidAction  = errors.New("action must be approve, reject, or request_changes")
	ErrNotCreator     = errors.New("only the creator can submit a series for review")
	ErrNotDraft       = errors.New("only a draft can be submitted for review")
)

type ModerationService struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewModerationService(db *gorm.DB, notifier *notify.Notifier) *ModerationService {
	return &ModerationService{db: db, notifier: notifier}
}

// Moderate applies a moderation action to a series.
//
//	review      + approve          -> published (publish timestamp set if unset)
//	any         + reject           -> draft (publish timestamp cleared)
//	any         + request_changes  -> draft (publish timestamp cleared)
//	draft/published + approve      -> unchanged
//
// Every call appends exactly one history entry regardless of outcome. The
// creator notification is best-effort and never fails the transition.
func (s *ModerationService) Moderate(seriesID, actorID uuid.UUID, req *dto.ModerateRequest) (*dto.ModerateResponse, error) {
	switch req.Action {
	case models.ActionApprove, models.ActionReject, models.ActionRequestChanges:
	default:
		return nil, ErrInvalidAction
	}

	var series models.Series
	if err := s.db.First(&series, "id = ?", seriesID).Error; err != nil {
		return nil, ErrSeriesNotFound
	}

	fromStatus := series.Status
	toStatus := fromStatus
	updates := map[string]interface{}{}

	switch req.Action {
	case models.ActionApprove:
		if fromStatus == models.StatusReview {
			toStatus = models.StatusPublished
			updates["status"] = toStatus
			if series.PublishedAt == nil {
				updates["published_at"] = time.Now()
			}
		}
	case models.ActionReject, models.ActionRequestChanges:
		toStatus = models.StatusDraft
		updates["status"] = toStatus
		updates["published_at"] = nil
	}

	entry := models.ModerationAction{
		ID:         uuid.New(),
		SeriesID:   series.ID,
		ActorID:    actorID,
		Action:     req.Action,
		Reason:     req.Reason,
		Notes:      req.Notes,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&series).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, fmt.Errorf("moderation transition failed: %w", err)
	}

	sid := series.ID
	message := fmt.Sprintf("%q was %s", series.Title, pastTense(req.Action))
	if fromStatus == toStatus {
		message = fmt.Sprintf("%q was reviewed; its status remains %s", series.Title, fromStatus)
	}
	s.notifier.Notify(series.CreatorID, "moderation."+req.Action, &sid, message)

	return &dto.ModerateResponse{Success: true, Action: req.Action, NewStatus: toStatus}, nil
}

// History returns a series' moderation audit log, newest first.
func (s *ModerationService) History(seriesID uuid.UUID) ([]models.ModerationAction, error) {
	var series models.Series
	if err := s.db.First(&series, "id = ?", seriesID).Error; err != nil {
		return nil, ErrSeriesNotFound
	}
	var entries []models.ModerationAction
	err := s.db.Where("series_id = ?", seriesID).
		Order("created_at DESC, id DESC").Find(&entries).Error
	return entries, err
}

// CreateSeries creates a new draft.
func (s *ModerationService) CreateSeries(creatorID uuid.UUID, req *dto.CreateSeriesRequest) (*models.Series, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	series := models.Series{
		ID:        uuid.New(),
		Title:     req.Title,
		Slug:      slug.Make(req.Title),
		Synopsis:  req.Synopsis,
		CoverURL:  req.CoverURL,
		Status:    models.StatusDraft,
		CreatorID: creatorID,
	}
	if err := s.db.Create(&series).Error; err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}
	return &series, nil
}

// SubmitForReview moves a creator's draft into the review queue.
func (s *ModerationService) SubmitForReview(seriesID, userID uuid.UUID) (*models.Series, error) {
	var series models.Series
	if err := s.db.First(&series, "id = ?", seriesID).Error; err != nil {
		return nil, ErrSeriesNotFound
	}
	if series.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if series.Status != models.StatusDraft {
		return nil, ErrNotDraft
	}
	if err := s.db.Model(&series).Update("status", models.StatusReview).Error; err != nil {
		return nil, err
	}
	series.Status = models.StatusReview
	return &series, nil
}

// ListPublished returns a deterministic page of published series.
func (s *ModerationService) ListPublished(limit, offset int) ([]models.Series, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	query := s.db.Model(&models.Series{}).Where("status = ?", models.StatusPublished)
	query.Count(&total)

	var series []models.Series
	err := query.Order("published_at DESC, id ASC").
		Limit(limit).Offset(offset).Find(&series).Error
	if err != nil {
		return nil, 0, err
	}
	return series, total, nil
}

func pastTense(action string) string {
	switch action {
	case models.ActionApprove:
		return "approved and published"
	case models.ActionReject:
		return "rejected and returned to draft"
	default:
		return "sent back for changes"
	}
}
