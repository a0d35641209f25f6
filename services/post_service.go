package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/intrafeed/intrafeed/metrics"
	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/notify"
	"github.com/intrafeed/intrafeed/storage"
	"github.com/intrafeed/intrafeed/utils"
)

// DefaultRejectionReason is stored when a moderator gives none.
const DefaultRejectionReason = "Rejected by moderator"

// StatsCachePrefix namespaces cached admin statistics.
const StatsCachePrefix = "intrafeed:stats:"

const (
	maxTitleLength   = 255
	maxContentLength = 20000
	maxAttachments   = 10
)

// PostDraft carries user supplied fields for create and update.
type PostDraft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Service string   `json:"service"`
	Files   []string `json:"files"`
}

// PinRequest pins or unpins a post.
type PinRequest struct {
	Pinned    bool     `json:"pinned"`
	Locations []string `json:"locations"`
	Order     int      `json:"order"`
}

// ListFilter selects a page of posts.
type ListFilter struct {
	Service  string
	Page     int
	PageSize int
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ServiceFeed is the department tab: posts pinned to the service, then the rest.
type ServiceFeed struct {
	Service models.Service    `json:"service"`
	Pinned  []models.Post     `json:"pinned"`
	Posts   Page[models.Post] `json:"posts"`
}

// ReactionResult is returned by ToggleReaction.
type ReactionResult struct {
	PostID       uint                        `json:"post_id"`
	Reactions    models.ReactionSet          `json:"reactions"`
	Counts       map[models.ReactionKind]int `json:"counts"`
	Total        int                         `json:"total"`
	UserReaction *models.ReactionKind        `json:"user_reaction"`
}

// PostService implements post storage, moderation and reactions.
type PostService struct {
	db            *gorm.DB
	store         storage.Store
	dispatcher    notify.Dispatcher
	now           func() time.Time
	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

// NewPostService wires the post store. store and dispatcher may be nil.
func NewPostService(db *gorm.DB, store storage.Store, dispatcher notify.Dispatcher) *PostService {
	return &PostService{
		db:            db,
		store:         store,
		dispatcher:    dispatcher,
		now:           time.Now,
		notifyTimeout: 30 * time.Second,
	}
}

// Wait blocks until in-flight notification dispatches have finished.
func (s *PostService) Wait() {
	s.inflight.Wait()
}

// Create stores a new post for owner. Admin posts skip the moderation queue.
func (s *PostService) Create(ctx context.Context, draft PostDraft, owner *models.User) (*models.Post, error) {
	if owner == nil {
		return nil, unauthenticatedError(40100, "authentication required")
	}
	service, err := s.resolveService(draft.Service, owner, owner.Service)
	if err != nil {
		return nil, err
	}
	title, content, err := cleanText(draft.Title, draft.Content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:           title,
		Content:         content,
		Author:          owner.DisplayName(),
		OwnerUserID:     owner.ID,
		Service:         service,
		Status:          models.PostPending,
		PinnedLocations: datatypes.JSONSlice[models.PinLocation]{},
		Reactions:       datatypes.NewJSONType(models.NewReactionSet()),
	}
	if owner.IsAdmin {
		now := s.now()
		post.Status = models.PostApproved
		post.ApprovedBy = &owner.ID
		post.ApprovedAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uploads, err := s.resolveUploads(tx, draft.Files, owner.ID, 0)
		if err != nil {
			return err
		}
		if post.Content == "" && len(uploads) == 0 {
			return validationError(40011, "content or at least one attachment is required")
		}
		applyAttachments(post, uploads)

		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return attachUploads(tx, post.ID, uploads)
	})
	if err != nil {
		return nil, err
	}

	metrics.PostCreated(string(post.Service), string(post.Status))
	utils.InvalidateByPrefix(ctx, StatsCachePrefix)
	if post.Status == models.PostApproved {
		post.NotificationSent = s.notifyOnce(ctx, post.ID)
	}
	return post, nil
}

// Get returns a post. Posts that are not approved are only visible to their owner and admins.
func (s *PostService) Get(ctx context.Context, postID uint, viewer *models.User) (*models.Post, error) {
	post, err := s.find(s.db.WithContext(ctx), postID, false)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostApproved && !canManage(viewer, post) {
		return nil, errPostNotFound()
	}
	return post, nil
}

// Update edits a post. Owners may edit while pending, admins while not rejected.
func (s *PostService) Update(ctx context.Context, postID uint, draft PostDraft, actor *models.User) (*models.Post, error) {
	if actor == nil {
		return nil, unauthenticatedError(40100, "authentication required")
	}
	var updated *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, postID, true)
		if err != nil {
			return err
		}
		switch {
		case actor.IsAdmin:
			if post.Status == models.PostRejected {
				return validationError(40012, "rejected posts cannot be edited")
			}
		case post.OwnerUserID == actor.ID:
			if post.Status != models.PostPending {
				return forbiddenError(40310, "only pending posts can be edited")
			}
		default:
			return forbiddenError(40311, "you cannot edit this post")
		}

		owner := actor
		if post.OwnerUserID != actor.ID {
			owner = &models.User{ID: post.OwnerUserID, IsAdmin: true}
		}
		service, err := s.resolveService(draft.Service, owner, post.Service)
		if err != nil {
			return err
		}
		title, content, err := cleanText(draft.Title, draft.Content)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":   title,
			"content": content,
			"service": service,
		}
		if draft.Files != nil {
			uploads, err := s.resolveUploads(tx, draft.Files, post.OwnerUserID, post.ID)
			if err != nil {
				return err
			}
			if content == "" && len(uploads) == 0 {
				return validationError(40011, "content or at least one attachment is required")
			}
			applyAttachments(post, uploads)
			updates["images"] = post.Images
			updates["files"] = post.Files

			keep := lo.Map(uploads, func(u models.UploadedFile, _ int) uint { return u.ID })
			detach := tx.Model(&models.UploadedFile{}).Where("post_id = ?", post.ID)
			if len(keep) > 0 {
				detach = detach.Where("id NOT IN ?", keep)
			}
			if err := detach.Update("post_id", nil).Error; err != nil {
				return err
			}
			if err := attachUploads(tx, post.ID, uploads); err != nil {
				return err
			}
		} else if content == "" && len(post.Files) == 0 {
			return validationError(40011, "content or at least one attachment is required")
		}

		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return err
		}
		updated, err = s.find(tx, post.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Approve publishes a pending post. Approving twice is a no-op; rejected posts stay rejected.
func (s *PostService) Approve(ctx context.Context, postID uint, admin *models.User) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = s.find(tx, postID, true)
		if err != nil {
			return err
		}
		switch post.Status {
		case models.PostApproved:
			return nil
		case models.PostRejected:
			return validationError(40013, "rejected posts cannot be approved")
		}
		now := s.now()
		if err := tx.Model(post).Updates(map[string]interface{}{
			"status":      models.PostApproved,
			"approved_by": admin.ID,
			"approved_at": now,
		}).Error; err != nil {
			return err
		}
		post.Status = models.PostApproved
		post.ApprovedBy = &admin.ID
		post.ApprovedAt = &now
		return logModeration(tx, post.ID, admin.ID, models.ActionApprove, "")
	})
	if err != nil {
		return nil, err
	}

	metrics.ModerationDecision(string(models.ActionApprove))
	utils.InvalidateByPrefix(ctx, StatsCachePrefix)
	if !post.NotificationSent {
		post.NotificationSent = s.notifyOnce(ctx, post.ID)
	}
	return post, nil
}

// Reject takes a pending or approved post out of the feeds and clears its pins.
func (s *PostService) Reject(ctx context.Context, postID uint, admin *models.User, reason string) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	reason = utils.StripTags(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	if utf8.RuneCountInString(reason) > 500 {
		return nil, validationError(40014, "rejection reason is too long")
	}

	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = s.find(tx, postID, true)
		if err != nil {
			return err
		}
		updates := unpinUpdates()
		updates["status"] = models.PostRejected
		updates["rejection_reason"] = reason
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return err
		}
		if err := logModeration(tx, post.ID, admin.ID, models.ActionReject, reason); err != nil {
			return err
		}
		post, err = s.find(tx, post.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.ModerationDecision(string(models.ActionReject))
	utils.InvalidateByPrefix(ctx, StatsCachePrefix)
	return post, nil
}

// SetPin pins an approved post to the general feed, its service feed or both, or unpins it.
func (s *PostService) SetPin(ctx context.Context, postID uint, req PinRequest, admin *models.User) (*models.Post, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var locations []models.PinLocation
	if req.Pinned {
		for _, raw := range req.Locations {
			loc := models.PinLocation(strings.ToLower(strings.TrimSpace(raw)))
			if loc != models.PinGeneral && loc != models.PinService {
				return nil, validationError(40015, "pin location must be general or service")
			}
			locations = append(locations, loc)
		}
		locations = lo.Uniq(locations)
		if len(locations) == 0 {
			return nil, validationError(40016, "at least one pin location is required")
		}
	}

	var post *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, err = s.find(tx, postID, true)
		if err != nil {
			return err
		}
		if post.Status != models.PostApproved {
			return validationError(40017, "only approved posts can be pinned")
		}

		action := models.ActionUnpin
		updates := unpinUpdates()
		if req.Pinned {
			action = models.ActionPin
			updates = map[string]interface{}{
				"is_pinned":        true,
				"pinned_locations": datatypes.JSONSlice[models.PinLocation](locations),
				"pinned_at":        s.now(),
				"pinned_by":        admin.ID,
				"pinned_order":     req.Order,
			}
		}
		if err := tx.Model(post).Updates(updates).Error; err != nil {
			return err
		}
		if err := logModeration(tx, post.ID, admin.ID, action, ""); err != nil {
			return err
		}
		post, err = s.find(tx, post.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	if req.Pinned {
		metrics.ModerationDecision(string(models.ActionPin))
	} else {
		metrics.ModerationDecision(string(models.ActionUnpin))
	}
	return post, nil
}

// Delete removes a post and, best effort, its stored files.
func (s *PostService) Delete(ctx context.Context, postID uint, requester *models.User) error {
	if requester == nil {
		return unauthenticatedError(40100, "authentication required")
	}
	var uploads []models.UploadedFile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, postID, true)
		if err != nil {
			return err
		}
		if !canManage(requester, post) {
			return forbiddenError(40312, "only the author or an administrator can delete this post")
		}
		if err := tx.Where("post_id = ?", post.ID).Find(&uploads).Error; err != nil {
			return err
		}
		if len(uploads) > 0 {
			if err := tx.Delete(&models.UploadedFile{}, lo.Map(uploads, func(u models.UploadedFile, _ int) uint { return u.ID })).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return err
	}

	for _, u := range uploads {
		removeStored(ctx, s.store, u)
	}
	utils.InvalidateByPrefix(ctx, StatsCachePrefix)
	return nil
}

// ListApproved returns approved posts newest first, optionally for one service.
func (s *PostService) ListApproved(ctx context.Context, filter ListFilter) (*Page[models.Post], error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", models.PostApproved)
	if strings.TrimSpace(filter.Service) != "" {
		service, ok := models.ParseService(filter.Service)
		if !ok {
			return nil, errUnknownService()
		}
		q = q.Where("service = ?", service)
	}
	return paginate[models.Post](q, "created_at DESC, id DESC", filter.Page, filter.PageSize)
}

// ListPending returns the moderation queue, oldest first.
func (s *PostService) ListPending(ctx context.Context, page, pageSize int) (*Page[models.Post], error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", models.PostPending)
	return paginate[models.Post](q, "created_at ASC, id ASC", page, pageSize)
}

// ListByOwner returns every post of a user regardless of status, newest first.
func (s *PostService) ListByOwner(ctx context.Context, ownerID uint, page, pageSize int) (*Page[models.Post], error) {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("owner_user_id = ?", ownerID)
	return paginate[models.Post](q, "created_at DESC, id DESC", page, pageSize)
}

// ListServiceFeed returns the posts pinned to a service followed by its other approved posts.
func (s *PostService) ListServiceFeed(ctx context.Context, rawService string, page, pageSize int) (*ServiceFeed, error) {
	service, ok := models.ParseService(rawService)
	if !ok {
		return nil, errUnknownService()
	}
	db := s.db.WithContext(ctx)

	var candidates []models.Post
	if err := db.Where("status = ? AND service = ? AND is_pinned = ?", models.PostApproved, service, true).
		Order("pinned_order ASC, pinned_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	pinned := lo.Filter(candidates, func(p models.Post, _ int) bool {
		return p.PinnedIn(models.PinService)
	})

	q := db.Model(&models.Post{}).Where("status = ? AND service = ?", models.PostApproved, service)
	if ids := postIDs(pinned); len(ids) > 0 {
		q = q.Where("id NOT IN ?", ids)
	}
	rest, err := paginate[models.Post](q, "created_at DESC, id DESC", page, pageSize)
	if err != nil {
		return nil, err
	}
	return &ServiceFeed{Service: service, Pinned: pinned, Posts: *rest}, nil
}

// History returns the moderation log of a post, oldest first.
func (s *PostService) History(ctx context.Context, postID uint) ([]models.ModerationLog, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.find(db, postID, false); err != nil {
		return nil, err
	}
	logs := []models.ModerationLog{}
	if err := db.Where("post_id = ?", postID).Order("created_at ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ToggleReaction applies one reaction click by user on an approved post.
func (s *PostService) ToggleReaction(ctx context.Context, postID uint, user *models.User, rawKind string) (*ReactionResult, error) {
	if user == nil {
		return nil, unauthenticatedError(40100, "authentication required")
	}
	kind, ok := models.ParseReactionKind(rawKind)
	if !ok {
		return nil, invalidReactionKindError(40020, "invalid reaction kind")
	}

	var result *ReactionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.find(tx, postID, true)
		if err != nil {
			return err
		}
		if post.Status != models.PostApproved {
			return validationError(40021, "only approved posts accept reactions")
		}

		set, userKind := post.ReactionSet().Toggle(user.ID, user.DisplayName(), kind, s.now())
		if err := tx.Model(post).Updates(map[string]interface{}{
			"reactions":      datatypes.NewJSONType(set),
			"reaction_total": set.Total(),
		}).Error; err != nil {
			return err
		}
		result = &ReactionResult{
			PostID:       post.ID,
			Reactions:    set,
			Counts:       set.Counts(),
			Total:        set.Total(),
			UserReaction: userKind,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.ReactionToggled(string(kind), result.UserReaction != nil)
	return result, nil
}

// notifyOnce claims the notification flag and, when this call won the claim,
// dispatches in the background. It reports whether the flag is now set.
func (s *PostService) notifyOnce(ctx context.Context, postID uint) bool {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND notification_sent = ?", postID, false).
		Update("notification_sent", true)
	if res.Error != nil {
		utils.Logger.Error("claim notification failed", zap.Uint("post_id", postID), zap.Error(res.Error))
		return false
	}
	if res.RowsAffected != 1 {
		return true
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		dctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		err := s.dispatch(dctx, postID)
		metrics.NotificationDispatched(err)
		if err != nil {
			utils.Logger.Warn("approval notification failed", zap.Uint("post_id", postID), zap.Error(err))
		}
	}()
	return true
}

func (s *PostService) dispatch(ctx context.Context, postID uint) error {
	if s.dispatcher == nil {
		return nil
	}
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return err
	}
	recipients, err := s.recipients(ctx, post)
	if err != nil {
		return err
	}
	return s.dispatcher.Dispatch(ctx, post, recipients)
}

// recipients are users with notifications on, except the author; service posts only reach that service.
func (s *PostService) recipients(ctx context.Context, post models.Post) ([]models.User, error) {
	q := s.db.WithContext(ctx).
		Where("notifications_enabled = ? AND id <> ?", true, post.OwnerUserID)
	if post.Service != models.ServiceGeneral {
		q = q.Where("service = ?", post.Service)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// resolveService validates the requested service against what owner may post to.
func (s *PostService) resolveService(raw string, owner *models.User, fallback models.Service) (models.Service, error) {
	service := fallback
	if strings.TrimSpace(raw) != "" {
		parsed, ok := models.ParseService(raw)
		if !ok {
			return "", errUnknownService()
		}
		service = parsed
	}
	if !service.Valid() {
		return "", errUnknownService()
	}
	if !owner.IsAdmin && service != owner.Service && service != models.ServiceGeneral {
		return "", forbiddenError(40313, "you can only post to your own service or general")
	}
	return service, nil
}

// resolveUploads loads the upload records behind urls, keeping their order.
// Records must belong to ownerID and be free or already attached to postID.
func (s *PostService) resolveUploads(tx *gorm.DB, urls []string, ownerID, postID uint) ([]models.UploadedFile, error) {
	urls = lo.Uniq(lo.Compact(lo.Map(urls, func(u string, _ int) string { return strings.TrimSpace(u) })))
	if len(urls) == 0 {
		return nil, nil
	}
	if len(urls) > maxAttachments {
		return nil, validationError(40018, "too many attachments")
	}
	var found []models.UploadedFile
	q := tx.Where("url IN ? AND owner_id = ?", urls, ownerID)
	if postID == 0 {
		q = q.Where("post_id IS NULL")
	} else {
		q = q.Where("post_id IS NULL OR post_id = ?", postID)
	}
	if err := q.Find(&found).Error; err != nil {
		return nil, err
	}
	byURL := lo.KeyBy(found, func(u models.UploadedFile) string { return u.URL })
	ordered := make([]models.UploadedFile, 0, len(urls))
	for _, u := range urls {
		rec, ok := byURL[u]
		if !ok {
			return nil, validationError(40019, "unknown attachment: "+u)
		}
		ordered = append(ordered, rec)
	}
	return ordered, nil
}

func (s *PostService) find(tx *gorm.DB, postID uint, lock bool) (*models.Post, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var post models.Post
	if err := q.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPostNotFound()
		}
		return nil, err
	}
	return &post, nil
}

func applyAttachments(post *models.Post, uploads []models.UploadedFile) {
	files := make(datatypes.JSONSlice[models.Attachment], 0, len(uploads))
	images := make(datatypes.JSONSlice[string], 0, len(uploads))
	for _, u := range uploads {
		files = append(files, models.Attachment{
			Path:         u.URL,
			OriginalName: u.OriginalName,
			Kind:         u.Kind,
			Size:         u.Size,
		})
		if u.Kind == models.AttachmentImage {
			images = append(images, u.URL)
		}
	}
	post.Files = files
	post.Images = images
}

func attachUploads(tx *gorm.DB, postID uint, uploads []models.UploadedFile) error {
	if len(uploads) == 0 {
		return nil
	}
	ids := lo.Map(uploads, func(u models.UploadedFile, _ int) uint { return u.ID })
	return tx.Model(&models.UploadedFile{}).Where("id IN ?", ids).Update("post_id", postID).Error
}

func cleanText(rawTitle, rawContent string) (string, string, error) {
	title := utils.StripTags(rawTitle)
	content := strings.TrimSpace(utils.Sanitize(strings.TrimSpace(rawContent)))
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", "", validationError(40022, "title is too long")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return "", "", validationError(40023, "content is too long")
	}
	return title, content, nil
}

func unpinUpdates() map[string]interface{} {
	return map[string]interface{}{
		"is_pinned":        false,
		"pinned_locations": datatypes.JSONSlice[models.PinLocation]{},
		"pinned_at":        nil,
		"pinned_by":        nil,
		"pinned_order":     0,
	}
}

func logModeration(tx *gorm.DB, postID, actorID uint, action models.ModerationAction, reason string) error {
	return tx.Create(&models.ModerationLog{
		PostID:  postID,
		ActorID: actorID,
		Action:  action,
		Reason:  reason,
	}).Error
}

func removeStored(ctx context.Context, store storage.Store, u models.UploadedFile) {
	if store == nil || u.StorageKey == "" {
		return
	}
	if err := store.Remove(ctx, u.StorageKey); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			utils.Logger.Warn("stored file already missing", zap.String("key", u.StorageKey))
			return
		}
		utils.Logger.Warn("remove stored file failed", zap.String("key", u.StorageKey), zap.Error(err))
	}
}

func paginate[T any](q *gorm.DB, order string, page, pageSize int) (*Page[T], error) {
	page, pageSize = normalizePage(page, pageSize)
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	items := []T{}
	if err := q.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func postIDs(posts []models.Post) []uint {
	return lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })
}

func canManage(u *models.User, post *models.Post) bool {
	return u != nil && (u.IsAdmin || u.ID == post.OwnerUserID)
}

func requireAdmin(u *models.User) error {
	if u == nil {
		return unauthenticatedError(40100, "authentication required")
	}
	if !u.IsAdmin {
		return forbiddenError(40300, "administrator privileges required")
	}
	return nil
}

func errPostNotFound() *DomainError {
	return notFoundError(40400, "post not found")
}

func errUnknownService() *DomainError {
	return validationError(40010, "unknown service")
}
