package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/intrafeed/intrafeed/models"
	"github.com/intrafeed/intrafeed/utils"
)

// RegisterInput is a local account sign-up.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Service   string `json:"service"`
	Role      string `json:"role"`
}

// DirectoryProfile is what the identity provider tells us about an OAuth user.
type DirectoryProfile struct {
	Email      string
	FirstName  string
	LastName   string
	Department string
	JobTitle   string
	Avatar     string
}

// ProfileUpdate carries optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	Avatar               *string `json:"avatar"`
	Role                 *string `json:"role"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	Service              *string `json:"service"`
}

// UserService manages accounts and administrator rights.
type UserService struct {
	db           *gorm.DB
	isAdminEmail func(email string) bool
}

// NewUserService returns a service; isAdminEmail marks bootstrap administrators and may be nil.
func NewUserService(db *gorm.DB, isAdminEmail func(email string) bool) *UserService {
	if isAdminEmail == nil {
		isAdminEmail = func(string) bool { return false }
	}
	return &UserService{db: db, isAdminEmail: isAdminEmail}
}

// Register creates a local account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, err
	}
	first, last, err := cleanNames(in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Password) < utils.MinPasswordLength {
		return nil, validationError(40031, "password must be at least 8 characters")
	}
	service := models.ServiceGeneral
	if strings.TrimSpace(in.Service) != "" {
		parsed, ok := models.ParseService(in.Service)
		if !ok {
			return nil, errUnknownService()
		}
		service = parsed
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FirstName:            first,
		LastName:             last,
		Email:                email,
		Service:              service,
		Role:                 InferRole(utils.StripTags(in.Role)),
		IsAdmin:              s.isAdminEmail(email),
		NotificationsEnabled: true,
		PasswordHash:         hash,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findUserByEmail(tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.IsOAuthUser {
				return conflictError(40902, "this e-mail signs in with Microsoft")
			}
			return conflictError(40901, "e-mail already registered")
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks local credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := findUserByEmail(s.db.WithContext(ctx), models.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, unauthenticatedError(40110, "invalid e-mail or password")
	}
	if user.IsOAuthUser {
		return nil, conflictError(40902, "this e-mail signs in with Microsoft")
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, unauthenticatedError(40110, "invalid e-mail or password")
	}
	return user, nil
}

// UpsertOAuth returns the OAuth account for the profile, creating it on first sign-in.
// Service and role are inferred from the directory only at creation.
func (s *UserService) UpsertOAuth(ctx context.Context, p DirectoryProfile) (*models.User, error) {
	email, err := parseEmail(p.Email)
	if err != nil {
		return nil, err
	}
	first := utils.StripTags(p.FirstName)
	last := utils.StripTags(p.LastName)
	if first == "" {
		first = strings.SplitN(email, "@", 2)[0]
	}

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findUserByEmail(tx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsOAuthUser {
				return conflictError(40903, "a local account already uses this e-mail")
			}
			updates := map[string]interface{}{"first_name": first, "last_name": last}
			if p.Avatar != "" {
				updates["avatar"] = p.Avatar
			}
			if err := tx.Model(existing).Updates(updates).Error; err != nil {
				return err
			}
			existing.FirstName, existing.LastName = first, last
			if p.Avatar != "" {
				existing.Avatar = p.Avatar
			}
			user = existing
			return nil
		}
		user = &models.User{
			FirstName:            first,
			LastName:             last,
			Email:                email,
			Service:              InferService(p.Department),
			Role:                 InferRole(p.JobTitle),
			IsAdmin:              s.isAdminEmail(email),
			IsOAuthUser:          true,
			Avatar:               p.Avatar,
			NotificationsEnabled: true,
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound()
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the actor's own profile. Changing service requires administrator rights.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, in ProfileUpdate) (*models.User, error) {
	if actor == nil {
		return nil, unauthenticatedError(40100, "authentication required")
	}
	updates := map[string]interface{}{}
	if in.FirstName != nil || in.LastName != nil {
		first, last := actor.FirstName, actor.LastName
		if in.FirstName != nil {
			first = *in.FirstName
		}
		if in.LastName != nil {
			last = *in.LastName
		}
		first, last, err := cleanNames(first, last)
		if err != nil {
			return nil, err
		}
		updates["first_name"] = first
		updates["last_name"] = last
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if avatar != "" && !strings.HasPrefix(avatar, "https://") && !strings.HasPrefix(avatar, "/") && !strings.HasPrefix(avatar, "data:image/") {
			return nil, validationError(40032, "avatar must be an https URL, a local path or an image data URI")
		}
		updates["avatar"] = avatar
	}
	if in.Role != nil {
		updates["role"] = InferRole(utils.StripTags(*in.Role))
	}
	if in.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *in.NotificationsEnabled
	}
	if in.Service != nil {
		service, ok := models.ParseService(*in.Service)
		if !ok {
			return nil, errUnknownService()
		}
		if service != actor.Service && !actor.IsAdmin {
			return nil, forbiddenError(40320, "only administrators can change service")
		}
		updates["service"] = service
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", actor.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, actor.ID)
}

// List pages through users ordered by name.
func (s *UserService) List(ctx context.Context, page, pageSize int) (*Page[models.User], error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	return paginate[models.User](q, "last_name ASC, first_name ASC, id ASC", page, pageSize)
}

// SetAdmin grants or revokes administrator rights. An administrator cannot demote
// themselves and the last administrator cannot be demoted.
func (s *UserService) SetAdmin(ctx context.Context, actor *models.User, targetID uint, isAdmin bool) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var target models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUserNotFound()
			}
			return err
		}
		if target.IsAdmin == isAdmin {
			return nil
		}
		if !isAdmin {
			var admins int64
			if err := tx.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return forbiddenError(40321, "the last administrator cannot be demoted")
			}
			if target.ID == actor.ID {
				return forbiddenError(40322, "administrators cannot demote themselves")
			}
		}
		if err := tx.Model(&target).Update("is_admin", isAdmin).Error; err != nil {
			return err
		}
		target.IsAdmin = isAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InvalidateByPrefix(ctx, StatsCachePrefix)
	return &target, nil
}

func findUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func parseEmail(raw string) (string, error) {
	email := models.NormalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError(40030, "invalid e-mail address")
	}
	return email, nil
}

func cleanNames(first, last string) (string, string, error) {
	first = utils.StripTags(first)
	last = utils.StripTags(last)
	if first == "" || last == "" {
		return "", "", validationError(40033, "first and last name are required")
	}
	if utf8.RuneCountInString(first) > 128 || utf8.RuneCountInString(last) > 128 {
		return "", "", validationError(40034, "name is too long")
	}
	return first, last, nil
}

func errUserNotFound() *DomainError {
	return notFoundError(40401, "user not found")
}
