package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/intrafeed/intrafeed/config"
	"github.com/intrafeed/intrafeed/graph"
	"github.com/intrafeed/intrafeed/middleware"
	"github.com/intrafeed/intrafeed/services"
	"github.com/intrafeed/intrafeed/utils"
)

const oauthStateTTL = 10 * time.Minute

// AuthController handles local accounts, Microsoft sign-in and the caller's profile.
type AuthController struct {
	users    *services.UserService
	graph    *graph.Client
	endpoint oauth2.Endpoint
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users *services.UserService, graphClient *graph.Client) *AuthController {
	return &AuthController{
		users:    users,
		graph:    graphClient,
		endpoint: microsoft.AzureADEndpoint(config.Get().AzureTenantID),
	}
}

// Register creates a local account and signs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}

	user, err := a.users.Register(ctx.Request.Context(), req)
	if err != nil {
		utils.Fail(ctx, err, 50002)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Created(ctx, gin.H{"token": token, "user": userView(*user)})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.users.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Fail(ctx, err, 50003)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userView(*user)})
}

// Logout revokes the current token until it expires and clears the browser session.
func (a *AuthController) Logout(ctx *gin.Context) {
	claims, ok := middleware.CurrentClaims(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(ctx.Request.Context(), claims.ID, expiresAt)

	if _, mounted := ctx.Get(sessions.DefaultKey); mounted {
		session := sessions.Default(ctx)
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})
		if err := session.Save(); err != nil {
			utils.Logger.Warn("clear session failed", zap.Error(err))
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, userView(*user))
}

// UpdateProfile edits names, avatar, role, notification preference and, for admins, service.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req services.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	updated, err := a.users.UpdateProfile(ctx.Request.Context(), user, req)
	if err != nil {
		utils.Fail(ctx, err, 50031)
		return
	}
	utils.Success(ctx, userView(*updated))
}

// OAuthRedirect returns the Microsoft authorization URL, or redirects to it with ?redirect=1.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(ctx.Request.Context(), state, "microsoft", oauthStateTTL)

	authURL := cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
	if ctx.Query("redirect") != "" {
		ctx.Redirect(http.StatusFound, authURL)
		return
	}
	utils.Success(ctx, gin.H{"authorization_url": authURL, "state": state})
}

// OAuthCallback exchanges the authorization code, loads the directory profile and signs the user in.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	if e := ctx.Query("error"); e != "" {
		utils.Error(ctx, http.StatusBadRequest, 40008, "authorization denied: "+e)
		return
	}
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}
	if _, ok := utils.ConsumeState(ctx.Request.Context(), state); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 20*time.Second)
	defer cancel()
	token, err := cfg.Exchange(reqCtx, code)
	if err != nil {
		utils.Logger.Warn("oauth code exchange failed", zap.Error(err))
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	profile, err := a.graph.Me(reqCtx, token.AccessToken)
	if err != nil {
		utils.Logger.Warn("graph profile failed", zap.Error(err))
		utils.Error(ctx, http.StatusBadGateway, 50205, "failed to load directory profile")
		return
	}
	avatar, err := a.graph.Photo(reqCtx, token.AccessToken)
	if err != nil {
		utils.Logger.Debug("graph photo unavailable", zap.Error(err))
		avatar = ""
	}

	user, err := a.users.UpsertOAuth(reqCtx, services.DirectoryProfile{
		Email:      profile.Email(),
		FirstName:  profile.GivenName,
		LastName:   profile.Surname,
		Department: profile.Department,
		JobTitle:   profile.JobTitle,
		Avatar:     avatar,
	})
	if err != nil {
		utils.Fail(ctx, err, 50006)
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Email, utils.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	if _, mounted := ctx.Get(sessions.DefaultKey); mounted {
		session := sessions.Default(ctx)
		session.Set(middleware.SessionTokenKey, jwtToken)
		if err := session.Save(); err != nil {
			utils.Logger.Warn("save session failed", zap.Error(err))
		}
	}

	if front := strings.TrimRight(config.Get().FrontendURL, "/"); front != "" {
		ctx.Redirect(http.StatusFound, front+"/auth/callback#token="+url.QueryEscape(jwtToken))
		return
	}
	utils.Success(ctx, gin.H{"token": jwtToken, "user": userView(*user)})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.AzureClientID == "" || cfg.AzureClientSecret == "" {
		return nil, fmt.Errorf("microsoft oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.AzureClientID,
		ClientSecret: cfg.AzureClientSecret,
		RedirectURL:  strings.TrimRight(cfg.OAuthRedirectBase, "/") + "/api/v1/auth/oauth/microsoft/callback",
		Scopes:       []string{"openid", "profile", "email", "User.Read"},
		Endpoint:     a.endpoint,
	}, nil
}
