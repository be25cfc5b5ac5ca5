package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/services"
	"github.com/gin-gonic/gin"
)

type loginResource struct {
	users  UserService
	logger logging.Logger
	opts   Options
}

func registerLogin(r *gin.RouterGroup, users UserService, logger logging.Logger, opts Options) {
	rs := &loginResource{users: users, logger: logger, opts: opts}
	r.POST("login/signup", rs.SignUp)
	r.POST("login", rs.SignIn)
	r.POST("logout", rs.SignOut)
	r.POST("login/refresh", rs.Refresh)
	r.PUT("login/profile", rs.UpdateProfile)
}

type signUpReq struct {
	Email       string `json:"email" form:"email" binding:"required,email"`
	Password    string `json:"password" form:"password" binding:"required"`
	DisplayName string `json:"displayName" form:"displayName" binding:"required,max=64"`
}

type signInReq struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" binding:"required"`
}

type profileReq struct {
	DisplayName string `json:"displayName" form:"displayName" binding:"required,max=64"`
}

type tokenResp struct {
	Notice string `json:"notice"`
	*services.TokenPair
}

func (rs *loginResource) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.AccessTokenHeaderName, token, maxAge, "/", "", rs.opts.SecureCookie, true)
}

func (rs *loginResource) issued(c *gin.Context, status int, msg string, tp *services.TokenPair) {
	rs.setCookie(c, tp.AccessToken, int(rs.opts.AccessTTL.Seconds()))
	c.JSON(status, tokenResp{Notice: msg, TokenPair: tp})
}

func (rs *loginResource) SignUp(c *gin.Context) {
	var req signUpReq
	if !bindAny(c, &req) {
		return
	}
	tp, err := rs.users.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	rs.issued(c, http.StatusCreated, "Sign-up complete.", tp)
}

func (rs *loginResource) SignIn(c *gin.Context) {
	var req signInReq
	if !bindAny(c, &req) {
		return
	}
	tp, err := rs.users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	rs.issued(c, http.StatusOK, "Welcome! You are logged in.", tp)
}

func (rs *loginResource) SignOut(c *gin.Context) {
	st := stateOf(c)
	if err := st.RequireLogin(); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	if err := rs.users.SignOut(c.Request.Context(), st.UserID); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	rs.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"notice": "You have been logged out."})
}

func (rs *loginResource) Refresh(c *gin.Context) {
	var req refreshReq
	if !bindAny(c, &req) {
		return
	}
	tp, err := rs.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		serErr(c, rs.logger, err)
		return
	}
	rs.issued(c, http.StatusOK, "", tp)
}

func (rs *loginResource) UpdateProfile(c *gin.Context) {
	var req profileReq
	if !bindAny(c, &req) {
		return
	}
	st := stateOf(c)
	if err := st.RequireLogin(); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	if err := rs.users.UpdateDisplayName(c.Request.Context(), st.UserID, req.DisplayName); err != nil {
		serErr(c, rs.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": "Profile updated.", "displayName": req.DisplayName})
}
