package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/handler"
	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/model"
	adminmodel "github.com/deppfellow/quiz-api/internal/model/admin"
	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/model/user"
)

func registerV1Routes(v1 *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	registerAuthRoutes(v1, h.Auth, mw)

	authn := v1.Group("", mw.Auth.RequireAuth)
	admin := v1.Group("", mw.Auth.RequireAuth, mw.Auth.RequireAdmin)

	u := h.User
	authn.GET("/users/me", handler.Handle(u.Handler, u.Me, http.StatusOK, &model.EmptyRequest{}))
	authn.PATCH("/users/me", handler.Handle(u.Handler, u.UpdateMe, http.StatusOK, &user.UpdateProfileRequest{}))

	cat := h.Category
	authn.GET("/categories", handler.Handle(cat.Handler, cat.List, http.StatusOK, &model.EmptyRequest{}))
	authn.GET("/categories/:id", handler.Handle(cat.Handler, cat.Get, http.StatusOK, &model.IDRequest{}))
	admin.POST("/categories", handler.Handle(cat.Handler, cat.Create, http.StatusCreated, &category.CreateCategoryRequest{}))
	admin.PATCH("/categories/:id", handler.Handle(cat.Handler, cat.Update, http.StatusOK, &category.UpdateCategoryRequest{}))
	admin.DELETE("/categories/:id", handler.HandleNoContent(cat.Handler, cat.Delete, http.StatusNoContent, &model.IDRequest{}))

	q := h.Question
	authn.GET("/questions", handler.Handle(q.Handler, q.List, http.StatusOK, &question.ListQuestionsRequest{}))
	admin.GET("/questions/stats", handler.Handle(q.Handler, q.Stats, http.StatusOK, &model.EmptyRequest{}))
	authn.GET("/questions/:id", handler.Handle(q.Handler, q.Get, http.StatusOK, &model.IDRequest{}))
	authn.POST("/questions", handler.Handle(q.Handler, q.Create, http.StatusCreated, &question.CreateQuestionRequest{}))
	authn.PUT("/questions/:id", handler.Handle(q.Handler, q.Update, http.StatusOK, &question.UpdateQuestionRequest{}))
	authn.DELETE("/questions/:id", handler.HandleNoContent(q.Handler, q.Delete, http.StatusNoContent, &model.IDRequest{}))
	admin.POST("/questions/:id/review", handler.Handle(q.Handler, q.Review, http.StatusOK, &question.ReviewQuestionRequest{}))

	qz := h.Quiz
	authn.GET("/quizzes", handler.Handle(qz.Handler, qz.List, http.StatusOK, &quiz.ListQuizzesRequest{}))
	authn.GET("/quizzes/:id", handler.Handle(qz.Handler, qz.Get, http.StatusOK, &model.IDRequest{}))
	authn.POST("/quizzes", handler.Handle(qz.Handler, qz.Create, http.StatusCreated, &quiz.CreateQuizRequest{}))
	authn.PATCH("/quizzes/:id", handler.Handle(qz.Handler, qz.Update, http.StatusOK, &quiz.UpdateQuizRequest{}))
	authn.DELETE("/quizzes/:id", handler.HandleNoContent(qz.Handler, qz.Delete, http.StatusNoContent, &model.IDRequest{}))
	authn.POST("/quizzes/:id/attempts", handler.Handle(qz.Handler, qz.StartAttempt, http.StatusCreated, &model.IDRequest{}))

	authn.GET("/attempts", handler.Handle(qz.Handler, qz.ListAttempts, http.StatusOK, &model.EmptyRequest{}))
	authn.GET("/attempts/:id", handler.Handle(qz.Handler, qz.GetAttempt, http.StatusOK, &model.IDRequest{}))
	authn.POST("/attempts/:id/submit", handler.Handle(qz.Handler, qz.SubmitAttempt, http.StatusOK, &quiz.SubmitAttemptRequest{}))

	ad := h.Admin
	admin.POST("/admin/emails", handler.Handle(ad.Handler, ad.SendEmail, http.StatusAccepted, &adminmodel.SendEmailRequest{}))
	admin.POST("/admin/questions/import", handler.Handle(ad.Handler, ad.ImportQuestions, http.StatusAccepted, &adminmodel.ImportQuestionsRequest{}))
}

func registerAuthRoutes(v1 *echo.Group, a *handler.AuthHandler, mw *middleware.Middlewares) {
	public := v1.Group("/auth", mw.RateLimit.AuthLimiter())
	public.POST("/register", handler.Handle(a.Handler, a.Register, http.StatusCreated, &auth.RegisterRequest{}))
	public.POST("/login", handler.Handle(a.Handler, a.Login, http.StatusOK, &auth.LoginRequest{}))
	public.POST("/refresh", handler.Handle(a.Handler, a.Refresh, http.StatusOK, &auth.RefreshRequest{}))
	public.POST("/verify-email", handler.Handle(a.Handler, a.VerifyEmail, http.StatusOK, &auth.VerifyEmailRequest{}))
	public.POST("/resend-verification", handler.Handle(a.Handler, a.ResendVerification, http.StatusOK, &auth.EmailRequest{}))
	public.POST("/forgot-password", handler.Handle(a.Handler, a.ForgotPassword, http.StatusOK, &auth.EmailRequest{}))
	public.POST("/reset-password", handler.Handle(a.Handler, a.ResetPassword, http.StatusOK, &auth.ResetPasswordRequest{}))

	public.GET("/oauth/providers", handler.Handle(a.Handler, a.OAuthProviders, http.StatusOK, &model.EmptyRequest{}))
	public.GET("/oauth/:provider/login", handler.HandleRedirect(a.Handler, a.OAuthLogin, http.StatusFound, &auth.OAuthLoginRequest{}))
	public.GET("/oauth/:provider/url", handler.Handle(a.Handler, a.OAuthURL, http.StatusOK, &auth.OAuthLoginRequest{}))
	public.GET("/oauth/:provider/callback", handler.Handle(a.Handler, a.OAuthCallback, http.StatusOK, &auth.OAuthCallbackRequest{}))

	private := v1.Group("/auth", mw.Auth.RequireAuth)
	private.POST("/logout", handler.HandleNoContent(a.Handler, a.Logout, http.StatusNoContent, &model.EmptyRequest{}))
	private.POST("/change-password", handler.Handle(a.Handler, a.ChangePassword, http.StatusOK, &auth.ChangePasswordRequest{}))
}
