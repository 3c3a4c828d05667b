package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/container"
	"github.com/joshua-takyi/rentinout/internal/handlers"
	"github.com/joshua-takyi/rentinout/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(ct *container.Container) *gin.Engine {
	if ct.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     ct.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.TokenHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(ct.Logger))
	r.Use(middleware.ErrorHandler(ct.Logger))
	r.Use(middleware.Metrics(ct.Metrics))
	r.Use(gin.Recovery())

	auth := middleware.Auth(ct.Issuer)
	admin := middleware.AdminOnly()

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Socket ready")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "rentinout-api",
		})
	})
	if ct.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(ct.Registry, promhttp.HandlerOpts{})))
	}
	r.GET("/ws", handlers.ServeWS(ct.Hub, ct.Issuer, handlers.NewUpgrader(ct.Config.AllowedOrigins)))

	users := r.Group("/users")
	{
		users.POST("", handlers.SignUp(ct.AuthService))
		users.POST("/login", handlers.Login(ct.AuthService))
		users.POST("/login/gmail", handlers.LoginWithGoogle(ct.AuthService))
		users.GET("/verify/:userId/:uniqueString", handlers.VerifyEmail(ct.AuthService))
		users.GET("/verified", handlers.Verified())
		users.POST("/resendVerification", handlers.ResendVerification(ct.AuthService))
		users.POST("/requestPasswordReset", handlers.RequestPasswordReset(ct.AuthService))
		users.POST("/resetPassword", handlers.ResetPassword(ct.AuthService))
		users.POST("/clientEmail", handlers.ContactEmail(ct.AuthService))

		users.GET("/userList", auth, admin, handlers.ListUsers(ct.UserService))
		users.GET("/userSearch", handlers.SearchUsers(ct.UserService))
		users.GET("/count", auth, admin, handlers.CountUsers(ct.UserService))
		users.GET("/info/:id", handlers.GetUserInfo(ct.UserService))
		users.GET("/infoToken/:id", auth, handlers.GetUserInfoWithToken(ct.UserService, ct.AuthService))
		users.GET("/getRank/:userID", handlers.GetRank(ct.UserService))
		users.GET("/getWishList", auth, handlers.GetWishList(ct.UserService))
		users.GET("/users-by-date", auth, handlers.UsersByDate(ct.UserService))
		users.GET("/getChat/:roomID", auth, handlers.GetChat(ct.ChatService))
		users.GET("/getAllChat", auth, handlers.GetAllChats(ct.ChatService))

		users.PUT("/:idEdit", auth, handlers.UpdateUser(ct.UserService))
		users.PATCH("/changeRole/:userID", auth, admin, handlers.ChangeRole(ct.UserService))
		users.PATCH("/changeActive/:userID", auth, admin, handlers.ChangeActive(ct.UserService))
		users.PATCH("/rankUser/:userID", auth, handlers.RankUser(ct.UserService))
		users.PATCH("/uploadProfile", auth, handlers.UploadProfileImage(ct.UserService))
		users.PATCH("/uploadBanner", auth, handlers.UploadBannerImage(ct.UserService))
		users.PATCH("/chatUpdate", auth, handlers.ChatUpdate(ct.ChatService))

		users.DELETE("/:idDel", auth, handlers.DeleteUser(ct.UserService))
		users.DELETE("/deleteChat/:chatID", auth, handlers.DeleteChat(ct.ChatService))
		users.DELETE("/deleteMessage/:roomID/:msgID", auth, handlers.DeleteMessage(ct.ChatService))
		users.POST("/cloudinary/profileDel", auth, handlers.DeleteProfileImage(ct.UserService))
		users.POST("/cloudinary/bannerDel", auth, handlers.DeleteBannerImage(ct.UserService))
	}

	posts := r.Group("/posts")
	{
		posts.GET("", handlers.ListPosts(ct.PostService))
		posts.GET("/getPostByID/:postID", handlers.GetPost(ct.PostService))
		posts.GET("/count", handlers.CountPosts(ct.PostService))
		posts.GET("/search", handlers.SearchPosts(ct.PostService))
		posts.GET("/checkLikes/:postID", handlers.CheckLikes(ct.PostService))
		posts.GET("/topThreeLikes/:postID", handlers.TopThreeLikes(ct.PostService))
		posts.GET("/countMyPosts", auth, handlers.CountMyPosts(ct.PostService))
		posts.GET("/userPosts/:userID", handlers.UserPosts(ct.PostService))
		posts.GET("/count-by-category", handlers.CountByCategory(ct.PostService))

		posts.POST("", auth, handlers.CreatePost(ct.PostService))
		posts.POST("/likePost/:postID", auth, handlers.LikePost(ct.PostService))
		posts.POST("/singleImgDel/:postID/:imgID", auth, handlers.DeletePostImage(ct.PostService))
		posts.POST("/onCancelImgDel", auth, handlers.DiscardUploads(ct.PostService))
		posts.PUT("/:postID", auth, handlers.UpdatePost(ct.PostService))
		posts.PATCH("/changeRange/:postID", auth, handlers.ChangePostRange(ct.PostService))
		posts.PATCH("/changeActive/:postID", auth, admin, handlers.ChangePostActive(ct.PostService))
		posts.DELETE("/:postID", auth, handlers.DeletePost(ct.PostService))
	}

	categories := r.Group("/categories")
	{
		categories.GET("", handlers.ListCategories(ct.CategoryService))
		categories.GET("/count", handlers.CountCategories(ct.CategoryService))
		categories.GET("/search", handlers.SearchCategories(ct.CategoryService))
		categories.POST("", auth, admin, handlers.CreateCategory(ct.CategoryService))
		categories.PUT("/:idEdit", auth, admin, handlers.UpdateCategory(ct.CategoryService))
		categories.DELETE("/:idDel", auth, admin, handlers.DeleteCategory(ct.CategoryService))
	}

	r.DELETE("/cloudinary/image", auth, handlers.DeleteMedia(ct.MediaService))

	return r
}
