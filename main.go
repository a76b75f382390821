package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/payment"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(client)

	db := client.Database(cfg.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("⚠️ review index warning: %v", err)
	}
	if err := database.EnsureSeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("⚠️ admin seed warning: %v", err)
	}

	var mail mailer.Sender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		mail = &mailer.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}
	}

	gateway := payment.NewClient(cfg.KhaltiBaseURL, cfg.KhaltiSecretKey)

	authed := middleware.Authenticate(db, cfg.JWTSecret)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	customerOnly := middleware.RequireRoles(models.RoleCustomer)

	r := gin.Default()
	r.Static("/upload", cfg.UploadDir)

	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db))
		auth.POST("/login", handlers.Login(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
		auth.POST("/refresh", handlers.Refresh(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
		auth.POST("/logout", handlers.Logout(db))
		auth.POST("/forgotpassword", handlers.ForgotPassword(db, mail))
		auth.POST("/verifyotp", handlers.VerifyOTP(db))
		auth.POST("/resetpassword", handlers.ResetPassword(db))
	}

	profile := r.Group("/profile")
	profile.Use(authed)
	{
		profile.GET("", handlers.GetMyProfile())
		profile.PATCH("", handlers.UpdateMyProfile(db))
		profile.DELETE("", handlers.DeleteMyProfile(db))
		profile.PATCH("/changepassword", handlers.ChangeMyPassword(db))
	}

	product := r.Group("/admin/product")
	product.Use(authed)
	{
		product.GET("/getproducts", handlers.GetProducts(db))
		product.GET("/getproducts/:id", handlers.GetProduct(db))
		product.POST("/", adminOnly, handlers.CreateProduct(db, cfg.UploadDir))
		product.PATCH("/:id", adminOnly, handlers.EditProduct(db, cfg.UploadDir))
		product.DELETE("/:id", adminOnly, handlers.DeleteProduct(db, cfg.UploadDir))
	}

	adminOrder := r.Group("/admin/order")
	adminOrder.Use(authed, adminOnly)
	{
		adminOrder.GET("/", handlers.GetAllOrders(db))
		adminOrder.GET("/:id", handlers.GetOrder(db))
		adminOrder.PATCH("/:id", handlers.UpdateOrderStatus(db))
		adminOrder.PATCH("/:id/paymentStatus", handlers.UpdatePaymentStatus(db))
		adminOrder.DELETE("/:id", handlers.DeleteOrder(db))
	}

	r.GET("/admin/user", authed, adminOnly, handlers.GetUsers(db))

	order := r.Group("/order")
	order.Use(authed)
	{
		order.GET("/", handlers.GetMyOrders(db))
		order.POST("/", handlers.CreateOrder(db))
		order.POST("/cancel", handlers.CancelOrder(db))
		order.PATCH("/:id", handlers.UpdateMyOrder(db))
		order.DELETE("/:id", handlers.DeleteMyOrder(db))
	}

	cart := r.Group("/cart")
	cart.Use(authed)
	{
		cart.GET("/", handlers.GetMyCart(db))
		cart.POST("/product/:productId", handlers.AddToCart(db))
		cart.PATCH("/product/:productId", handlers.UpdateCartItem(db))
		cart.DELETE("/product/:productId", handlers.RemoveCartItem(db))
	}

	pay := r.Group("/payment")
	pay.Use(authed)
	{
		pay.POST("/", handlers.InitiatePayment(db, gateway, cfg.PaymentReturn, cfg.PaymentWebsite))
		pay.POST("/verifypidx", handlers.VerifyPayment(db, gateway))
	}

	review := r.Group("/review")
	review.Use(authed)
	{
		review.GET("/myreviews", handlers.GetMyReviews(db))
		review.POST("/:id", customerOnly, handlers.CreateReview(db))
	}

	r.Run(":" + cfg.Port)
}
