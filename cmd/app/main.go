package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"fiesta/cmd/fx/checkout_fx"
	"fiesta/cmd/fx/db_fx"
	"fiesta/cmd/fx/deposit_fx"
	"fiesta/cmd/fx/logger_fx"
	"fiesta/cmd/fx/metrics_fx"
	"fiesta/cmd/fx/payment_fx"
	"fiesta/cmd/fx/platform_fx"
	"fiesta/cmd/fx/reconciler_fx"
	"fiesta/cmd/fx/redis_fx"
	"fiesta/cmd/fx/stripe_fx"
	"fiesta/cmd/fx/transfer_fx"
	"fiesta/cmd/fx/webhook_fx"
	"fiesta/internal/api/controllers"
	"fiesta/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	app := fx.New(
		logger_fx.Module,
		db_fx.Module,
		redis_fx.Module,
		metrics_fx.Module,
		stripe_fx.Module,
		platform_fx.Module,
		payment_fx.Module,
		deposit_fx.Module,
		transfer_fx.Module,
		checkout_fx.Module,
		webhook_fx.Module,
		reconciler_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := os.Getenv("PORT")
				if port == "" {
					port = "8080"
				}
				log.Printf("Starting HTTP server at :%s", port)
				if err := engine.Run(":" + port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	paymentController *controllers.PaymentController,
	depositController *controllers.DepositController,
	transferController *controllers.TransferController,
	checkoutController *controllers.CheckoutController,
	webhookController *controllers.WebhookController,
	registry *prometheus.Registry) *gin.Engine {

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, paymentController, depositController, transferController, checkoutController, webhookController, registry)

	return r
}

func RegisterRoutes(r *gin.Engine,
	paymentController *controllers.PaymentController,
	depositController *controllers.DepositController,
	transferController *controllers.TransferController,
	checkoutController *controllers.CheckoutController,
	webhookController *controllers.WebhookController,
	registry *prometheus.Registry) {

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	r.POST("/create-stripe-payment-intent", paymentController.CreatePaymentIntent)
	r.POST("/create-setup-intent", paymentController.CreateSetupIntent)
	r.POST("/stripe-customer-cancel", transferController.CustomerCancel)

	r.POST("/authorize-security-deposit", depositController.AuthorizeDeposit)
	r.POST("/release-security-deposit", depositController.ReleaseDeposit)

	r.POST("/initiate-privileged-multi-checkout", checkoutController.InitiateMultiCheckout)
	r.POST("/confirm-payment-multi-checkout", checkoutController.ConfirmMultiCheckout)

	r.POST("/webhook/stripe", webhookController.HandleStripeWebhook)
	r.POST("/webhook/trackShippoOrder", webhookController.HandleShippoWebhook)

	// Capture, cancel, transfer and refund move money out of the platform and
	// stay operator-only.
	operator := r.Group("/")
	operator.Use(middleware.JWTAuthMiddleware(), middleware.RoleMiddleware("operator"))
	operator.POST("/capture-stripe-payment-intent", paymentController.CapturePaymentIntent)
	operator.POST("/cancel-stripe-payment-intent", paymentController.CancelPaymentIntent)
	operator.POST("/initiate-stripe-refund", paymentController.RefundPayment)
	operator.POST("/create-transfer", transferController.TransferToProvider)
	operator.POST("/refund-single-item", transferController.RefundSingleItem)
	operator.POST("/claim-security-deposit", depositController.ClaimDeposit)
}
