package routes

import (
	"github.com/gofiber/fiber/v2"

	"facturation-backend/controllers"
	"facturation-backend/middlewares"
	"facturation-backend/models"
)

// documentRoutes mounts the shared surface of one document family:
// CRUD, the explicit transition endpoints and the conversion paths.
func documentRoutes(g fiber.Router, f controllers.DocumentFamily, transitions map[string]string) {
	g.Get("/", f.List())
	g.Post("/", f.Create())
	g.Get("/:id", f.Get())
	g.Put("/:id", f.Update())
	g.Delete("/:id", f.Delete())
	g.Get("/:id/pdf", f.PDF())
	for suffix, target := range transitions {
		g.Put("/:id/"+suffix, f.Transition(suffix, target))
	}
}

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)

	// Everything else requires a caller identity: a JWT for users, the
	// shared secret for automation callbacks.
	protected := api.Group("")
	protected.Use(middlewares.CallerContext())
	protected.Use(middlewares.Idempotency())

	quotes := protected.Group("/devis")
	documentRoutes(quotes, controllers.Quotes, map[string]string{
		"send":   models.StatusSent,
		"accept": models.StatusAccepted,
		"refuse": models.StatusRefused,
		"expire": models.StatusExpired,
	})
	quotes.Put("/:id/convert-to-facture", controllers.Quotes.ConvertToInvoice())
	quotes.Put("/:id/convert-to-bdc", controllers.Quotes.ConvertToOrder())

	orders := protected.Group("/bons-commande")
	documentRoutes(orders, controllers.PurchaseOrders, map[string]string{
		"validate": models.StatusValidated,
		"cancel":   models.StatusCancelled,
	})
	orders.Put("/:id/convert-to-facture", controllers.PurchaseOrders.ConvertToInvoice())

	proformas := protected.Group("/proformas")
	documentRoutes(proformas, controllers.Proformas, map[string]string{
		"send":   models.StatusSent,
		"accept": models.StatusAccepted,
		"refuse": models.StatusRefused,
		"expire": models.StatusExpired,
	})
	proformas.Put("/:id/convert-to-facture", controllers.Proformas.ConvertToInvoice())

	invoices := protected.Group("/factures")
	invoices.Get("/", controllers.ListInvoices)
	invoices.Get("/:id", controllers.GetInvoice)
	invoices.Get("/:id/pdf", controllers.InvoicePDF)
	invoices.Put("/:id/send", controllers.InvoiceTransition("send", models.InvoiceStatusSent))
	invoices.Put("/:id/pay", controllers.InvoiceTransition("pay", models.InvoiceStatusPaid))
	invoices.Put("/:id/overdue", controllers.InvoiceTransition("overdue", models.InvoiceStatusOverdue))
	invoices.Put("/:id/cancel", controllers.InvoiceTransition("cancel", models.InvoiceStatusCancelled))

	clients := protected.Group("/clients")
	clients.Get("/", controllers.ListClients)
	clients.Post("/", controllers.CreateClient)
	clients.Get("/:id", controllers.GetClient)
	clients.Put("/:id", controllers.UpdateClient)
	clients.Delete("/:id", controllers.DeleteClient)

	protected.Get("/logs", controllers.ListEventLogs)
	protected.Get("/notifications", controllers.ListNotifications)
}
