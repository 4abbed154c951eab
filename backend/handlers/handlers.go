package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	webmodels "github.com/disgoorg/loyalty-engine/backend/models"
	"github.com/disgoorg/loyalty-engine/backend/utils"
	"github.com/disgoorg/loyalty-engine/loyalty"
	"github.com/disgoorg/loyalty-engine/loyalty/catalog"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/shop"
	"github.com/gofiber/fiber/v2"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	Engine  *loyalty.Engine
	Version string
	Commit  string
}

func (w *WebApp) ledgerDTO(ledger *models.UserLedger) *webmodels.LedgerDTO {
	return webmodels.NewLedgerDTO(ledger, w.Engine.Tiers.StandingOf(ledger))
}

// HealthCheck reports process and store health
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		start := time.Now()
		if err := webApp.Engine.Ping(ctx); err != nil {
			health.AddComponent("store", "unhealthy", err.Error(), nil)
		} else {
			health.AddComponent("store", "healthy", "", map[string]interface{}{
				"latency_ms": time.Since(start).Milliseconds(),
			})
		}
		health.AddComponent("quests", "healthy", "", map[string]interface{}{
			"loaded": len(webApp.Engine.Quests.Quests()),
		})

		if !health.Healthy() {
			return utils.SendJSON(c, fiber.StatusServiceUnavailable, health)
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}

// CreateUser opens an empty ledger
func CreateUser(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateCreateUserRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		ledger, err := webApp.Engine.Processor.CreateUser(c.UserContext(), req.UserID)
		if err != nil {
			return err
		}
		return utils.SendCreated(c, webApp.ledgerDTO(ledger), "User created")
	}
}

func GetLedger(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if errs := utils.ValidateUserID("id", userID); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		ledger, err := webApp.Engine.Store.Ledgers().Get(c.UserContext(), userID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webApp.ledgerDTO(ledger), "")
	}
}

// GetInventory lists active items, optionally filtered with ?type=
func GetInventory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if errs := utils.ValidateUserID("id", userID); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		itemType := c.Query("type")
		if itemType != "" && !slices.Contains(models.ItemTypes, itemType) {
			return utils.SendBadRequest(c, fmt.Sprintf("Unknown item type %q", itemType), nil)
		}

		ctx := c.UserContext()
		if _, err := webApp.Engine.Store.Ledgers().Get(ctx, userID); err != nil {
			return err
		}

		items, err := webApp.Engine.Inventory.ActiveItems(ctx, userID, itemType, webApp.Engine.Clock.Now())
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.InventoryDTO{UserID: userID, Type: itemType, Items: items}, "")
	}
}

// GetQuests lists every loaded quest with the user's progress
func GetQuests(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if errs := utils.ValidateUserID("id", userID); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx := c.UserContext()
		if _, err := webApp.Engine.Store.Ledgers().Get(ctx, userID); err != nil {
			return err
		}

		progress, err := webApp.Engine.Store.Progress().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		byQuest := make(map[string]*models.UserQuestProgress, len(progress))
		for _, p := range progress {
			byQuest[p.QuestID] = p
		}

		loaded := webApp.Engine.Quests.Quests()
		result := make([]webmodels.QuestDTO, 0, len(loaded))
		for _, q := range loaded {
			result = append(result, webmodels.NewQuestDTO(q.Definition, byQuest[q.Definition.QuestID]))
		}
		return utils.SendSuccess(c, result, "")
	}
}

// EquipStyle selects the tier style shown for the user
func EquipStyle(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if errs := utils.ValidateUserID("id", userID); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		var req webmodels.StyleRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStyleRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		standing, err := webApp.Engine.Tiers.EquipStyle(c.UserContext(), userID, req.Tier)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, standing, "Style updated")
	}
}

// SetProgression moves the user to a new act and level
func SetProgression(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if errs := utils.ValidateUserID("id", userID); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		var req webmodels.ProgressionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateProgressionRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		ledger, err := webApp.Engine.Processor.SetProgression(c.UserContext(), userID, *req.Act, *req.Level)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webApp.ledgerDTO(ledger), "Progression updated")
	}
}

func SubmitOrder(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev quests.OrderCompleted
		if err := c.BodyParser(&ev); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		outcome, err := webApp.Engine.Processor.OrderCompleted(c.UserContext(), &ev)
		if err != nil {
			return err
		}
		return sendOutcome(c, outcome)
	}
}

func SubmitReferral(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev quests.ReferralConfirmed
		if err := c.BodyParser(&ev); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		outcome, err := webApp.Engine.Processor.ReferralConfirmed(c.UserContext(), &ev)
		if err != nil {
			return err
		}
		return sendOutcome(c, outcome)
	}
}

func sendOutcome(c *fiber.Ctx, outcome *quests.Outcome) error {
	result := webmodels.SubmissionResult{
		Completions: outcome.Completions,
		Duplicate:   outcome.Duplicate,
	}
	if result.Completions == nil {
		result.Completions = []quests.CompletionResult{}
	}

	message := fmt.Sprintf("%d quest(s) completed", len(result.Completions))
	if outcome.Duplicate {
		message = "Event already processed"
	}
	return utils.SendSuccess(c, result, message)
}

// Purchase buys a shop item. Gate rejections are a successful response with
// allowed=false.
func Purchase(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req shop.PurchaseRequested
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		var errs []webmodels.ValidationError
		errs = append(errs, utils.ValidateUserID("userId", req.UserID)...)
		if req.CatalogItemID == "" {
			errs = append(errs, webmodels.ValidationError{Field: "catalogItemId", Message: "Catalog item is required"})
		}
		if len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		receipt, err := webApp.Engine.Processor.Purchase(c.UserContext(), req)
		if err != nil {
			return err
		}

		message := "Purchase completed"
		if !receipt.Allowed {
			message = "Purchase rejected"
		}
		return utils.SendSuccess(c, receipt, message)
	}
}

// ListShop returns the catalog, fuzzy filtered with ?q=
func ListShop(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := webApp.Engine.Store.Catalog().ShopItems(c.UserContext())
		if err != nil {
			return err
		}

		query := c.Query("q")
		return utils.SendSuccess(c, webmodels.ShopDTO{
			Query: query,
			Items: catalog.SearchShop(items, query),
		}, "")
	}
}

func ListTiers(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, webApp.Engine.Tiers.Resolver().Tiers(), "")
	}
}

// NotFound answers requests no route matched
func NotFound(c *fiber.Ctx) error {
	slog.Warn("No route matched for request",
		slog.String("type", "http"),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("ip", utils.GetIPAddress(c)),
	)
	return utils.SendNotFound(c, "The requested endpoint does not exist")
}
