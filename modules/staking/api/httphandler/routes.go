package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/staking")

	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/user_and_stake_details", h.GetUserAndStakeDetails)
	r.Get("/transactions", h.GetTransactions)
	return nil
}
