package telegram

import (
	"slices"

	"sellbot/internal/config"
)

// AdminChecker answers admin allow-list membership. Checked fresh on every
// admin action, never cached.
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(cfg *config.TelegramConfig) *AdminChecker {
	return &AdminChecker{
		adminIDs: cfg.AdminIDs,
	}
}

func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	return slices.Contains(a.adminIDs, telegramID)
}

// AdminIDs returns the configured admin identities for broadcast delivery.
func (a *AdminChecker) AdminIDs() []int64 {
	return slices.Clone(a.adminIDs)
}
