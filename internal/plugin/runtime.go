package plugin

import (
	"github.com/GreenLED99/PlasmaBot/internal/config"
	"github.com/GreenLED99/PlasmaBot/internal/permissions"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

// Runtime is the collaborator set injected into plugins at load time.
type Runtime struct {
	Permissions *permissions.Store
	Settings    *config.Settings
	Storage     *storage.Storage
	Gateway     Gateway
}
