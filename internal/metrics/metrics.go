// Package metrics регистрирует метрики Prometheus сервиса субаккаунтов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubusersCreated: количество выданных доступов.
	SubusersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "subusers",
		Name:      "created_total",
		Help:      "Number of subuser grants created.",
	})

	// SubusersRevoked: количество отозванных доступов.
	SubusersRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "subusers",
		Name:      "revoked_total",
		Help:      "Number of subuser grants revoked.",
	})

	// PermissionUpdates: количество замен набора прав.
	PermissionUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "subusers",
		Name:      "permission_updates_total",
		Help:      "Number of permission set replacements.",
	})

	// ValidationFailures: отказы при проверке входных данных, по полю.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "subusers",
		Name:      "validation_failures_total",
		Help:      "Number of rejected subuser requests by field.",
	}, []string{"field"})

	// CredentialLookups: поиски ключа демона, по результату (found, absent, error).
	CredentialLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "subusers",
		Name:      "credential_lookups_total",
		Help:      "Number of daemon key lookups by result.",
	}, []string{"result"})

	// DaemonKeysRenewed: количество продлённых ключей демона.
	DaemonKeysRenewed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panel",
		Subsystem: "daemon_keys",
		Name:      "renewed_total",
		Help:      "Number of daemon keys rotated before expiry.",
	})
)
