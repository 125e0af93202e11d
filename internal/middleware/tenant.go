package middleware

import (
	"net/http"

	"rental-service/internal/apperr"
	"rental-service/internal/tenant"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHeader names the tenant for a request. Absence selects the default
// namespace.
const TenantHeader = "X-Tenant-ID"

const namespaceKey = "namespace"

// TenantMiddleware resolves the request's tenant identifier into a storage
// namespace and stores it on the request context. Resolution failures are
// fatal for the request.
func TenantMiddleware(resolver *tenant.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			identifier := c.Request().Header.Get(TenantHeader)
			ns, err := resolver.Resolve(identifier)
			if err != nil {
				log.Error("Tenant resolution failed",
					zap.String("identifier", identifier), zap.Error(err))
				prometheus.RecordTenantError("resolution_failed")
				return c.JSON(apperr.Status(err), echo.Map{"error": apperr.Message(err)})
			}

			c.Set(namespaceKey, ns)
			return next(c)
		}
	}
}

// NamespaceFromContext returns the namespace resolved for this request. The
// second return is false when the tenant middleware did not run.
func NamespaceFromContext(c echo.Context) (tenant.Namespace, bool) {
	ns, ok := c.Get(namespaceKey).(tenant.Namespace)
	return ns, ok
}

// MustNamespace returns the request namespace or fails the request. Handlers
// behind TenantMiddleware can rely on it.
func MustNamespace(c echo.Context) (tenant.Namespace, error) {
	ns, ok := NamespaceFromContext(c)
	if !ok {
		return tenant.Namespace{}, echo.NewHTTPError(http.StatusInternalServerError, "tenant context missing")
	}
	return ns, nil
}
