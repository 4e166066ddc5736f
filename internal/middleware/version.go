// AngelaMos | 2026
// version.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/angelamos/identity-api/internal/core"
)

var versionPattern = regexp.MustCompile(`^v\d+$`)

type VersionConfig struct {
	Current       string
	Supported     []string
	PrefixEnabled bool
}

// APIVersion resolves the requested API version from the path, rejects
// unsupported versions and annotates every response with version headers.
// Requests without a version segment resolve to the current default.
func APIVersion(cfg VersionConfig) func(http.Handler) http.Handler {
	supportedList := strings.Join(cfg.Supported, ", ")
	supportedSet := make(map[string]struct{}, len(cfg.Supported))
	for _, v := range cfg.Supported {
		supportedSet[v] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := extractVersion(r.URL.Path, cfg.PrefixEnabled)

			resolved := cfg.Current
			if requested != "" {
				resolved = requested
			}

			w.Header().Set("X-API-Version", resolved)
			w.Header().Set("X-API-Supported-Versions", supportedList)

			if requested != "" {
				if _, ok := supportedSet[requested]; !ok {
					core.BadRequest(w, fmt.Sprintf(
						"API version '%s' is not supported. Supported versions: %s",
						requested,
						supportedList,
					))
					return
				}
			}

			ctx := context.WithValue(r.Context(), APIVersionKey, resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAPIVersion(ctx context.Context) string {
	if version, ok := ctx.Value(APIVersionKey).(string); ok {
		return version
	}
	return ""
}

// extractVersion pulls a v<number> segment out of the path. With the fixed
// prefix enabled the version sits one segment deeper (/api/v1/... instead
// of /v1/...).
func extractVersion(path string, prefixEnabled bool) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	idx := 0
	if prefixEnabled {
		idx = 1
	}

	if idx >= len(parts) {
		return ""
	}

	if versionPattern.MatchString(parts[idx]) {
		return parts[idx]
	}
	return ""
}

// Deprecated marks one version with deprecation headers and a sunset date,
// leaving other versions untouched.
func Deprecated(
	version, sunset, message string,
) func(http.Handler) http.Handler {
	if message == "" {
		message = fmt.Sprintf(
			"API version %s is deprecated and will be removed on %s",
			version,
			sunset,
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAPIVersion(r.Context()) == version {
				w.Header().Set("Deprecation", "true")
				w.Header().Set("Sunset", sunset)
				w.Header().Set("X-Deprecation-Warning", message)
			}

			next.ServeHTTP(w, r)
		})
	}
}
