// Package validator normalise et valide les URLs longues et les alias personnalisés.
package validator

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxURLLength borne la taille d'une URL acceptée.
const MaxURLLength = 2048

var (
	validate = validator.New()

	aliasRe    = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)
	hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

	// Préfixes refusés même après l'ajout d'un schéma http(s).
	forbiddenPrefixes = []string{"javascript:", "data:", "file:"}
)

// Normalize supprime les espaces autour de l'URL et ajoute "http://" si aucun
// schéma http(s) n'est présent. Une chaîne vide est retournée telle quelle.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	if !hasHTTPScheme(trimmed) {
		return "http://" + trimmed
	}
	return trimmed
}

// IsValidURL normalise raw puis vérifie qu'il s'agit d'une URL http(s)
// bien formée avec un hôte et un port valides. Ne panique jamais.
func IsValidURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > MaxURLLength {
		return false
	}
	// Les espaces internes doivent être encodés (%20).
	if strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return false
	}
	if hasForbiddenPrefix(trimmed) {
		return false
	}

	normalized := Normalize(trimmed)
	if hasForbiddenPrefix(normalized) {
		return false
	}

	u, err := url.ParseRequestURI(normalized)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return isValidHostname(u.Hostname()) && isValidPort(u.Port())
}

// IsValidAlias indique si alias respecte ^[A-Za-z0-9_-]{3,50}$ une fois les espaces retirés.
func IsValidAlias(alias string) bool {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return false
	}
	return aliasRe.MatchString(alias)
}

func isValidHostname(host string) bool {
	if host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	if strings.Count(host, ".") == 3 && validate.Var(host, "ipv4") == nil {
		return true
	}
	if !strings.Contains(host, ".") {
		return false
	}
	// Un TLD purement numérique n'est qu'une adresse IPv4 mal formée.
	tld := host[strings.LastIndex(host, ".")+1:]
	if strings.Trim(tld, "0123456789") == "" {
		return false
	}
	return hostnameRe.MatchString(host)
}

// isValidPort accepte un port absent ou compris entre 1 et 65535.
func isValidPort(port string) bool {
	if port == "" {
		return true
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return validate.Var(n, "min=1,max=65535") == nil
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hasForbiddenPrefix(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range forbiddenPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
