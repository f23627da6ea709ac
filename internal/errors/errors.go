package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifie la catégorie d'une erreur métier.
// C'est la valeur exposée aux appelants (API HTTP, CLI) dans le champ "error_kind".
type Kind string

const (
	KindInvalidURL          Kind = "InvalidUrl"
	KindInvalidAlias        Kind = "InvalidAlias"
	KindInvalidExpiry       Kind = "InvalidExpiry"
	KindAliasTaken          Kind = "AliasTaken"
	KindAllocationExhausted Kind = "AllocationExhausted"
	KindDuplicateKey        Kind = "DuplicateKey"
	KindNotFound            Kind = "NotFound"
	KindExpired             Kind = "Expired"
	KindStoreUnavailable    Kind = "StoreUnavailable"
	KindInternal            Kind = "Internal"
)

// ErrDuplicateKey est retournée par le repository quand l'index unique sur
// code ou alias rejette une insertion. Le service la réessaie en interne.
var ErrDuplicateKey = errors.New("clé dupliquée: code ou alias déjà présent")

// ErrLinkNotFound est retournée quand un lien n'existe pas dans la base de données.
type ErrLinkNotFound struct {
	ShortCode string
}

func (e *ErrLinkNotFound) Error() string {
	return fmt.Sprintf("lien avec le code '%s' non trouvé", e.ShortCode)
}

func (e *ErrLinkNotFound) Kind() Kind { return KindNotFound }

// ErrLinkExpired est retournée quand un lien existe mais que sa date d'expiration est dépassée.
type ErrLinkExpired struct {
	ShortCode string
	ExpiredAt time.Time
}

func (e *ErrLinkExpired) Error() string {
	return fmt.Sprintf("le lien '%s' a expiré le %s", e.ShortCode, e.ExpiredAt.Format(time.RFC3339))
}

func (e *ErrLinkExpired) Kind() Kind { return KindExpired }

// ErrCodeGenerationFailed est retournée quand la génération d'un code unique échoue.
type ErrCodeGenerationFailed struct {
	Attempts int
}

func (e *ErrCodeGenerationFailed) Error() string {
	return fmt.Sprintf("impossible de générer un code unique après %d tentatives", e.Attempts)
}

func (e *ErrCodeGenerationFailed) Kind() Kind { return KindAllocationExhausted }

// ErrInvalidURL est retournée quand une URL fournie est invalide.
type ErrInvalidURL struct {
	URL string
}

func (e *ErrInvalidURL) Error() string {
	return fmt.Sprintf("URL invalide: %s", e.URL)
}

func (e *ErrInvalidURL) Kind() Kind { return KindInvalidURL }

// ErrInvalidAlias est retournée quand un alias personnalisé ne respecte pas le format attendu.
type ErrInvalidAlias struct {
	Alias string
}

func (e *ErrInvalidAlias) Error() string {
	return fmt.Sprintf("alias invalide: '%s' (3 à 50 caractères parmi A-Z, a-z, 0-9, '_' et '-')", e.Alias)
}

func (e *ErrInvalidAlias) Kind() Kind { return KindInvalidAlias }

// ErrAliasTaken est retournée quand l'alias demandé est déjà utilisé comme code ou comme alias.
type ErrAliasTaken struct {
	Alias string
}

func (e *ErrAliasTaken) Error() string {
	return fmt.Sprintf("l'alias '%s' est déjà utilisé", e.Alias)
}

func (e *ErrAliasTaken) Kind() Kind { return KindAliasTaken }

// ErrInvalidExpiry est retournée quand la demande d'expiration est incohérente
// (par exemple une date absolue et une durée fournies ensemble).
// Une date déjà passée reste acceptée : le lien naît expiré.
type ErrInvalidExpiry struct {
	Reason string
}

func (e *ErrInvalidExpiry) Error() string {
	return fmt.Sprintf("expiration invalide: %s", e.Reason)
}

func (e *ErrInvalidExpiry) Kind() Kind { return KindInvalidExpiry }

// ErrStoreUnavailable enveloppe une erreur de connexion ou de driver.
// Elle n'est jamais masquée : le service la remonte telle quelle.
type ErrStoreUnavailable struct {
	Op  string
	Err error
}

func (e *ErrStoreUnavailable) Error() string {
	return fmt.Sprintf("base de données indisponible (%s): %v", e.Op, e.Err)
}

func (e *ErrStoreUnavailable) Unwrap() error { return e.Err }

func (e *ErrStoreUnavailable) Kind() Kind { return KindStoreUnavailable }

// StoreUnavailable construit une ErrStoreUnavailable, sauf si err est nil.
func StoreUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrStoreUnavailable{Op: op, Err: err}
}

type kinded interface {
	Kind() Kind
}

// KindOf retourne la catégorie de err, ou KindInternal si elle est inconnue.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	if errors.Is(err, ErrDuplicateKey) {
		return KindDuplicateKey
	}
	return KindInternal
}
