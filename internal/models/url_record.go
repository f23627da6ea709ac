package models

import "time"

// URLRecord représente un lien raccourci dans la base de données.
// Les tags `gorm:"..."` définissent comment GORM doit mapper cette structure à une table SQL.
// Code et Alias partagent le même espace de noms : quand un alias est fourni, Code == Alias.
type URLRecord struct {
	ID        int64      `gorm:"primaryKey;autoIncrement:false"` // Attribué par la séquence du store, sert de graine au code
	Code      string     `gorm:"uniqueIndex;size:64;not null"`   // Code court unique, indexé pour la résolution
	Target    string     `gorm:"type:text;not null"`             // URL longue normalisée
	CreatedAt time.Time  `gorm:"not null"`                       // Horodatage de création
	ExpiresAt *time.Time `gorm:"index"`                          // Date d'expiration optionnelle, indexée pour le nettoyage
	Clicks    int64      `gorm:"not null;default:0"`             // Compteur de redirections
	Alias     *string    `gorm:"uniqueIndex;size:64"`            // Alias personnalisé optionnel
}

// TableName fixe le nom de la table pour GORM.
func (URLRecord) TableName() string {
	return "url_records"
}

// Expiry retourne la date d'expiration et true, ou false si le lien n'expire jamais.
func (r *URLRecord) Expiry() (time.Time, bool) {
	if r.ExpiresAt == nil {
		return time.Time{}, false
	}
	return *r.ExpiresAt, true
}

// CustomAlias retourne l'alias personnalisé et true, ou false si le code a été généré.
func (r *URLRecord) CustomAlias() (string, bool) {
	if r.Alias == nil {
		return "", false
	}
	return *r.Alias, true
}

// IsExpiredAt vérifie si le lien a expiré à l'instant now.
// Un lien sans date d'expiration n'expire jamais.
func (r *URLRecord) IsExpiredAt(now time.Time) bool {
	exp, ok := r.Expiry()
	return ok && now.After(exp)
}

// IsExpired vérifie si le lien a expiré par rapport à l'heure actuelle.
func (r *URLRecord) IsExpired() bool {
	return r.IsExpiredAt(time.Now())
}

// URLRecordSequence est le nom du compteur qui attribue les IDs de URLRecord.
const URLRecordSequence = "url_records"

// IDSequence est un compteur nommé utilisé pour émuler une séquence
// sur les moteurs qui n'en ont pas (SQLite, MySQL).
type IDSequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName fixe le nom de la table pour GORM.
func (IDSequence) TableName() string {
	return "id_sequences"
}
